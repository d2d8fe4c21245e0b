package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func runInteractionRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	t.Run("HasInteractionSince is inclusive of the boundary", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := newLockedCase("client-1", "user-a", baseTime)
		_, err := repo.Case().Create(ctx, c)
		gt.NoError(t, err).Required()

		found, err := repo.Interaction().HasInteractionSince(ctx, c.ID, baseTime)
		gt.NoError(t, err).Required()
		gt.Bool(t, found).False()

		gt.NoError(t, repo.Interaction().Create(ctx, &model.Interaction{
			CaseID:    c.ID,
			Kind:      types.InteractionKindPhone,
			UserID:    "user-a",
			Note:      "called client",
			CreatedAt: baseTime.Add(time.Hour),
		})).Required()

		found, err = repo.Interaction().HasInteractionSince(ctx, c.ID, baseTime.Add(time.Hour))
		gt.NoError(t, err).Required()
		gt.Bool(t, found).True()

		found, err = repo.Interaction().HasInteractionSince(ctx, c.ID, baseTime.Add(time.Hour+time.Second))
		gt.NoError(t, err).Required()
		gt.Bool(t, found).False()
	})

	t.Run("List returns interactions of one case", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c1 := newLockedCase("client-2", "user-a", baseTime)
		c2 := newLockedCase("client-3", "user-b", baseTime)
		for _, c := range []*model.Case{c1, c2} {
			_, err := repo.Case().Create(ctx, c)
			gt.NoError(t, err).Required()
		}

		gt.NoError(t, repo.Interaction().Create(ctx, &model.Interaction{
			CaseID: c1.ID, Kind: types.InteractionKindComment, UserID: "user-a", Note: "first", CreatedAt: baseTime,
		})).Required()
		gt.NoError(t, repo.Interaction().Create(ctx, &model.Interaction{
			CaseID: c1.ID, Kind: types.InteractionKindAttachment, UserID: "user-a", Note: "second", CreatedAt: baseTime.Add(time.Minute),
		})).Required()
		gt.NoError(t, repo.Interaction().Create(ctx, &model.Interaction{
			CaseID: c2.ID, Kind: types.InteractionKindComment, UserID: "user-b", CreatedAt: baseTime,
		})).Required()

		got, err := repo.Interaction().List(ctx, c1.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2).Required()
		gt.Value(t, got[0].Note).Equal("first")
		gt.Value(t, got[1].Kind).Equal(types.InteractionKindAttachment)
		gt.String(t, string(got[0].ID)).NotEqual("")
	})
	t.Run("malformed case id has no interactions", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		found, err := repo.Interaction().HasInteractionSince(ctx, model.CaseID("not-a-case"), baseTime)
		gt.NoError(t, err).Required()
		gt.Bool(t, found).False()

		got, err := repo.Interaction().List(ctx, model.CaseID("not-a-case"))
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(0)
	})
}
