package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func runAuditRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	t.Run("Query returns entries in creation order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := newAvailableCase("client-1", baseTime)
		created := model.NewAuditLog(c.ID, types.AuditEventCreated, nil, nil, baseTime)
		_, err := repo.Case().Create(ctx, c, created)
		gt.NoError(t, err).Required()

		later := model.NewAuditLog(c.ID, types.AuditEventSLAReleaseSkipped, nil,
			map[string]string{"reason": "already released"}, baseTime.Add(2*time.Hour))
		earlier := model.NewAuditLog(c.ID, types.AuditEventReleased,
			&model.Actor{ID: "user-a", Role: types.RoleAtendente}, nil, baseTime.Add(time.Hour))
		gt.NoError(t, repo.Audit().Append(ctx, later)).Required()
		gt.NoError(t, repo.Audit().Append(ctx, earlier)).Required()

		entries, err := repo.Audit().Query(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(3).Required()
		gt.Value(t, entries[0].Event).Equal(types.AuditEventCreated)
		gt.Value(t, entries[1].Event).Equal(types.AuditEventReleased)
		gt.Value(t, entries[1].ActorID).Equal("user-a")
		gt.Value(t, entries[2].Event).Equal(types.AuditEventSLAReleaseSkipped)
		gt.Value(t, entries[2].ActorID).Equal("")
		gt.String(t, string(entries[2].Payload)).Contains("already released")
	})

	t.Run("entries with equal timestamps keep id order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := newAvailableCase("client-2", baseTime)
		first := model.NewAuditLog(c.ID, types.AuditEventCreated, nil, nil, baseTime)
		second := model.NewAuditLog(c.ID, types.AuditEventAssigned, nil, nil, baseTime)
		_, err := repo.Case().Create(ctx, c, first, second)
		gt.NoError(t, err).Required()

		entries, err := repo.Audit().Query(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(2).Required()
		gt.Value(t, entries[0].ID).Equal(first.ID)
		gt.Value(t, entries[1].ID).Equal(second.ID)
	})

	t.Run("Query of a case without entries is empty", func(t *testing.T) {
		repo := newRepo(t)

		entries, err := repo.Audit().Query(context.Background(), model.NewCaseID())
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(0)

		entries, err = repo.Audit().Query(context.Background(), model.CaseID("not-a-case"))
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(0)
	})
}
