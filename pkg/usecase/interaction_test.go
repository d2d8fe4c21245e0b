package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/esteira-credito/esteira/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestInteractionUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("recorded interaction is visible to the signal", func(t *testing.T) {
		uc, clock := setup(t, newMemory())
		c := createAssigned(t, uc, atendente, "client-1")

		clock.Set(monday.Add(30 * time.Minute))
		recorded, err := uc.Interaction.Record(ctx, c.ID, types.InteractionKindPhone, atendente, "no answer")
		gt.NoError(t, err).Required()
		gt.Value(t, recorded.UserID).Equal(atendente.ID)

		found, err := uc.Interaction.HasInteractionSince(ctx, c.ID, monday)
		gt.NoError(t, err).Required()
		gt.Bool(t, found).True()

		found, err = uc.Interaction.HasInteractionSince(ctx, c.ID, monday.Add(time.Hour))
		gt.NoError(t, err).Required()
		gt.Bool(t, found).False()

		list, err := uc.Interaction.List(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		uc, _ := setup(t, newMemory())
		c := createAssigned(t, uc, atendente, "client-1")

		_, err := uc.Interaction.Record(ctx, c.ID, types.InteractionKind("fax"), atendente, "")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)

		_, err = uc.Interaction.Record(ctx, c.ID, types.InteractionKindComment, nil, "")
		gt.Error(t, err).Is(usecase.ErrUnauthorized)

		_, err = uc.Interaction.Record(ctx, model.NewCaseID(), types.InteractionKindComment, atendente, "")
		gt.Error(t, err).Is(usecase.ErrNotFound)
	})
}

func TestAuditUseCase_QueryUnknownCase(t *testing.T) {
	uc, _ := setup(t, newMemory())

	_, err := uc.Audit.Query(context.Background(), model.NewCaseID())
	gt.Error(t, err).Is(usecase.ErrNotFound)
}
