package usecase

import (
	"context"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type InteractionUseCase struct {
	repo  interfaces.Repository
	clock Clock
}

func NewInteractionUseCase(repo interfaces.Repository, clock Clock) *InteractionUseCase {
	return &InteractionUseCase{
		repo:  repo,
		clock: clock,
	}
}

// Record logs a comment, attachment or phone entry on a case
func (uc *InteractionUseCase) Record(ctx context.Context, caseID model.CaseID, kind types.InteractionKind, actor *model.Actor, note string) (*model.Interaction, error) {
	if actor.IsSystem() || actor.ID == "" {
		return nil, goerr.Wrap(ErrUnauthorized, "interactions require a user", goerr.V(CaseIDKey, caseID))
	}
	if !kind.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid interaction kind",
			goerr.V(CaseIDKey, caseID), goerr.V("kind", kind))
	}

	if _, err := uc.repo.Case().Get(ctx, caseID); err != nil {
		return nil, goerr.Wrap(err, "failed to get case", goerr.V(CaseIDKey, caseID))
	}

	interaction := &model.Interaction{
		ID:        model.NewInteractionID(),
		CaseID:    caseID,
		Kind:      kind,
		UserID:    actor.ID,
		Note:      note,
		CreatedAt: uc.clock(),
	}
	if err := uc.repo.Interaction().Create(ctx, interaction); err != nil {
		return nil, goerr.Wrap(err, "failed to record interaction", goerr.V(CaseIDKey, caseID))
	}
	return interaction, nil
}

func (uc *InteractionUseCase) List(ctx context.Context, caseID model.CaseID) ([]*model.Interaction, error) {
	interactions, err := uc.repo.Interaction().List(ctx, caseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list interactions", goerr.V(CaseIDKey, caseID))
	}
	return interactions, nil
}

func (uc *InteractionUseCase) HasInteractionSince(ctx context.Context, caseID model.CaseID, since time.Time) (bool, error) {
	found, err := uc.repo.Interaction().HasInteractionSince(ctx, caseID, since)
	if err != nil {
		return false, goerr.Wrap(err, "failed to query interactions", goerr.V(CaseIDKey, caseID))
	}
	return found, nil
}
