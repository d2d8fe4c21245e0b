package usecase

import (
	"context"
	"encoding/json"

	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type CaseUseCase struct {
	repo  interfaces.Repository
	clock Clock
}

func NewCaseUseCase(repo interfaces.Repository, clock Clock) *CaseUseCase {
	return &CaseUseCase{
		repo:  repo,
		clock: clock,
	}
}

// CreateCase opens a case in the shared queue. calcResult is stored as-is.
func (uc *CaseUseCase) CreateCase(ctx context.Context, actor *model.Actor, clientID string, calcResult json.RawMessage) (*model.Case, error) {
	if clientID == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "client ID is required")
	}
	if len(calcResult) > 0 && !json.Valid(calcResult) {
		return nil, goerr.Wrap(ErrInvalidInput, "calc result must be valid JSON")
	}

	now := uc.clock()
	c := &model.Case{
		ID:         model.NewCaseID(),
		Status:     types.CaseStatusDisponivel,
		ClientID:   clientID,
		CalcResult: calcResult,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	entry := model.NewAuditLog(c.ID, types.AuditEventCreated, actor, map[string]any{
		"client_id": clientID,
		"status":    c.Status,
	}, now)

	created, err := uc.repo.Case().Create(ctx, c, entry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create case", goerr.V(CaseIDKey, c.ID))
	}
	return created, nil
}

func (uc *CaseUseCase) GetCase(ctx context.Context, id model.CaseID) (*model.Case, error) {
	c, err := uc.repo.Case().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get case", goerr.V(CaseIDKey, id))
	}
	return c, nil
}

// ListAvailable returns the pull queue, oldest case first
func (uc *CaseUseCase) ListAvailable(ctx context.Context, limit int) ([]*model.Case, error) {
	if limit <= 0 {
		limit = DefaultAvailableLimit
	}

	cases, err := uc.repo.Case().ListAvailable(ctx, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list available cases")
	}
	return cases, nil
}

// ListLocked returns locked cases, optionally only those held by ownerID
func (uc *CaseUseCase) ListLocked(ctx context.Context, ownerID string) ([]*model.Case, error) {
	var opts []interfaces.ListLockedOption
	if ownerID != "" {
		opts = append(opts, interfaces.WithOwner(ownerID))
	}

	cases, err := uc.repo.Case().ListLocked(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list locked cases")
	}
	return cases, nil
}
