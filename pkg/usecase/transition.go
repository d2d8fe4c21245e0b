package usecase

import (
	"context"
	"encoding/json"

	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type TransitionUseCase struct {
	repo  interfaces.Repository
	sm    *model.StateMachine
	clock Clock
}

func NewTransitionUseCase(repo interfaces.Repository, sm *model.StateMachine, clock Clock) *TransitionUseCase {
	return &TransitionUseCase{
		repo:  repo,
		sm:    sm,
		clock: clock,
	}
}

// Transition moves a case to target and records STATUS_CHANGED in the same
// write. A stale version is returned as ErrOptimisticConflict and not retried.
func (uc *TransitionUseCase) Transition(ctx context.Context, caseID model.CaseID, target types.CaseStatus, actor *model.Actor, payload json.RawMessage) (*model.Case, error) {
	if !target.IsValid() {
		return nil, goerr.Wrap(ErrInvalidTransition, "unknown target status",
			goerr.V(CaseIDKey, caseID), goerr.V(model.ToStatusKey, target))
	}
	if len(payload) > 0 && !json.Valid(payload) {
		return nil, goerr.Wrap(ErrInvalidInput, "payload must be valid JSON", goerr.V(CaseIDKey, caseID))
	}

	current, err := uc.repo.Case().Get(ctx, caseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get case", goerr.V(CaseIDKey, caseID))
	}

	now := uc.clock()
	next := current.Clone()
	if err := uc.sm.Apply(next, target, actor, payload, now); err != nil {
		return nil, err
	}

	auditPayload := map[string]any{
		"from_status": current.Status,
		"to_status":   target,
	}
	if len(payload) > 0 {
		auditPayload["payload"] = payload
	}
	entry := model.NewAuditLog(caseID, types.AuditEventStatusChanged, actor, auditPayload, now)

	updated, err := uc.repo.Case().CompareAndSwap(ctx, current.Version, next, entry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to transition case",
			goerr.V(CaseIDKey, caseID),
			goerr.V(model.FromStatusKey, current.Status),
			goerr.V(model.ToStatusKey, target))
	}

	return updated, nil
}
