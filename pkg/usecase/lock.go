package usecase

import (
	"context"
	"errors"

	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// LockUseCase owns the exclusive work-lock on cases. Contention is settled by
// the store's compare-and-swap alone.
type LockUseCase struct {
	repo  interfaces.Repository
	sm    *model.StateMachine
	clock Clock
}

func NewLockUseCase(repo interfaces.Repository, sm *model.StateMachine, clock Clock) *LockUseCase {
	return &LockUseCase{
		repo:  repo,
		sm:    sm,
		clock: clock,
	}
}

// Assign takes the lock on a case for actor. Losing a race, whether seen
// before the write or at compare-and-swap time, yields ErrLockConflict.
func (uc *LockUseCase) Assign(ctx context.Context, caseID model.CaseID, actor *model.Actor) (*model.Case, error) {
	current, err := uc.repo.Case().Get(ctx, caseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get case", goerr.V(CaseIDKey, caseID))
	}

	now := uc.clock()
	next := current.Clone()
	if err := uc.sm.Acquire(next, actor, now); err != nil {
		if errors.Is(err, ErrLockConflict) {
			lockConflictsTotal.Inc()
		}
		return nil, err
	}

	entry := model.NewAuditLog(caseID, types.AuditEventAssigned, actor, map[string]any{
		"from_status": current.Status,
		"to_status":   next.Status,
	}, now)

	updated, err := uc.repo.Case().CompareAndSwap(ctx, current.Version, next, entry)
	if err != nil {
		if errors.Is(err, ErrOptimisticConflict) {
			lockConflictsTotal.Inc()
			return nil, goerr.Wrap(ErrLockConflict, "case was taken concurrently",
				goerr.V(CaseIDKey, caseID), goerr.V(ActorIDKey, actor.UserID()))
		}
		return nil, goerr.Wrap(err, "failed to assign case", goerr.V(CaseIDKey, caseID))
	}

	return updated, nil
}

// Release returns a locked case to the shared queue. A nil actor is the
// system and skips the ownership check; any other actor must own the lock
// unless superadmin. Releasing an unlocked case returns it unchanged.
func (uc *LockUseCase) Release(ctx context.Context, caseID model.CaseID, actor *model.Actor) (*model.Case, error) {
	current, err := uc.repo.Case().Get(ctx, caseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get case", goerr.V(CaseIDKey, caseID))
	}

	if !current.Lock.Active {
		return current, nil
	}

	if !actor.IsSystem() && !actor.IsSuperadmin() && !current.IsLockedBy(actor.ID) {
		return nil, goerr.Wrap(ErrUnauthorized, "case is locked by another user",
			goerr.V(CaseIDKey, caseID),
			goerr.V(ActorIDKey, actor.UserID()),
			goerr.V("owner_id", current.Lock.OwnerID))
	}

	now := uc.clock()
	next := current.Clone()
	if err := uc.sm.Release(next, now); err != nil {
		return nil, err
	}

	entry := model.NewAuditLog(caseID, types.AuditEventReleased, actor, map[string]any{
		"from_status": current.Status,
		"owner_id":    current.Lock.OwnerID,
	}, now)

	updated, err := uc.repo.Case().CompareAndSwap(ctx, current.Version, next, entry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to release case", goerr.V(CaseIDKey, caseID))
	}

	return updated, nil
}
