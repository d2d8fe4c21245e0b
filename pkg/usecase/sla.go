package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/esteira-credito/esteira/pkg/utils/async"
	"github.com/esteira-credito/esteira/pkg/utils/errutil"
	"github.com/esteira-credito/esteira/pkg/utils/logging"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// SLAUseCase reclaims cases whose lock outlived the SLA threshold, counted in
// business hours. Scheduled and manual triggers share RunSweep and its guard.
type SLAUseCase struct {
	repo        interfaces.Repository
	sm          *model.StateMachine
	clock       Clock
	calendar    *model.WorkingHours
	threshold   time.Duration
	guardTTL    time.Duration
	concurrency int
	archiver    interfaces.ExecutionArchiver
	tasks       *async.Group
}

type outcomeKind int

const (
	outcomeNotDue outcomeKind = iota
	outcomeReleased
	outcomeAlreadyExpired
	outcomeFailed
)

type sweepOutcome struct {
	kind     outcomeKind
	released model.ReleasedCase
}

// RunMaintenance is the entry point behind the "run SLA sweep now" control.
// Manual runs need a superadmin or closing manager.
func (uc *SLAUseCase) RunMaintenance(ctx context.Context, trigger types.ExecutionType, actor *model.Actor) (*model.SLAExecution, error) {
	if trigger == types.ExecutionTypeManual && !canRunManualSweep(actor) {
		return nil, goerr.Wrap(ErrUnauthorized, "role may not trigger an SLA sweep",
			goerr.V(ActorIDKey, actor.UserID()))
	}
	return uc.RunSweep(ctx, trigger, actor)
}

func canRunManualSweep(actor *model.Actor) bool {
	if actor.IsSystem() {
		return false
	}
	return actor.Role == types.RoleSuperadmin || actor.Role == types.RoleGerenteFechamento
}

// RunSweep performs one reclamation pass. Only one sweep runs at a time
// across all processes; a concurrent call fails with ErrSLAEngineBusy.
// Per-case failures are counted and never abort the pass; only a failure to
// persist the execution record fails the sweep.
func (uc *SLAUseCase) RunSweep(ctx context.Context, trigger types.ExecutionType, actor *model.Actor) (*model.SLAExecution, error) {
	if !trigger.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid execution type", goerr.V("execution_type", trigger))
	}

	wallStart := time.Now()
	executionID := model.NewSLAExecutionID()
	holder := uuid.NewString()
	logger := logging.From(ctx).With("execution_id", executionID, "execution_type", trigger)
	ctx = logging.With(ctx, logger)

	acquired, err := uc.repo.SweepGuard().TryAcquire(ctx, holder, uc.clock(), uc.guardTTL)
	if err != nil {
		slaSweepsTotal.WithLabelValues(string(trigger), sweepResultError).Inc()
		return nil, goerr.Wrap(err, "failed to acquire sweep guard", goerr.V(ExecutionIDKey, executionID))
	}
	if !acquired {
		slaSweepsTotal.WithLabelValues(string(trigger), sweepResultBusy).Inc()
		return nil, goerr.Wrap(ErrSLAEngineBusy, "another sweep holds the guard", goerr.V(ExecutionIDKey, executionID))
	}
	defer func() {
		if err := uc.repo.SweepGuard().Release(context.WithoutCancel(ctx), holder); err != nil {
			_ = errutil.Handle(ctx, err, "failed to release sweep guard")
		}
	}()

	candidates, err := uc.repo.Case().ListLocked(ctx)
	if err != nil {
		slaSweepsTotal.WithLabelValues(string(trigger), sweepResultError).Inc()
		return nil, goerr.Wrap(err, "failed to list locked cases", goerr.V(ExecutionIDKey, executionID))
	}

	// Taken after the snapshot so no candidate's lock starts after it
	now := uc.clock()
	logger.Info("SLA sweep started", "candidates", len(candidates), "threshold", uc.threshold.String())

	outcomes := make([]sweepOutcome, len(candidates))
	var eg errgroup.Group
	eg.SetLimit(uc.concurrency)
	for i, c := range candidates {
		eg.Go(func() error {
			outcomes[i] = uc.reclaim(ctx, executionID, c, now)
			return nil
		})
	}
	_ = eg.Wait()

	execution := &model.SLAExecution{
		ID:               executionID,
		ExecutedAt:       now,
		ExecutionType:    trigger,
		ExecutedByUserID: actor.UserID(),
		CasesReleased:    []model.ReleasedCase{},
		Details:          model.SLAExecutionDetails{TotalCasesFound: len(candidates)},
	}
	for _, o := range outcomes {
		switch o.kind {
		case outcomeReleased:
			execution.CasesReleased = append(execution.CasesReleased, o.released)
			execution.Details.Processed++
		case outcomeAlreadyExpired:
			execution.Details.AlreadyExpired++
		case outcomeFailed:
			execution.Details.Errors++
		}
	}
	execution.CasesExpiredCount = len(execution.CasesReleased)
	execution.DurationSeconds = time.Since(wallStart).Seconds()

	if err := uc.repo.SLAExecution().Create(ctx, execution); err != nil {
		slaSweepsTotal.WithLabelValues(string(trigger), sweepResultError).Inc()
		return nil, goerr.Wrap(err, "failed to persist sla execution", goerr.V(ExecutionIDKey, executionID))
	}

	slaSweepsTotal.WithLabelValues(string(trigger), sweepResultSuccess).Inc()
	slaSweepDuration.Observe(execution.DurationSeconds)
	for _, rc := range execution.CasesReleased {
		slaCasesReleasedTotal.WithLabelValues(string(rc.Reason)).Inc()
	}

	logger.Info("SLA sweep finished",
		"released", execution.CasesExpiredCount,
		"already_expired", execution.Details.AlreadyExpired,
		"errors", execution.Details.Errors,
		"duration_seconds", execution.DurationSeconds)

	if uc.archiver != nil {
		archived := execution.Clone()
		uc.tasks.Dispatch(ctx, "archive_sla_execution", func(ctx context.Context) error {
			return uc.archiver.Archive(ctx, archived)
		})
	}

	return execution, nil
}

// reclaim decides and applies the fate of one locked case
func (uc *SLAUseCase) reclaim(ctx context.Context, executionID model.SLAExecutionID, c *model.Case, now time.Time) sweepOutcome {
	logger := logging.From(ctx).With("case_id", c.ID)

	if c.Lock.StartedAt == nil {
		logger.Error("locked case has no lock start time")
		return sweepOutcome{kind: outcomeFailed}
	}
	startedAt := *c.Lock.StartedAt

	elapsed, err := uc.calendar.ElapsedBusiness(startedAt, now)
	if err != nil {
		if errors.Is(err, ErrInvalidInterval) {
			// lock started after the sweep instant; not due
			return sweepOutcome{kind: outcomeNotDue}
		}
		_ = errutil.Handle(ctx, err, "failed to compute business time")
		return sweepOutcome{kind: outcomeFailed}
	}
	if elapsed < uc.threshold {
		return sweepOutcome{kind: outcomeNotDue}
	}

	hasInteraction, err := uc.repo.Interaction().HasInteractionSince(ctx, c.ID, startedAt)
	if err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to query interactions", goerr.V(CaseIDKey, c.ID)),
			"SLA sweep failed on case")
		return sweepOutcome{kind: outcomeFailed}
	}
	reason := types.ReleaseReasonExpiredNoInteraction
	if hasInteraction {
		reason = types.ReleaseReasonExpiredWithInteraction
	}

	next := c.Clone()
	if err := uc.sm.Release(next, now); err != nil {
		_ = errutil.Handle(ctx, err, "SLA sweep failed on case")
		return sweepOutcome{kind: outcomeFailed}
	}

	entry := model.NewAuditLog(c.ID, types.AuditEventSLAExpired, nil, map[string]any{
		"reason":                 reason,
		"execution_id":           executionID,
		"owner_id":               c.Lock.OwnerID,
		"from_status":            c.Status,
		"lock_started_at":        startedAt,
		"elapsed_business_hours": elapsed.Hours(),
	}, now)

	if _, err := uc.repo.Case().CompareAndSwap(ctx, c.Version, next, entry); err != nil {
		if errors.Is(err, ErrOptimisticConflict) {
			logger.Info("case changed during sweep, release skipped")
			skipped := model.NewAuditLog(c.ID, types.AuditEventSLAReleaseSkipped, nil, map[string]any{
				"reason":           "case modified concurrently",
				"execution_id":     executionID,
				"expected_version": c.Version,
			}, now)
			if err := uc.repo.Audit().Append(ctx, skipped); err != nil {
				_ = errutil.Handle(ctx, err, "failed to record skipped release")
			}
			return sweepOutcome{kind: outcomeAlreadyExpired}
		}

		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to release expired case", goerr.V(CaseIDKey, c.ID)),
			"SLA sweep failed on case")
		return sweepOutcome{kind: outcomeFailed}
	}

	return sweepOutcome{
		kind: outcomeReleased,
		released: model.ReleasedCase{
			CaseID:         c.ID,
			ClientID:       c.ClientID,
			AssignedUserID: c.Lock.OwnerID,
			Reason:         reason,
		},
	}
}

// ListExecutions returns a page of executions, newest first, and the total
// number of matches
func (uc *SLAUseCase) ListExecutions(ctx context.Context, filter model.SLAExecutionFilter, page model.Pagination) ([]*model.SLAExecution, int, error) {
	if filter.ExecutionType != "" && !filter.ExecutionType.IsValid() {
		return nil, 0, goerr.Wrap(ErrInvalidInput, "invalid execution type", goerr.V("execution_type", filter.ExecutionType))
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, 0, goerr.Wrap(ErrInvalidInterval, "from is after to")
	}

	executions, total, err := uc.repo.SLAExecution().List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to list sla executions")
	}
	return executions, total, nil
}

func (uc *SLAUseCase) GetExecution(ctx context.Context, id model.SLAExecutionID) (*model.SLAExecution, error) {
	execution, err := uc.repo.SLAExecution().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get sla execution", goerr.V(ExecutionIDKey, id))
	}
	return execution, nil
}
