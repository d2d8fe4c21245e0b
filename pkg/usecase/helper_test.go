package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/esteira-credito/esteira/pkg/repository/memory"
	"github.com/esteira-credito/esteira/pkg/usecase"
	"github.com/m-mizutani/gt"
)

// Monday 12 Oct 2026 10:00 UTC
var monday = time.Date(2026, time.October, 12, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(now time.Time) *testClock {
	return &testClock{now: now}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

var (
	atendente  = &model.Actor{ID: "atendente-1", Role: types.RoleAtendente}
	atendente2 = &model.Actor{ID: "atendente-2", Role: types.RoleAtendente}
	calculista = &model.Actor{ID: "calculista-1", Role: types.RoleCalculista}
	gerente    = &model.Actor{ID: "gerente-1", Role: types.RoleGerenteFechamento}
	financeiro = &model.Actor{ID: "financeiro-1", Role: types.RoleFinanceiro}
	superadmin = &model.Actor{ID: "root", Role: types.RoleSuperadmin}
)

func setup(t *testing.T, repo interfaces.Repository, opts ...usecase.Option) (*usecase.UseCases, *testClock) {
	t.Helper()

	clock := newTestClock(monday)
	opts = append([]usecase.Option{
		usecase.WithClock(clock.Now),
		usecase.WithWorkingHours(model.DefaultWorkingHours(time.UTC)),
	}, opts...)
	return usecase.New(repo, opts...), clock
}

// createAssigned opens a case and assigns it to actor at the current clock
func createAssigned(t *testing.T, uc *usecase.UseCases, actor *model.Actor, clientID string) *model.Case {
	t.Helper()
	ctx := context.Background()

	c, err := uc.Case.CreateCase(ctx, nil, clientID, nil)
	gt.NoError(t, err).Required()

	assigned, err := uc.Lock.Assign(ctx, c.ID, actor)
	gt.NoError(t, err).Required()
	return assigned
}

func auditEvents(t *testing.T, repo interfaces.Repository, id model.CaseID) []types.AuditEvent {
	t.Helper()

	entries, err := repo.Audit().Query(context.Background(), id)
	gt.NoError(t, err).Required()

	events := make([]types.AuditEvent, len(entries))
	for i, e := range entries {
		events[i] = e.Event
	}
	return events
}

// hookedRepository lets tests interfere with a sweep between its snapshot
// of locked cases and its writes
type hookedRepository struct {
	interfaces.Repository
	afterListLocked  func()
	interactionError func(id model.CaseID) error
	executionError   error
}

func (r *hookedRepository) Case() interfaces.CaseRepository {
	return &hookedCaseRepository{CaseRepository: r.Repository.Case(), hook: r.afterListLocked}
}

func (r *hookedRepository) Interaction() interfaces.InteractionRepository {
	return &hookedInteractionRepository{InteractionRepository: r.Repository.Interaction(), fail: r.interactionError}
}

func (r *hookedRepository) SLAExecution() interfaces.SLAExecutionRepository {
	return &hookedExecutionRepository{SLAExecutionRepository: r.Repository.SLAExecution(), err: r.executionError}
}

type hookedCaseRepository struct {
	interfaces.CaseRepository
	hook func()
}

func (r *hookedCaseRepository) ListLocked(ctx context.Context, opts ...interfaces.ListLockedOption) ([]*model.Case, error) {
	cases, err := r.CaseRepository.ListLocked(ctx, opts...)
	if err == nil && r.hook != nil {
		r.hook()
	}
	return cases, err
}

type hookedInteractionRepository struct {
	interfaces.InteractionRepository
	fail func(id model.CaseID) error
}

func (r *hookedInteractionRepository) HasInteractionSince(ctx context.Context, id model.CaseID, since time.Time) (bool, error) {
	if r.fail != nil {
		if err := r.fail(id); err != nil {
			return false, err
		}
	}
	return r.InteractionRepository.HasInteractionSince(ctx, id, since)
}

type hookedExecutionRepository struct {
	interfaces.SLAExecutionRepository
	err error
}

func (r *hookedExecutionRepository) Create(ctx context.Context, e *model.SLAExecution) error {
	if r.err != nil {
		return r.err
	}
	return r.SLAExecutionRepository.Create(ctx, e)
}

type recordingArchiver struct {
	mu       sync.Mutex
	archived []*model.SLAExecution
}

func (a *recordingArchiver) Archive(ctx context.Context, e *model.SLAExecution) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.archived = append(a.archived, e)
	return nil
}

func newMemory() *memory.Memory {
	return memory.New()
}

// staleRepository serves a fixed snapshot from Get, as if another writer
// committed between the read and the write
type staleRepository struct {
	interfaces.Repository
	snapshot *model.Case
}

func (r *staleRepository) Case() interfaces.CaseRepository {
	return &staleCaseRepository{CaseRepository: r.Repository.Case(), snapshot: r.snapshot}
}

type staleCaseRepository struct {
	interfaces.CaseRepository
	snapshot *model.Case
}

func (r *staleCaseRepository) Get(ctx context.Context, id model.CaseID) (*model.Case, error) {
	return r.snapshot.Clone(), nil
}
