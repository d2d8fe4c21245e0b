package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type caseRepository struct {
	mu    sync.RWMutex
	cases map[model.CaseID]*model.Case
	audit *auditRepository
}

func newCaseRepository(audit *auditRepository) *caseRepository {
	return &caseRepository{
		cases: make(map[model.CaseID]*model.Case),
		audit: audit,
	}
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case, entries ...*model.AuditLog) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cases[c.ID]; exists {
		return nil, goerr.New("case already exists", goerr.V(model.CaseIDKey, c.ID))
	}

	now := time.Now().UTC()
	created := c.Clone()
	created.Version = 1
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = created.CreatedAt

	r.cases[created.ID] = created
	r.audit.appendAll(entries)
	return created.Clone(), nil
}

func (r *caseRepository) Get(ctx context.Context, id model.CaseID) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.cases[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "case not found", goerr.V(model.CaseIDKey, id))
	}

	return c.Clone(), nil
}

func (r *caseRepository) CompareAndSwap(ctx context.Context, expectedVersion int64, c *model.Case, entries ...*model.AuditLog) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.cases[c.ID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "case not found", goerr.V(model.CaseIDKey, c.ID))
	}
	if existing.Version != expectedVersion {
		return nil, goerr.Wrap(model.ErrOptimisticConflict, "version mismatch",
			goerr.V(model.CaseIDKey, c.ID),
			goerr.V(model.ExpectedVersionKey, expectedVersion),
			goerr.V("stored_version", existing.Version))
	}

	updated := c.Clone()
	updated.Version = existing.Version + 1
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.cases[updated.ID] = updated
	r.audit.appendAll(entries)
	return updated.Clone(), nil
}

func (r *caseRepository) ListLocked(ctx context.Context, opts ...interfaces.ListLockedOption) ([]*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg := interfaces.BuildListLockedConfig(opts...)
	cases := make([]*model.Case, 0)
	for _, c := range r.cases {
		if cfg.Match(c) {
			cases = append(cases, c.Clone())
		}
	}

	sort.Slice(cases, func(i, j int) bool {
		return cases[i].Lock.StartedAt.Before(*cases[j].Lock.StartedAt)
	})
	return cases, nil
}

func (r *caseRepository) ListAvailable(ctx context.Context, limit int) ([]*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cases := make([]*model.Case, 0)
	for _, c := range r.cases {
		if c.Status == types.CaseStatusDisponivel && !c.Lock.Active {
			cases = append(cases, c.Clone())
		}
	}

	sort.Slice(cases, func(i, j int) bool {
		if cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].ID < cases[j].ID
		}
		return cases[i].CreatedAt.Before(cases[j].CreatedAt)
	})

	if limit > 0 && len(cases) > limit {
		cases = cases[:limit]
	}
	return cases, nil
}
