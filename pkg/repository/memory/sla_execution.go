package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type slaExecutionRepository struct {
	mu         sync.RWMutex
	executions map[model.SLAExecutionID]*model.SLAExecution
}

func newSLAExecutionRepository() *slaExecutionRepository {
	return &slaExecutionRepository{
		executions: make(map[model.SLAExecutionID]*model.SLAExecution),
	}
}

func (r *slaExecutionRepository) Create(ctx context.Context, e *model.SLAExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.executions[e.ID]; exists {
		return goerr.New("sla execution already exists", goerr.V(model.ExecutionIDKey, e.ID))
	}
	r.executions[e.ID] = e.Clone()
	return nil
}

func (r *slaExecutionRepository) Get(ctx context.Context, id model.SLAExecutionID) (*model.SLAExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.executions[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "sla execution not found", goerr.V(model.ExecutionIDKey, id))
	}
	return e.Clone(), nil
}

func (r *slaExecutionRepository) List(ctx context.Context, filter model.SLAExecutionFilter, page model.Pagination) ([]*model.SLAExecution, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page = page.Normalize()

	matched := make([]*model.SLAExecution, 0)
	for _, e := range r.executions {
		if filter.Match(e) {
			matched = append(matched, e)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].ExecutedAt.Equal(matched[j].ExecutedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].ExecutedAt.After(matched[j].ExecutedAt)
	})

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}

	result := make([]*model.SLAExecution, 0, end-start)
	for _, e := range matched[start:end] {
		result = append(result, e.Clone())
	}
	return result, total, nil
}
