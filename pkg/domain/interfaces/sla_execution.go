package interfaces

import (
	"context"

	"github.com/esteira-credito/esteira/pkg/domain/model"
)

// SLAExecutionRepository stores one immutable record per sweep
type SLAExecutionRepository interface {
	Create(ctx context.Context, e *model.SLAExecution) error

	// Get returns model.ErrNotFound if absent
	Get(ctx context.Context, id model.SLAExecutionID) (*model.SLAExecution, error)

	// List returns executions matching filter ordered by ExecutedAt
	// descending, the requested page, and the total number of matches.
	List(ctx context.Context, filter model.SLAExecutionFilter, page model.Pagination) ([]*model.SLAExecution, int, error)
}
