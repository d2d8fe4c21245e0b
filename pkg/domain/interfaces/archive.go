package interfaces

import (
	"context"

	"github.com/esteira-credito/esteira/pkg/domain/model"
)

// ExecutionArchiver copies finished SLA executions to long-term storage
type ExecutionArchiver interface {
	Archive(ctx context.Context, e *model.SLAExecution) error
}
