package interfaces

import (
	"context"

	"github.com/esteira-credito/esteira/pkg/domain/model"
)

// AuditRepository is the append-only audit trail. There is no update or
// delete path.
type AuditRepository interface {
	// Append inserts a standalone entry that is not tied to a case mutation
	Append(ctx context.Context, entry *model.AuditLog) error

	// Query returns every entry of a case in creation order
	Query(ctx context.Context, caseID model.CaseID) ([]*model.AuditLog, error)
}
