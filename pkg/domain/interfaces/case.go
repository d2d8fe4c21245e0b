package interfaces

import (
	"context"

	"github.com/esteira-credito/esteira/pkg/domain/model"
)

// CaseRepository defines the interface for Case data access. Every mutation
// is a compare-and-swap on Case.Version and writes its audit entries in the
// same atomic unit, so the audit trail never diverges from case state.
type CaseRepository interface {
	// Create stores a new case at version 1 together with its audit entries
	Create(ctx context.Context, c *model.Case, entries ...*model.AuditLog) (*model.Case, error)

	// Get retrieves a case by ID. Returns model.ErrNotFound if absent.
	Get(ctx context.Context, id model.CaseID) (*model.Case, error)

	// CompareAndSwap replaces the stored case with c if the stored version
	// equals expectedVersion, bumping the version by one and appending
	// entries. Returns model.ErrOptimisticConflict on a version mismatch and
	// model.ErrNotFound if the case is absent; nothing is written on error.
	CompareAndSwap(ctx context.Context, expectedVersion int64, c *model.Case, entries ...*model.AuditLog) (*model.Case, error)

	// ListLocked retrieves cases whose lock is active
	ListLocked(ctx context.Context, opts ...ListLockedOption) ([]*model.Case, error)

	// ListAvailable retrieves unlocked DISPONIVEL cases ordered by CreatedAt ascending
	ListAvailable(ctx context.Context, limit int) ([]*model.Case, error)
}
