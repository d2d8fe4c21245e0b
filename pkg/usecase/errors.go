package usecase

import "github.com/esteira-credito/esteira/pkg/domain/model"

// Error kinds returned by use cases. Check them with errors.Is.
var (
	ErrNotFound           = model.ErrNotFound
	ErrUnauthorized       = model.ErrUnauthorized
	ErrInvalidTransition  = model.ErrInvalidTransition
	ErrLockConflict       = model.ErrLockConflict
	ErrOptimisticConflict = model.ErrOptimisticConflict
	ErrSLAEngineBusy      = model.ErrSLAEngineBusy
	ErrInvalidInterval    = model.ErrInvalidInterval
	ErrStoreUnavailable   = model.ErrStoreUnavailable
	ErrInvalidInput       = model.ErrInvalidInput
)

// Context keys for error values
const (
	CaseIDKey      = model.CaseIDKey
	ActorIDKey     = model.ActorIDKey
	ExecutionIDKey = model.ExecutionIDKey
)
