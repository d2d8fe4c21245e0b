package model

import "github.com/m-mizutani/goerr/v2"

// Domain error kinds. Repositories and use cases wrap these with goerr so
// that callers can classify failures with errors.Is.
var (
	ErrNotFound           = goerr.New("not found")
	ErrUnauthorized       = goerr.New("unauthorized")
	ErrInvalidTransition  = goerr.New("invalid status transition")
	ErrLockConflict       = goerr.New("case already taken, refresh the queue")
	ErrOptimisticConflict = goerr.New("case was modified concurrently")
	ErrSLAEngineBusy      = goerr.New("sla sweep already running")
	ErrInvalidInterval    = goerr.New("invalid interval")
	ErrStoreUnavailable   = goerr.New("store unavailable")
	ErrInvalidInput       = goerr.New("invalid input")
)

// Context keys for error values
const (
	CaseIDKey          = "case_id"
	ActorIDKey         = "actor_id"
	RoleKey            = "role"
	FromStatusKey      = "from_status"
	ToStatusKey        = "to_status"
	ExpectedVersionKey = "expected_version"
	ExecutionIDKey     = "execution_id"
)
