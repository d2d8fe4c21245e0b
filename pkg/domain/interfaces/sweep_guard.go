package interfaces

import (
	"context"
	"time"
)

// SweepGuardRepository is the TTL-bounded execution guard that keeps SLA
// sweeps mutually exclusive across processes. A guard left behind by a
// crashed sweep expires after its TTL.
type SweepGuardRepository interface {
	// TryAcquire takes the guard for holder if it is free or expired at now.
	// It returns false without error when another holder owns a live guard.
	TryAcquire(ctx context.Context, holder string, now time.Time, ttl time.Duration) (bool, error)

	// Release frees the guard if holder still owns it
	Release(ctx context.Context, holder string) error
}
