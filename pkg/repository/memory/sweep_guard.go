package memory

import (
	"context"
	"sync"
	"time"
)

type sweepGuardRepository struct {
	mu        sync.Mutex
	holder    string
	expiresAt time.Time
}

func newSweepGuardRepository() *sweepGuardRepository {
	return &sweepGuardRepository{}
}

func (r *sweepGuardRepository) TryAcquire(ctx context.Context, holder string, now time.Time, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.holder != "" && r.holder != holder && now.Before(r.expiresAt) {
		return false, nil
	}

	r.holder = holder
	r.expiresAt = now.Add(ttl)
	return true, nil
}

func (r *sweepGuardRepository) Release(ctx context.Context, holder string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.holder == holder {
		r.holder = ""
		r.expiresAt = time.Time{}
	}
	return nil
}
