package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
)

func runSweepGuardRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	t.Run("second holder is refused while the guard is live", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ok, err := repo.SweepGuard().TryAcquire(ctx, "sweep-1", baseTime, 10*time.Minute)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()

		ok, err = repo.SweepGuard().TryAcquire(ctx, "sweep-2", baseTime.Add(time.Minute), 10*time.Minute)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})

	t.Run("released guard can be taken again", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ok, err := repo.SweepGuard().TryAcquire(ctx, "sweep-1", baseTime, 10*time.Minute)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
		gt.NoError(t, repo.SweepGuard().Release(ctx, "sweep-1")).Required()

		ok, err = repo.SweepGuard().TryAcquire(ctx, "sweep-2", baseTime.Add(time.Minute), 10*time.Minute)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
	})

	t.Run("expired guard is taken over", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ok, err := repo.SweepGuard().TryAcquire(ctx, "crashed", baseTime, 10*time.Minute)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()

		ok, err = repo.SweepGuard().TryAcquire(ctx, "sweep-2", baseTime.Add(11*time.Minute), 10*time.Minute)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
	})

	t.Run("release by a stale holder keeps the guard", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ok, err := repo.SweepGuard().TryAcquire(ctx, "sweep-1", baseTime, 10*time.Minute)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
		gt.NoError(t, repo.SweepGuard().Release(ctx, "someone-else")).Required()

		ok, err = repo.SweepGuard().TryAcquire(ctx, "sweep-2", baseTime.Add(time.Minute), 10*time.Minute)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})
}
