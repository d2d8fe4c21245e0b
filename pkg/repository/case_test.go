package repository_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func runCaseRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	t.Run("Create stores case at version 1 with its audit entries", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := newAvailableCase("client-1", baseTime)
		entry := model.NewAuditLog(c.ID, types.AuditEventCreated, nil, map[string]string{"client_id": "client-1"}, baseTime)

		created, err := repo.Case().Create(ctx, c, entry)
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).Equal(c.ID)
		gt.Value(t, created.Version).Equal(int64(1))
		gt.Value(t, created.Status).Equal(types.CaseStatusDisponivel)
		gt.Bool(t, created.CreatedAt.Equal(baseTime)).True()

		entries, err := repo.Audit().Query(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1).Required()
		gt.Value(t, entries[0].Event).Equal(types.AuditEventCreated)
		gt.String(t, string(entries[0].Payload)).Contains("client-1")
	})

	t.Run("Get returns stored case", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := newLockedCase("client-2", "user-a", baseTime)
		c.CalcResult = json.RawMessage(`{"rate":1.99}`)
		_, err := repo.Case().Create(ctx, c)
		gt.NoError(t, err).Required()

		got, err := repo.Case().Get(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ClientID).Equal("client-2")
		gt.Value(t, got.AssigneeID).Equal("user-a")
		gt.Bool(t, got.Lock.Active).True()
		gt.Value(t, got.Lock.OwnerID).Equal("user-a")
		gt.Value(t, got.Lock.StartedAt).NotNil()
		gt.Bool(t, got.Lock.StartedAt.Equal(baseTime)).True()
		gt.String(t, string(got.CalcResult)).Contains("1.99")
		gt.NoError(t, got.Validate())
	})

	t.Run("Get returns ErrNotFound for unknown case", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Case().Get(context.Background(), model.NewCaseID())
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("Get returns ErrNotFound for malformed id", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Case().Get(context.Background(), model.CaseID("not-a-case"))
		gt.Error(t, err).Is(model.ErrNotFound)
		gt.Error(t, err).IsNot(model.ErrStoreUnavailable)
	})

	t.Run("CompareAndSwap bumps version and appends audit entries", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := newAvailableCase("client-3", baseTime)
		created, err := repo.Case().Create(ctx, c)
		gt.NoError(t, err).Required()

		next := created.Clone()
		started := baseTime.Add(time.Hour)
		next.Status = types.CaseStatusAtribuido
		next.AssigneeID = "user-b"
		next.Lock = model.Lock{Active: true, OwnerID: "user-b", StartedAt: &started}
		entry := model.NewAuditLog(c.ID, types.AuditEventAssigned, &model.Actor{ID: "user-b", Role: types.RoleAtendente}, nil, started)

		updated, err := repo.Case().CompareAndSwap(ctx, created.Version, next, entry)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Version).Equal(int64(2))
		gt.Value(t, updated.Status).Equal(types.CaseStatusAtribuido)
		gt.Bool(t, updated.CreatedAt.Equal(created.CreatedAt)).True()

		got, err := repo.Case().Get(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Version).Equal(int64(2))
		gt.Value(t, got.Lock.OwnerID).Equal("user-b")

		entries, err := repo.Audit().Query(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1).Required()
		gt.Value(t, entries[0].ActorID).Equal("user-b")
	})

	t.Run("CompareAndSwap rejects stale version and writes nothing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Case().Create(ctx, newAvailableCase("client-4", baseTime))
		gt.NoError(t, err).Required()

		next := created.Clone()
		next.Status = types.CaseStatusCancelado
		entry := model.NewAuditLog(created.ID, types.AuditEventStatusChanged, nil, nil, baseTime)

		_, err = repo.Case().CompareAndSwap(ctx, created.Version+1, next, entry)
		gt.Error(t, err).Is(model.ErrOptimisticConflict)

		got, err := repo.Case().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Version).Equal(int64(1))
		gt.Value(t, got.Status).Equal(types.CaseStatusDisponivel)

		entries, err := repo.Audit().Query(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(0)
	})

	t.Run("CompareAndSwap returns ErrNotFound for unknown case", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Case().CompareAndSwap(context.Background(), 1, newAvailableCase("client-5", baseTime))
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("concurrent CompareAndSwap on one version admits exactly one writer", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Case().Create(ctx, newAvailableCase("client-6", baseTime))
		gt.NoError(t, err).Required()

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()

				owner := "user-" + string(rune('a'+n))
				started := baseTime.Add(time.Duration(n) * time.Minute)
				next := created.Clone()
				next.Status = types.CaseStatusAtribuido
				next.AssigneeID = owner
				next.Lock = model.Lock{Active: true, OwnerID: owner, StartedAt: &started}

				_, err := repo.Case().CompareAndSwap(ctx, created.Version, next)

				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					successes++
				} else {
					gt.Error(t, err).Is(model.ErrOptimisticConflict)
					conflicts++
				}
			}(i)
		}
		wg.Wait()

		gt.Number(t, successes).Equal(1)
		gt.Number(t, conflicts).Equal(workers - 1)

		got, err := repo.Case().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Version).Equal(int64(2))
		gt.NoError(t, got.Validate())
	})

	t.Run("ListLocked returns active locks ordered by start and filters by owner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		older := newLockedCase("client-7", "user-a", baseTime)
		newer := newLockedCase("client-8", "user-b", baseTime.Add(2*time.Hour))
		free := newAvailableCase("client-9", baseTime)
		for _, c := range []*model.Case{newer, free, older} {
			_, err := repo.Case().Create(ctx, c)
			gt.NoError(t, err).Required()
		}

		locked, err := repo.Case().ListLocked(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, locked).Length(2).Required()
		gt.Value(t, locked[0].ID).Equal(older.ID)
		gt.Value(t, locked[1].ID).Equal(newer.ID)

		mine, err := repo.Case().ListLocked(ctx, interfaces.WithOwner("user-b"))
		gt.NoError(t, err).Required()
		gt.Array(t, mine).Length(1).Required()
		gt.Value(t, mine[0].ID).Equal(newer.ID)
	})

	t.Run("ListAvailable returns unlocked DISPONIVEL cases oldest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		second := newAvailableCase("client-10", baseTime.Add(time.Hour))
		first := newAvailableCase("client-11", baseTime)
		third := newAvailableCase("client-12", baseTime.Add(2*time.Hour))
		taken := newLockedCase("client-13", "user-a", baseTime)
		for _, c := range []*model.Case{second, taken, third, first} {
			_, err := repo.Case().Create(ctx, c)
			gt.NoError(t, err).Required()
		}

		available, err := repo.Case().ListAvailable(ctx, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, available).Length(3).Required()
		gt.Value(t, available[0].ID).Equal(first.ID)
		gt.Value(t, available[1].ID).Equal(second.ID)
		gt.Value(t, available[2].ID).Equal(third.ID)

		limited, err := repo.Case().ListAvailable(ctx, 2)
		gt.NoError(t, err).Required()
		gt.Array(t, limited).Length(2)
	})
}
