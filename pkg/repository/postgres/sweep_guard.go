package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/goerr/v2"
)

const sweepGuardName = "sla_sweep"

type sweepGuardRepository struct {
	db DBTX
}

func newSweepGuardRepository(db DBTX) *sweepGuardRepository {
	return &sweepGuardRepository{db: db}
}

func (r *sweepGuardRepository) TryAcquire(ctx context.Context, holder string, now time.Time, ttl time.Duration) (bool, error) {
	query := `
		INSERT INTO sla_guards (name, holder, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
			SET holder = EXCLUDED.holder, expires_at = EXCLUDED.expires_at
			WHERE sla_guards.holder = EXCLUDED.holder OR sla_guards.expires_at <= $4
		RETURNING holder`

	var got string
	err := r.db.QueryRow(ctx, query, sweepGuardName, holder, now.Add(ttl), now).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, unavailable(err, "failed to acquire sweep guard", goerr.V("holder", holder))
	}
	return got == holder, nil
}

func (r *sweepGuardRepository) Release(ctx context.Context, holder string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sla_guards WHERE name = $1 AND holder = $2`, sweepGuardName, holder)
	if err != nil {
		return unavailable(err, "failed to release sweep guard", goerr.V("holder", holder))
	}
	return nil
}
