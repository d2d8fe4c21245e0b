package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/goerr/v2"
)

const caseColumns = `id, status, client_id, assignee_id, lock_active, lock_owner_id, lock_started_at,
	version, calc_result, created_at, updated_at, closing_approved_at, finance_activation_at`

type caseRepository struct {
	db       DBTX
	txRunner *TxRunner
}

func newCaseRepository(db DBTX, txRunner *TxRunner) *caseRepository {
	return &caseRepository{db: db, txRunner: txRunner}
}

func scanCase(row pgx.Row) (*model.Case, error) {
	var (
		c          model.Case
		id, status string
		calcResult []byte
	)
	err := row.Scan(
		&id, &status, &c.ClientID, &c.AssigneeID,
		&c.Lock.Active, &c.Lock.OwnerID, &c.Lock.StartedAt,
		&c.Version, &calcResult, &c.CreatedAt, &c.UpdatedAt,
		&c.ClosingApprovedAt, &c.FinanceActivationAt,
	)
	if err != nil {
		return nil, err
	}

	c.ID = model.CaseID(id)
	c.Status = types.CaseStatus(status)
	if len(calcResult) > 0 {
		c.CalcResult = json.RawMessage(calcResult)
	}
	return &c, nil
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case, entries ...*model.AuditLog) (*model.Case, error) {
	now := time.Now().UTC()
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	var created *model.Case
	err := r.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO cases (` + caseColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $9, $9, $10, $11)
			RETURNING ` + caseColumns

		row := tx.QueryRow(ctx, query,
			string(c.ID), string(c.Status), c.ClientID, c.AssigneeID,
			c.Lock.Active, c.Lock.OwnerID, c.Lock.StartedAt,
			nullableJSON(c.CalcResult), createdAt,
			c.ClosingApprovedAt, c.FinanceActivationAt,
		)

		var err error
		created, err = scanCase(row)
		if err != nil {
			if isUniqueViolation(err) {
				return goerr.Wrap(err, "case already exists", goerr.V(model.CaseIDKey, c.ID))
			}
			return unavailable(err, "failed to insert case", goerr.V(model.CaseIDKey, c.ID))
		}

		return insertAuditLogs(ctx, tx, entries)
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *caseRepository) Get(ctx context.Context, id model.CaseID) (*model.Case, error) {
	if !isUUID(string(id)) {
		return nil, goerr.Wrap(model.ErrNotFound, "case not found", goerr.V(model.CaseIDKey, id))
	}
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`

	c, err := scanCase(r.db.QueryRow(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "case not found", goerr.V(model.CaseIDKey, id))
		}
		return nil, unavailable(err, "failed to get case", goerr.V(model.CaseIDKey, id))
	}
	return c, nil
}

func (r *caseRepository) CompareAndSwap(ctx context.Context, expectedVersion int64, c *model.Case, entries ...*model.AuditLog) (*model.Case, error) {
	var updated *model.Case

	err := r.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE cases SET
				status = $3, client_id = $4, assignee_id = $5,
				lock_active = $6, lock_owner_id = $7, lock_started_at = $8,
				calc_result = $9, closing_approved_at = $10, finance_activation_at = $11,
				version = version + 1, updated_at = $12
			WHERE id = $1 AND version = $2
			RETURNING ` + caseColumns

		row := tx.QueryRow(ctx, query,
			string(c.ID), expectedVersion,
			string(c.Status), c.ClientID, c.AssigneeID,
			c.Lock.Active, c.Lock.OwnerID, c.Lock.StartedAt,
			nullableJSON(c.CalcResult), c.ClosingApprovedAt, c.FinanceActivationAt,
			time.Now().UTC(),
		)

		var err error
		updated, err = scanCase(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missOrConflict(ctx, tx, c.ID, expectedVersion)
		}
		if err != nil {
			return unavailable(err, "failed to update case", goerr.V(model.CaseIDKey, c.ID))
		}

		return insertAuditLogs(ctx, tx, entries)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// missOrConflict tells a missing case apart from a stale version after an
// UPDATE matched no row
func (r *caseRepository) missOrConflict(ctx context.Context, tx DBTX, id model.CaseID, expectedVersion int64) error {
	var stored int64
	err := tx.QueryRow(ctx, `SELECT version FROM cases WHERE id = $1`, string(id)).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return goerr.Wrap(model.ErrNotFound, "case not found", goerr.V(model.CaseIDKey, id))
	}
	if err != nil {
		return unavailable(err, "failed to read case version", goerr.V(model.CaseIDKey, id))
	}

	return goerr.Wrap(model.ErrOptimisticConflict, "version mismatch",
		goerr.V(model.CaseIDKey, id),
		goerr.V(model.ExpectedVersionKey, expectedVersion),
		goerr.V("stored_version", stored))
}

func (r *caseRepository) ListLocked(ctx context.Context, opts ...interfaces.ListLockedOption) ([]*model.Case, error) {
	cfg := interfaces.BuildListLockedConfig(opts...)

	query := `
		SELECT ` + caseColumns + `
		FROM cases
		WHERE lock_active AND ($1 = '' OR lock_owner_id = $1)
		ORDER BY lock_started_at, id`

	rows, err := r.db.Query(ctx, query, cfg.OwnerID())
	if err != nil {
		return nil, unavailable(err, "failed to list locked cases")
	}
	return collectCases(rows)
}

func (r *caseRepository) ListAvailable(ctx context.Context, limit int) ([]*model.Case, error) {
	query := `
		SELECT ` + caseColumns + `
		FROM cases
		WHERE status = $1 AND NOT lock_active
		ORDER BY created_at, id`

	args := []any{string(types.CaseStatusDisponivel)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, unavailable(err, "failed to list available cases")
	}
	return collectCases(rows)
}

func collectCases(rows pgx.Rows) ([]*model.Case, error) {
	defer rows.Close()

	cases := make([]*model.Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan case")
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, "failed to iterate cases")
	}
	return cases, nil
}
