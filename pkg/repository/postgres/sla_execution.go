package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/goerr/v2"
)

type slaExecutionRepository struct {
	db DBTX
}

func newSLAExecutionRepository(db DBTX) *slaExecutionRepository {
	return &slaExecutionRepository{db: db}
}

const slaExecutionColumns = `id, executed_at, execution_type, executed_by_user_id,
	cases_expired_count, duration_seconds, cases_released, details`

func scanSLAExecution(row pgx.Row) (*model.SLAExecution, error) {
	var (
		e                 model.SLAExecution
		id, executionType string
		released, details []byte
	)
	err := row.Scan(&id, &e.ExecutedAt, &executionType, &e.ExecutedByUserID,
		&e.CasesExpiredCount, &e.DurationSeconds, &released, &details)
	if err != nil {
		return nil, err
	}

	e.ID = model.SLAExecutionID(id)
	e.ExecutionType = types.ExecutionType(executionType)
	if err := json.Unmarshal(released, &e.CasesReleased); err != nil {
		return nil, goerr.Wrap(err, "failed to decode released cases", goerr.V(model.ExecutionIDKey, id))
	}
	if e.CasesReleased == nil {
		e.CasesReleased = []model.ReleasedCase{}
	}
	if err := json.Unmarshal(details, &e.Details); err != nil {
		return nil, goerr.Wrap(err, "failed to decode execution details", goerr.V(model.ExecutionIDKey, id))
	}
	return &e, nil
}

func (r *slaExecutionRepository) Create(ctx context.Context, e *model.SLAExecution) error {
	released := e.CasesReleased
	if released == nil {
		released = []model.ReleasedCase{}
	}
	releasedJSON, err := json.Marshal(released)
	if err != nil {
		return goerr.Wrap(err, "failed to encode released cases", goerr.V(model.ExecutionIDKey, e.ID))
	}
	detailsJSON, err := json.Marshal(e.Details)
	if err != nil {
		return goerr.Wrap(err, "failed to encode execution details", goerr.V(model.ExecutionIDKey, e.ID))
	}

	query := `INSERT INTO sla_executions (` + slaExecutionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.db.Exec(ctx, query,
		string(e.ID), e.ExecutedAt, string(e.ExecutionType), e.ExecutedByUserID,
		e.CasesExpiredCount, e.DurationSeconds, releasedJSON, detailsJSON)
	if err != nil {
		if isUniqueViolation(err) {
			return goerr.Wrap(err, "sla execution already exists", goerr.V(model.ExecutionIDKey, e.ID))
		}
		return unavailable(err, "failed to insert sla execution", goerr.V(model.ExecutionIDKey, e.ID))
	}
	return nil
}

func (r *slaExecutionRepository) Get(ctx context.Context, id model.SLAExecutionID) (*model.SLAExecution, error) {
	if !isUUID(string(id)) {
		return nil, goerr.Wrap(model.ErrNotFound, "sla execution not found", goerr.V(model.ExecutionIDKey, id))
	}
	query := `SELECT ` + slaExecutionColumns + ` FROM sla_executions WHERE id = $1`

	e, err := scanSLAExecution(r.db.QueryRow(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "sla execution not found", goerr.V(model.ExecutionIDKey, id))
		}
		return nil, unavailable(err, "failed to get sla execution", goerr.V(model.ExecutionIDKey, id))
	}
	return e, nil
}

func (r *slaExecutionRepository) List(ctx context.Context, filter model.SLAExecutionFilter, page model.Pagination) ([]*model.SLAExecution, int, error) {
	page = page.Normalize()

	var (
		conds []string
		args  []any
	)
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("executed_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("executed_at < $%d", len(args)))
	}
	if filter.ExecutionType != "" {
		args = append(args, string(filter.ExecutionType))
		conds = append(conds, fmt.Sprintf("execution_type = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sla_executions`+where, args...).Scan(&total); err != nil {
		return nil, 0, unavailable(err, "failed to count sla executions")
	}

	args = append(args, page.Limit, page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM sla_executions%s ORDER BY executed_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		slaExecutionColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, unavailable(err, "failed to list sla executions")
	}
	defer rows.Close()

	executions := make([]*model.SLAExecution, 0, page.Limit)
	for rows.Next() {
		e, err := scanSLAExecution(rows)
		if err != nil {
			return nil, 0, goerr.Wrap(err, "failed to scan sla execution")
		}
		executions = append(executions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, unavailable(err, "failed to iterate sla executions")
	}

	return executions, total, nil
}
