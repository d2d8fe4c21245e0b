package postgres

import (
	"context"
	"encoding/json"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type auditRepository struct {
	db DBTX
}

func newAuditRepository(db DBTX) *auditRepository {
	return &auditRepository{db: db}
}

const insertAuditLog = `
	INSERT INTO audit_logs (id, case_id, event, payload, actor_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

func insertAuditLogs(ctx context.Context, db DBTX, entries []*model.AuditLog) error {
	for _, e := range entries {
		_, err := db.Exec(ctx, insertAuditLog,
			string(e.ID), string(e.CaseID), string(e.Event),
			nullableJSON(e.Payload), e.ActorID, e.CreatedAt)
		if err != nil {
			return unavailable(err, "failed to insert audit entry",
				goerr.V(model.CaseIDKey, e.CaseID), goerr.V("event", e.Event))
		}
	}
	return nil
}

func (r *auditRepository) Append(ctx context.Context, entry *model.AuditLog) error {
	return insertAuditLogs(ctx, r.db, []*model.AuditLog{entry})
}

func (r *auditRepository) Query(ctx context.Context, caseID model.CaseID) ([]*model.AuditLog, error) {
	if !isUUID(string(caseID)) {
		return []*model.AuditLog{}, nil
	}
	query := `
		SELECT id, case_id, event, payload, actor_id, created_at
		FROM audit_logs
		WHERE case_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, string(caseID))
	if err != nil {
		return nil, unavailable(err, "failed to query audit entries", goerr.V(model.CaseIDKey, caseID))
	}
	defer rows.Close()

	entries := make([]*model.AuditLog, 0)
	for rows.Next() {
		var (
			e              model.AuditLog
			id, cid, event string
			payload        []byte
		)
		if err := rows.Scan(&id, &cid, &event, &payload, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan audit entry")
		}
		e.ID = model.AuditLogID(id)
		e.CaseID = model.CaseID(cid)
		e.Event = types.AuditEvent(event)
		if len(payload) > 0 {
			e.Payload = json.RawMessage(payload)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, "failed to iterate audit entries", goerr.V(model.CaseIDKey, caseID))
	}

	return entries, nil
}
