package postgres

import (
	"context"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type interactionRepository struct {
	db DBTX
}

func newInteractionRepository(db DBTX) *interactionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) Create(ctx context.Context, i *model.Interaction) error {
	id := i.ID
	if id == "" {
		id = model.NewInteractionID()
	}
	createdAt := i.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO interactions (id, case_id, kind, user_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query, string(id), string(i.CaseID), string(i.Kind), i.UserID, i.Note, createdAt)
	if err != nil {
		return unavailable(err, "failed to insert interaction", goerr.V(model.CaseIDKey, i.CaseID))
	}
	return nil
}

func (r *interactionRepository) List(ctx context.Context, caseID model.CaseID) ([]*model.Interaction, error) {
	if !isUUID(string(caseID)) {
		return []*model.Interaction{}, nil
	}
	query := `
		SELECT id, case_id, kind, user_id, note, created_at
		FROM interactions
		WHERE case_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, string(caseID))
	if err != nil {
		return nil, unavailable(err, "failed to list interactions", goerr.V(model.CaseIDKey, caseID))
	}
	defer rows.Close()

	interactions := make([]*model.Interaction, 0)
	for rows.Next() {
		var (
			i             model.Interaction
			id, cid, kind string
		)
		if err := rows.Scan(&id, &cid, &kind, &i.UserID, &i.Note, &i.CreatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan interaction")
		}
		i.ID = model.InteractionID(id)
		i.CaseID = model.CaseID(cid)
		i.Kind = types.InteractionKind(kind)
		interactions = append(interactions, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, "failed to iterate interactions", goerr.V(model.CaseIDKey, caseID))
	}

	return interactions, nil
}

func (r *interactionRepository) HasInteractionSince(ctx context.Context, caseID model.CaseID, since time.Time) (bool, error) {
	if !isUUID(string(caseID)) {
		return false, nil
	}
	query := `SELECT EXISTS (SELECT 1 FROM interactions WHERE case_id = $1 AND created_at >= $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, string(caseID), since).Scan(&exists); err != nil {
		return false, unavailable(err, "failed to query interactions", goerr.V(model.CaseIDKey, caseID))
	}
	return exists, nil
}
