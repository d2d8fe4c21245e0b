package firestore

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

// Audit entries live under each case document so that a case mutation and
// its entries can be committed in one transaction.
const auditSubcollection = "audit_logs"

type auditDoc struct {
	ID        string    `firestore:"id"`
	CaseID    string    `firestore:"case_id"`
	Event     string    `firestore:"event"`
	Payload   string    `firestore:"payload"`
	ActorID   string    `firestore:"actor_id"`
	CreatedAt time.Time `firestore:"created_at"`
}

func toAuditDoc(e *model.AuditLog) *auditDoc {
	return &auditDoc{
		ID:        string(e.ID),
		CaseID:    string(e.CaseID),
		Event:     string(e.Event),
		Payload:   string(e.Payload),
		ActorID:   e.ActorID,
		CreatedAt: e.CreatedAt,
	}
}

func (d *auditDoc) toModel() *model.AuditLog {
	e := &model.AuditLog{
		ID:        model.AuditLogID(d.ID),
		CaseID:    model.CaseID(d.CaseID),
		Event:     types.AuditEvent(d.Event),
		ActorID:   d.ActorID,
		CreatedAt: d.CreatedAt,
	}
	if d.Payload != "" {
		e.Payload = json.RawMessage(d.Payload)
	}
	return e
}

type auditRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAuditRepository(client *firestore.Client) *auditRepository {
	return &auditRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *auditRepository) auditCollection(caseID model.CaseID) *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, "cases")).
		Doc(string(caseID)).
		Collection(auditSubcollection)
}

func (r *auditRepository) Append(ctx context.Context, entry *model.AuditLog) error {
	_, err := r.auditCollection(entry.CaseID).Doc(string(entry.ID)).Create(ctx, toAuditDoc(entry))
	if err != nil {
		return unavailable(err, "failed to append audit entry",
			goerr.V(model.CaseIDKey, entry.CaseID), goerr.V("event", entry.Event))
	}
	return nil
}

func (r *auditRepository) Query(ctx context.Context, caseID model.CaseID) ([]*model.AuditLog, error) {
	iter := r.auditCollection(caseID).Documents(ctx)
	defer iter.Stop()

	entries := make([]*model.AuditLog, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, unavailable(err, "failed to iterate audit entries", goerr.V(model.CaseIDKey, caseID))
		}

		var d auditDoc
		if err := docSnap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode audit entry", goerr.V("doc_id", docSnap.Ref.ID))
		}
		entries = append(entries, d.toModel())
	}

	// IDs are UUID v7 and break ties between equal timestamps
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return entries, nil
}
