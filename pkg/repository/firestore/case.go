package firestore

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type lockDoc struct {
	Active    bool       `firestore:"active"`
	OwnerID   string     `firestore:"owner_id"`
	StartedAt *time.Time `firestore:"started_at"`
}

type caseDoc struct {
	ID                  string     `firestore:"id"`
	Status              string     `firestore:"status"`
	ClientID            string     `firestore:"client_id"`
	AssigneeID          string     `firestore:"assignee_id"`
	Lock                lockDoc    `firestore:"lock"`
	Version             int64      `firestore:"version"`
	CalcResult          string     `firestore:"calc_result"`
	CreatedAt           time.Time  `firestore:"created_at"`
	UpdatedAt           time.Time  `firestore:"updated_at"`
	ClosingApprovedAt   *time.Time `firestore:"closing_approved_at"`
	FinanceActivationAt *time.Time `firestore:"finance_activation_at"`
}

func toCaseDoc(c *model.Case) *caseDoc {
	return &caseDoc{
		ID:         string(c.ID),
		Status:     string(c.Status),
		ClientID:   c.ClientID,
		AssigneeID: c.AssigneeID,
		Lock: lockDoc{
			Active:    c.Lock.Active,
			OwnerID:   c.Lock.OwnerID,
			StartedAt: c.Lock.StartedAt,
		},
		Version:             c.Version,
		CalcResult:          string(c.CalcResult),
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
		ClosingApprovedAt:   c.ClosingApprovedAt,
		FinanceActivationAt: c.FinanceActivationAt,
	}
}

func (d *caseDoc) toModel() *model.Case {
	c := &model.Case{
		ID:         model.CaseID(d.ID),
		Status:     types.CaseStatus(d.Status),
		ClientID:   d.ClientID,
		AssigneeID: d.AssigneeID,
		Lock: model.Lock{
			Active:    d.Lock.Active,
			OwnerID:   d.Lock.OwnerID,
			StartedAt: d.Lock.StartedAt,
		},
		Version:             d.Version,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		ClosingApprovedAt:   d.ClosingApprovedAt,
		FinanceActivationAt: d.FinanceActivationAt,
	}
	if d.CalcResult != "" {
		c.CalcResult = json.RawMessage(d.CalcResult)
	}
	return c
}

// casMaxAttempts bounds retries of an aborted transaction. Every retry
// re-reads the version, so contention ends in ErrOptimisticConflict.
const casMaxAttempts = 20

type caseRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newCaseRepository(client *firestore.Client) *caseRepository {
	return &caseRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *caseRepository) casesCollection() string {
	return collectionName(r.collectionPrefix, "cases")
}

func (r *caseRepository) caseRef(id model.CaseID) *firestore.DocumentRef {
	return r.client.Collection(r.casesCollection()).Doc(string(id))
}

func (r *caseRepository) auditRef(caseID model.CaseID, id model.AuditLogID) *firestore.DocumentRef {
	return r.caseRef(caseID).Collection(auditSubcollection).Doc(string(id))
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case, entries ...*model.AuditLog) (*model.Case, error) {
	// Firestore keeps microsecond precision
	now := time.Now().UTC().Truncate(time.Microsecond)
	created := c.Clone()
	created.Version = 1
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.CreatedAt = created.CreatedAt.Truncate(time.Microsecond)
	created.UpdatedAt = created.CreatedAt

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(r.caseRef(created.ID), toCaseDoc(created)); err != nil {
			return err
		}
		for _, e := range entries {
			if err := tx.Create(r.auditRef(e.CaseID, e.ID), toAuditDoc(e)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(err, "case already exists", goerr.V(model.CaseIDKey, created.ID))
		}
		return nil, unavailable(err, "failed to create case", goerr.V(model.CaseIDKey, created.ID))
	}

	return created, nil
}

func (r *caseRepository) Get(ctx context.Context, id model.CaseID) (*model.Case, error) {
	docSnap, err := r.caseRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "case not found", goerr.V(model.CaseIDKey, id))
		}
		return nil, unavailable(err, "failed to get case", goerr.V(model.CaseIDKey, id))
	}

	var d caseDoc
	if err := docSnap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode case", goerr.V(model.CaseIDKey, id))
	}

	return d.toModel(), nil
}

func (r *caseRepository) CompareAndSwap(ctx context.Context, expectedVersion int64, c *model.Case, entries ...*model.AuditLog) (*model.Case, error) {
	ref := r.caseRef(c.ID)
	var updated *model.Case

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "case not found", goerr.V(model.CaseIDKey, c.ID))
			}
			return err
		}

		var stored caseDoc
		if err := docSnap.DataTo(&stored); err != nil {
			return goerr.Wrap(err, "failed to decode case", goerr.V(model.CaseIDKey, c.ID))
		}
		if stored.Version != expectedVersion {
			return goerr.Wrap(model.ErrOptimisticConflict, "version mismatch",
				goerr.V(model.CaseIDKey, c.ID),
				goerr.V(model.ExpectedVersionKey, expectedVersion),
				goerr.V("stored_version", stored.Version))
		}

		next := c.Clone()
		next.Version = stored.Version + 1
		next.CreatedAt = stored.CreatedAt
		next.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

		if err := tx.Set(ref, toCaseDoc(next)); err != nil {
			return err
		}
		for _, e := range entries {
			if err := tx.Create(r.auditRef(e.CaseID, e.ID), toAuditDoc(e)); err != nil {
				return err
			}
		}

		updated = next
		return nil
	}, firestore.MaxAttempts(casMaxAttempts))
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, unavailable(err, "failed to update case", goerr.V(model.CaseIDKey, c.ID))
	}

	return updated, nil
}

func (r *caseRepository) ListLocked(ctx context.Context, opts ...interfaces.ListLockedOption) ([]*model.Case, error) {
	cfg := interfaces.BuildListLockedConfig(opts...)

	query := r.client.Collection(r.casesCollection()).Where("lock.active", "==", true)
	if owner := cfg.OwnerID(); owner != "" {
		query = query.Where("lock.owner_id", "==", owner)
	}

	cases, err := r.collect(ctx, query.Documents(ctx))
	if err != nil {
		return nil, err
	}

	sort.Slice(cases, func(i, j int) bool {
		return cases[i].Lock.StartedAt.Before(*cases[j].Lock.StartedAt)
	})
	return cases, nil
}

func (r *caseRepository) ListAvailable(ctx context.Context, limit int) ([]*model.Case, error) {
	query := r.client.Collection(r.casesCollection()).
		Where("status", "==", string(types.CaseStatusDisponivel)).
		Where("lock.active", "==", false).
		OrderBy("created_at", firestore.Asc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	return r.collect(ctx, query.Documents(ctx))
}

func (r *caseRepository) collect(ctx context.Context, iter *firestore.DocumentIterator) ([]*model.Case, error) {
	defer iter.Stop()

	cases := make([]*model.Case, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, unavailable(err, "failed to iterate cases")
		}

		var d caseDoc
		if err := docSnap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode case", goerr.V("doc_id", docSnap.Ref.ID))
		}
		cases = append(cases, d.toModel())
	}

	return cases, nil
}
