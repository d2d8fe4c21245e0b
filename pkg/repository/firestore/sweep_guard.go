package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const sweepGuardDoc = "sla_sweep"

type guardDoc struct {
	Holder    string    `firestore:"holder"`
	ExpiresAt time.Time `firestore:"expires_at"`
}

type sweepGuardRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSweepGuardRepository(client *firestore.Client) *sweepGuardRepository {
	return &sweepGuardRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *sweepGuardRepository) guardRef() *firestore.DocumentRef {
	return r.client.Collection(collectionName(r.collectionPrefix, "guards")).Doc(sweepGuardDoc)
}

func (r *sweepGuardRepository) TryAcquire(ctx context.Context, holder string, now time.Time, ttl time.Duration) (bool, error) {
	ref := r.guardRef()
	acquired := false

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		acquired = false

		docSnap, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if err == nil {
			var current guardDoc
			if err := docSnap.DataTo(&current); err != nil {
				return goerr.Wrap(err, "failed to decode sweep guard")
			}
			if current.Holder != "" && current.Holder != holder && now.Before(current.ExpiresAt) {
				return nil
			}
		}

		acquired = true
		return tx.Set(ref, &guardDoc{Holder: holder, ExpiresAt: now.Add(ttl)})
	})
	if err != nil {
		return false, unavailable(err, "failed to acquire sweep guard", goerr.V("holder", holder))
	}

	return acquired, nil
}

func (r *sweepGuardRepository) Release(ctx context.Context, holder string) error {
	ref := r.guardRef()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return err
		}

		var current guardDoc
		if err := docSnap.DataTo(&current); err != nil {
			return goerr.Wrap(err, "failed to decode sweep guard")
		}
		if current.Holder != holder {
			return nil
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return unavailable(err, "failed to release sweep guard", goerr.V("holder", holder))
	}
	return nil
}
