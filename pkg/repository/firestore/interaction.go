package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

const interactionSubcollection = "interactions"

type interactionDoc struct {
	ID        string    `firestore:"id"`
	CaseID    string    `firestore:"case_id"`
	Kind      string    `firestore:"kind"`
	UserID    string    `firestore:"user_id"`
	Note      string    `firestore:"note"`
	CreatedAt time.Time `firestore:"created_at"`
}

type interactionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newInteractionRepository(client *firestore.Client) *interactionRepository {
	return &interactionRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *interactionRepository) interactionCollection(caseID model.CaseID) *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, "cases")).
		Doc(string(caseID)).
		Collection(interactionSubcollection)
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

	doc := &interactionDoc{
		ID:        string(id),
		CaseID:    string(i.CaseID),
		Kind:      string(i.Kind),
		UserID:    i.UserID,
		Note:      i.Note,
		CreatedAt: createdAt,
	}
	if _, err := r.interactionCollection(i.CaseID).Doc(doc.ID).Create(ctx, doc); err != nil {
		return unavailable(err, "failed to create interaction", goerr.V(model.CaseIDKey, i.CaseID))
	}
	return nil
}

func (r *interactionRepository) List(ctx context.Context, caseID model.CaseID) ([]*model.Interaction, error) {
	iter := r.interactionCollection(caseID).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	interactions := make([]*model.Interaction, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, unavailable(err, "failed to iterate interactions", goerr.V(model.CaseIDKey, caseID))
		}

		var d interactionDoc
		if err := docSnap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode interaction", goerr.V("doc_id", docSnap.Ref.ID))
		}
		interactions = append(interactions, &model.Interaction{
			ID:        model.InteractionID(d.ID),
			CaseID:    model.CaseID(d.CaseID),
			Kind:      types.InteractionKind(d.Kind),
			UserID:    d.UserID,
			Note:      d.Note,
			CreatedAt: d.CreatedAt,
		})
	}

	return interactions, nil
}

func (r *interactionRepository) HasInteractionSince(ctx context.Context, caseID model.CaseID, since time.Time) (bool, error) {
	iter := r.interactionCollection(caseID).Where("created_at", ">=", since).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, unavailable(err, "failed to query interactions", goerr.V(model.CaseIDKey, caseID))
	}
	return true, nil
}
