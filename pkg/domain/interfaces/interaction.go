package interfaces

import (
	"context"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
)

// InteractionSignal answers whether a case had any comment, attachment or
// phone entry since a given instant
type InteractionSignal interface {
	HasInteractionSince(ctx context.Context, caseID model.CaseID, since time.Time) (bool, error)
}

// InteractionRepository stores interactions and serves the InteractionSignal
type InteractionRepository interface {
	InteractionSignal

	Create(ctx context.Context, i *model.Interaction) error
	List(ctx context.Context, caseID model.CaseID) ([]*model.Interaction, error)
}
