package model

import (
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/google/uuid"
)

// InteractionID identifies an interaction entry
type InteractionID string

// NewInteractionID generates a new UUID v4 InteractionID
func NewInteractionID() InteractionID {
	return InteractionID(uuid.New().String())
}

// Interaction is a comment, attachment or phone entry logged on a case. The
// SLA engine only asks whether any exist after a given instant.
type Interaction struct {
	ID        InteractionID
	CaseID    CaseID
	Kind      types.InteractionKind
	UserID    string
	Note      string
	CreatedAt time.Time
}
