package memory

import (
	"context"
	"sync"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
)

type interactionRepository struct {
	mu           sync.RWMutex
	interactions map[model.CaseID][]*model.Interaction
}

func newInteractionRepository() *interactionRepository {
	return &interactionRepository{
		interactions: make(map[model.CaseID][]*model.Interaction),
	}
}

func (r *interactionRepository) Create(ctx context.Context, i *model.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *i
	if copied.ID == "" {
		copied.ID = model.NewInteractionID()
	}
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC()
	}
	r.interactions[copied.CaseID] = append(r.interactions[copied.CaseID], &copied)
	return nil
}

func (r *interactionRepository) List(ctx context.Context, caseID model.CaseID) ([]*model.Interaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.interactions[caseID]
	result := make([]*model.Interaction, len(stored))
	for idx, i := range stored {
		copied := *i
		result[idx] = &copied
	}
	return result, nil
}

func (r *interactionRepository) HasInteractionSince(ctx context.Context, caseID model.CaseID, since time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, i := range r.interactions[caseID] {
		if !i.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}
