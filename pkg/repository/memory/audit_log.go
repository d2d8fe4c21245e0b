package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
)

type auditRepository struct {
	mu      sync.RWMutex
	entries map[model.CaseID][]*model.AuditLog
}

func newAuditRepository() *auditRepository {
	return &auditRepository{
		entries: make(map[model.CaseID][]*model.AuditLog),
	}
}

// appendAll is called by the case repository while it holds its own lock so
// that the entries become visible together with the case mutation.
func (r *auditRepository) appendAll(entries []*model.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		copied := e.Clone()
		if copied.ID == "" {
			copied.ID = model.NewAuditLogID()
		}
		if copied.CreatedAt.IsZero() {
			copied.CreatedAt = time.Now().UTC()
		}
		r.entries[copied.CaseID] = append(r.entries[copied.CaseID], copied)
	}
}

func (r *auditRepository) Append(ctx context.Context, entry *model.AuditLog) error {
	r.appendAll([]*model.AuditLog{entry})
	return nil
}

func (r *auditRepository) Query(ctx context.Context, caseID model.CaseID) ([]*model.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.entries[caseID]
	result := make([]*model.AuditLog, len(stored))
	for i, e := range stored {
		result[i] = e.Clone()
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
