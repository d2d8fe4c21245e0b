package model

import (
	"encoding/json"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/google/uuid"
)

// AuditLogID is a time-ordered UUID identifying an audit entry
type AuditLogID string

// NewAuditLogID generates a new UUID v7 AuditLogID. V7 ids sort by creation
// time, which breaks ties between entries sharing the same CreatedAt.
func NewAuditLogID() AuditLogID {
	return AuditLogID(uuid.Must(uuid.NewV7()).String())
}

// AuditLog is an append-only record of a state-affecting operation on a case.
// It is never updated or deleted.
type AuditLog struct {
	ID        AuditLogID
	CaseID    CaseID
	Event     types.AuditEvent
	Payload   json.RawMessage
	ActorID   string // empty when system-initiated
	CreatedAt time.Time
}

// NewAuditLog builds an entry for caseID. payload is marshaled as-is and left
// empty when marshaling fails or payload is nil.
func NewAuditLog(caseID CaseID, event types.AuditEvent, actor *Actor, payload any, now time.Time) *AuditLog {
	entry := &AuditLog{
		ID:        NewAuditLogID(),
		CaseID:    caseID,
		Event:     event,
		ActorID:   actor.UserID(),
		CreatedAt: now,
	}
	if payload != nil {
		if raw, ok := payload.(json.RawMessage); ok {
			entry.Payload = raw
		} else if data, err := json.Marshal(payload); err == nil {
			entry.Payload = data
		}
	}
	return entry
}

// Clone returns a deep copy of the entry
func (l *AuditLog) Clone() *AuditLog {
	copied := *l
	if l.Payload != nil {
		copied.Payload = make(json.RawMessage, len(l.Payload))
		copy(copied.Payload, l.Payload)
	}
	return &copied
}
