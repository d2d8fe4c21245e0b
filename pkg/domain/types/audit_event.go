package types

import "fmt"

// AuditEvent is the kind of state-affecting operation recorded in the audit trail
type AuditEvent string

const (
	AuditEventCreated           AuditEvent = "CREATED"
	AuditEventAssigned          AuditEvent = "ASSIGNED"
	AuditEventReleased          AuditEvent = "RELEASED"
	AuditEventStatusChanged     AuditEvent = "STATUS_CHANGED"
	AuditEventSLAExpired        AuditEvent = "SLA_EXPIRED"
	AuditEventSLAReleaseSkipped AuditEvent = "SLA_RELEASE_SKIPPED"
)

// IsValid checks if the audit event is valid
func (e AuditEvent) IsValid() bool {
	switch e {
	case AuditEventCreated,
		AuditEventAssigned,
		AuditEventReleased,
		AuditEventStatusChanged,
		AuditEventSLAExpired,
		AuditEventSLAReleaseSkipped:
		return true
	default:
		return false
	}
}

func (e AuditEvent) String() string {
	return string(e)
}

// ParseAuditEvent parses a string into an AuditEvent
func ParseAuditEvent(s string) (AuditEvent, error) {
	event := AuditEvent(s)
	if !event.IsValid() {
		return "", fmt.Errorf("invalid audit event: %s", s)
	}
	return event, nil
}
