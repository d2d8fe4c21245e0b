package types

import "fmt"

// ExecutionType tells what triggered an SLA sweep
type ExecutionType string

const (
	ExecutionTypeScheduled ExecutionType = "scheduled"
	ExecutionTypeManual    ExecutionType = "manual"
)

// IsValid checks if the execution type is valid
func (t ExecutionType) IsValid() bool {
	switch t {
	case ExecutionTypeScheduled, ExecutionTypeManual:
		return true
	default:
		return false
	}
}

func (t ExecutionType) String() string {
	return string(t)
}

// ParseExecutionType parses a string into an ExecutionType
func ParseExecutionType(s string) (ExecutionType, error) {
	t := ExecutionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid execution type: %s", s)
	}
	return t, nil
}

// ReleaseReason classifies why the SLA engine reclaimed a case
type ReleaseReason string

const (
	ReleaseReasonExpiredWithInteraction ReleaseReason = "expired_with_interaction"
	ReleaseReasonExpiredNoInteraction   ReleaseReason = "expired_no_interaction"
)

// IsValid checks if the release reason is valid
func (r ReleaseReason) IsValid() bool {
	switch r {
	case ReleaseReasonExpiredWithInteraction, ReleaseReasonExpiredNoInteraction:
		return true
	default:
		return false
	}
}

func (r ReleaseReason) String() string {
	return string(r)
}

// InteractionKind is the kind of activity logged against a case
type InteractionKind string

const (
	InteractionKindComment    InteractionKind = "comment"
	InteractionKindAttachment InteractionKind = "attachment"
	InteractionKindPhone      InteractionKind = "phone"
)

// IsValid checks if the interaction kind is valid
func (k InteractionKind) IsValid() bool {
	switch k {
	case InteractionKindComment, InteractionKindAttachment, InteractionKindPhone:
		return true
	default:
		return false
	}
}

func (k InteractionKind) String() string {
	return string(k)
}

// ParseInteractionKind parses a string into an InteractionKind
func ParseInteractionKind(s string) (InteractionKind, error) {
	k := InteractionKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid interaction kind: %s", s)
	}
	return k, nil
}
