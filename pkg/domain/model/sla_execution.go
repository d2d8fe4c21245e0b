package model

import (
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/google/uuid"
)

// SLAExecutionID identifies one SLA sweep
type SLAExecutionID string

// NewSLAExecutionID generates a new UUID v7 SLAExecutionID
func NewSLAExecutionID() SLAExecutionID {
	return SLAExecutionID(uuid.Must(uuid.NewV7()).String())
}

func (id SLAExecutionID) String() string {
	return string(id)
}

// ReleasedCase is one case reclaimed by a sweep
type ReleasedCase struct {
	CaseID         CaseID              `json:"case_id" firestore:"CaseID"`
	ClientID       string              `json:"client_id" firestore:"ClientID"`
	AssignedUserID string              `json:"assigned_user_id" firestore:"AssignedUserID"`
	Reason         types.ReleaseReason `json:"reason" firestore:"Reason"`
}

// SLAExecutionDetails are the per-sweep counters
type SLAExecutionDetails struct {
	Processed       int `json:"processed" firestore:"Processed"`
	Errors          int `json:"errors" firestore:"Errors"`
	AlreadyExpired  int `json:"already_expired" firestore:"AlreadyExpired"`
	TotalCasesFound int `json:"total_cases_found" firestore:"TotalCasesFound"`
}

// SLAExecution is the immutable summary of one sweep
type SLAExecution struct {
	ID                SLAExecutionID      `json:"id"`
	ExecutedAt        time.Time           `json:"executed_at"`
	ExecutionType     types.ExecutionType `json:"execution_type"`
	ExecutedByUserID  string              `json:"executed_by_user_id,omitempty"`
	CasesExpiredCount int                 `json:"cases_expired_count"`
	DurationSeconds   float64             `json:"duration_seconds"`
	CasesReleased     []ReleasedCase      `json:"cases_released"`
	Details           SLAExecutionDetails `json:"details"`
}

// Clone returns a deep copy of the execution
func (e *SLAExecution) Clone() *SLAExecution {
	copied := *e
	copied.CasesReleased = make([]ReleasedCase, len(e.CasesReleased))
	copy(copied.CasesReleased, e.CasesReleased)
	return &copied
}

// SLAExecutionFilter narrows ListExecutions results. Zero values match everything.
type SLAExecutionFilter struct {
	From          *time.Time
	To            *time.Time
	ExecutionType types.ExecutionType
}

// Match reports whether the execution satisfies the filter. From is
// inclusive, To is exclusive.
func (f SLAExecutionFilter) Match(e *SLAExecution) bool {
	if f.From != nil && e.ExecutedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !e.ExecutedAt.Before(*f.To) {
		return false
	}
	if f.ExecutionType != "" && e.ExecutionType != f.ExecutionType {
		return false
	}
	return true
}

// Pagination is a 1-based page request
type Pagination struct {
	Page  int
	Limit int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize clamps the page to >= 1 and the limit to [1, MaxPageLimit]
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset returns the number of items to skip
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}
