package model

import (
	"encoding/json"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// CaseID identifies a case (atendimento)
type CaseID string

// NewCaseID generates a new UUID v4 CaseID
func NewCaseID() CaseID {
	return CaseID(uuid.New().String())
}

func (id CaseID) String() string {
	return string(id)
}

// Lock is the exclusive work-lock on a case. OwnerID and StartedAt are only
// set while Active is true.
type Lock struct {
	Active    bool
	OwnerID   string
	StartedAt *time.Time
}

// Case is a single loan-origination workflow instance tied to one client
type Case struct {
	ID         CaseID
	Status     types.CaseStatus
	ClientID   string
	AssigneeID string // empty while unassigned
	Lock       Lock
	Version    int64

	// CalcResult is owned by the calculation stage and never interpreted here
	CalcResult json.RawMessage

	CreatedAt           time.Time
	UpdatedAt           time.Time
	ClosingApprovedAt   *time.Time
	FinanceActivationAt *time.Time
}

// Clone returns a deep copy of the case
func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}
	copied := *c
	copied.Lock.StartedAt = copyTime(c.Lock.StartedAt)
	copied.ClosingApprovedAt = copyTime(c.ClosingApprovedAt)
	copied.FinanceActivationAt = copyTime(c.FinanceActivationAt)
	if c.CalcResult != nil {
		copied.CalcResult = make(json.RawMessage, len(c.CalcResult))
		copy(copied.CalcResult, c.CalcResult)
	}
	return &copied
}

// IsLockedBy reports whether userID currently owns the lock
func (c *Case) IsLockedBy(userID string) bool {
	return c.Lock.Active && userID != "" && c.Lock.OwnerID == userID
}

// Validate checks the lock invariant: an active lock always has an owner that
// is also the assignee and a start time; an inactive lock carries neither.
func (c *Case) Validate() error {
	if c.ID == "" {
		return goerr.New("case ID is required")
	}
	if !c.Status.IsValid() {
		return goerr.New("invalid case status", goerr.V(CaseIDKey, c.ID), goerr.V("status", c.Status))
	}

	if c.Lock.Active {
		if c.Lock.OwnerID == "" || c.Lock.StartedAt == nil {
			return goerr.New("active lock requires owner and start time", goerr.V(CaseIDKey, c.ID))
		}
		if c.AssigneeID != c.Lock.OwnerID {
			return goerr.New("assignee must match lock owner",
				goerr.V(CaseIDKey, c.ID),
				goerr.V("assignee_id", c.AssigneeID),
				goerr.V("owner_id", c.Lock.OwnerID))
		}
		return nil
	}

	if c.Lock.OwnerID != "" || c.Lock.StartedAt != nil || c.AssigneeID != "" {
		return goerr.New("inactive lock must not carry owner, start time or assignee", goerr.V(CaseIDKey, c.ID))
	}
	return nil
}

func (c *Case) takeLock(userID string, now time.Time) {
	started := now
	c.Lock = Lock{Active: true, OwnerID: userID, StartedAt: &started}
	c.AssigneeID = userID
}

func (c *Case) clearLock() {
	c.Lock = Lock{}
	c.AssigneeID = ""
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
