package http

import (
	"encoding/json"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
)

type lockResponse struct {
	Active    bool       `json:"active"`
	OwnerID   string     `json:"owner_id,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

type caseResponse struct {
	ID                  string          `json:"id"`
	Status              string          `json:"status"`
	ClientID            string          `json:"client_id"`
	AssigneeID          string          `json:"assignee_id,omitempty"`
	Lock                lockResponse    `json:"lock"`
	Version             int64           `json:"version"`
	CalcResult          json.RawMessage `json:"calc_result,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	ClosingApprovedAt   *time.Time      `json:"closing_approved_at,omitempty"`
	FinanceActivationAt *time.Time      `json:"finance_activation_at,omitempty"`
}

type auditLogResponse struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	ActorID   string          `json:"actor_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type interactionResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	UserID    string    `json:"user_id"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type executionListResponse struct {
	Executions []*model.SLAExecution `json:"executions"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
}

func toCaseResponse(c *model.Case) caseResponse {
	return caseResponse{
		ID:         string(c.ID),
		Status:     c.Status.String(),
		ClientID:   c.ClientID,
		AssigneeID: c.AssigneeID,
		Lock: lockResponse{
			Active:    c.Lock.Active,
			OwnerID:   c.Lock.OwnerID,
			StartedAt: c.Lock.StartedAt,
		},
		Version:             c.Version,
		CalcResult:          c.CalcResult,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
		ClosingApprovedAt:   c.ClosingApprovedAt,
		FinanceActivationAt: c.FinanceActivationAt,
	}
}

func toCaseResponses(cases []*model.Case) []caseResponse {
	resp := make([]caseResponse, len(cases))
	for i, c := range cases {
		resp[i] = toCaseResponse(c)
	}
	return resp
}

func toAuditLogResponses(entries []*model.AuditLog) []auditLogResponse {
	resp := make([]auditLogResponse, len(entries))
	for i, e := range entries {
		resp[i] = auditLogResponse{
			ID:        string(e.ID),
			Event:     e.Event.String(),
			ActorID:   e.ActorID,
			Payload:   e.Payload,
			CreatedAt: e.CreatedAt,
		}
	}
	return resp
}

func toInteractionResponse(i *model.Interaction) interactionResponse {
	return interactionResponse{
		ID:        string(i.ID),
		Kind:      string(i.Kind),
		UserID:    i.UserID,
		Note:      i.Note,
		CreatedAt: i.CreatedAt,
	}
}
