package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestCase_Validate(t *testing.T) {
	started := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		c       *model.Case
		wantErr bool
	}{
		{
			name: "unlocked case",
			c:    &model.Case{ID: "c1", Status: types.CaseStatusDisponivel},
		},
		{
			name: "locked case with matching assignee",
			c: &model.Case{
				ID: "c1", Status: types.CaseStatusAtribuido, AssigneeID: "U1",
				Lock: model.Lock{Active: true, OwnerID: "U1", StartedAt: &started},
			},
		},
		{
			name: "locked case with different assignee",
			c: &model.Case{
				ID: "c1", Status: types.CaseStatusAtribuido, AssigneeID: "U2",
				Lock: model.Lock{Active: true, OwnerID: "U1", StartedAt: &started},
			},
			wantErr: true,
		},
		{
			name: "locked case without start time",
			c: &model.Case{
				ID: "c1", Status: types.CaseStatusAtribuido, AssigneeID: "U1",
				Lock: model.Lock{Active: true, OwnerID: "U1"},
			},
			wantErr: true,
		},
		{
			name: "unlocked case keeping an owner",
			c: &model.Case{
				ID: "c1", Status: types.CaseStatusDisponivel,
				Lock: model.Lock{OwnerID: "U1"},
			},
			wantErr: true,
		},
		{
			name: "unlocked case keeping an assignee",
			c: &model.Case{
				ID: "c1", Status: types.CaseStatusDisponivel, AssigneeID: "U1",
			},
			wantErr: true,
		},
		{
			name:    "invalid status",
			c:       &model.Case{ID: "c1", Status: "OPEN"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				gt.Value(t, err).NotNil()
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestCase_Clone(t *testing.T) {
	started := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)
	c := &model.Case{
		ID:         "c1",
		Status:     types.CaseStatusAtribuido,
		AssigneeID: "U1",
		Lock:       model.Lock{Active: true, OwnerID: "U1", StartedAt: &started},
		CalcResult: json.RawMessage(`{"a":1}`),
	}

	cloned := c.Clone()
	gt.Value(t, cloned).Equal(c)

	*cloned.Lock.StartedAt = started.Add(time.Hour)
	cloned.CalcResult[0] = '['
	gt.B(t, c.Lock.StartedAt.Equal(started)).True()
	gt.Value(t, string(c.CalcResult)).Equal(`{"a":1}`)
}

func TestNewAuditLog(t *testing.T) {
	now := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)

	entry := model.NewAuditLog("c1", types.AuditEventSLAExpired, nil, map[string]string{"reason": "expired_no_interaction"}, now)
	gt.Value(t, entry.ActorID).Equal("")
	gt.Value(t, string(entry.Payload)).Equal(`{"reason":"expired_no_interaction"}`)
	gt.String(t, string(entry.ID)).NotEqual("")

	next := model.NewAuditLog("c1", types.AuditEventAssigned, &model.Actor{ID: "U1"}, nil, now)
	gt.Value(t, next.ActorID).Equal("U1")
	gt.B(t, string(next.ID) > string(entry.ID)).True()
}

func TestSLAExecutionFilter_Match(t *testing.T) {
	base := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)
	from := base.Add(-time.Hour)
	to := base.Add(time.Hour)
	e := &model.SLAExecution{ExecutedAt: base, ExecutionType: types.ExecutionTypeManual}

	gt.B(t, model.SLAExecutionFilter{}.Match(e)).True()
	gt.B(t, model.SLAExecutionFilter{From: &from, To: &to}.Match(e)).True()
	gt.B(t, model.SLAExecutionFilter{To: &base}.Match(e)).False()
	gt.B(t, model.SLAExecutionFilter{From: &base}.Match(e)).True()
	gt.B(t, model.SLAExecutionFilter{ExecutionType: types.ExecutionTypeScheduled}.Match(e)).False()
}

func TestPagination_Normalize(t *testing.T) {
	p := model.Pagination{}.Normalize()
	gt.Value(t, p.Page).Equal(1)
	gt.Value(t, p.Limit).Equal(model.DefaultPageLimit)
	gt.Value(t, p.Offset()).Equal(0)

	p = model.Pagination{Page: 3, Limit: 1000}.Normalize()
	gt.Value(t, p.Limit).Equal(model.MaxPageLimit)
	gt.Value(t, p.Offset()).Equal(200)
}
