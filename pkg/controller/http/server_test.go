package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	server "github.com/esteira-credito/esteira/pkg/controller/http"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/esteira-credito/esteira/pkg/repository/memory"
	"github.com/esteira-credito/esteira/pkg/usecase"
	"github.com/m-mizutani/gt"
)

type actorHeader struct {
	id   string
	role types.Role
}

var (
	atendente  = actorHeader{id: "atendente-1", role: types.RoleAtendente}
	atendente2 = actorHeader{id: "atendente-2", role: types.RoleAtendente}
	gerente    = actorHeader{id: "gerente-1", role: types.RoleGerenteFechamento}
)

type caseBody struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Version int64  `json:"version"`
	Lock    struct {
		Active  bool   `json:"active"`
		OwnerID string `json:"owner_id"`
	} `json:"lock"`
}

type testServer struct {
	t   *testing.T
	srv *server.Server
	now time.Time
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{t: t, now: time.Date(2026, time.October, 12, 10, 0, 0, 0, time.UTC)}
	uc := usecase.New(memory.New(), usecase.WithClock(func() time.Time { return ts.now }))
	ts.srv = server.New(uc)
	return ts
}

func (ts *testServer) do(method, path string, actor *actorHeader, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		gt.NoError(ts.t, json.NewEncoder(&buf).Encode(body)).Required()
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set(server.HeaderActorID, actor.id)
		req.Header.Set(server.HeaderActorRole, string(actor.role))
	}

	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) createCase(clientID string) caseBody {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/api/v1/cases", &atendente, map[string]any{"client_id": clientID})
	gt.Value(ts.t, rec.Code).Equal(http.StatusCreated)

	var c caseBody
	gt.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &c)).Required()
	return c
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/health", nil, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodGet, "/health", nil, nil)

	rec := ts.do(http.MethodGet, "/metrics", nil, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains("esteira_http_requests_total")
}

func TestServer_ActorHeaders(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/cases/available", nil, nil)
	gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)

	rec = ts.do(http.MethodGet, "/api/v1/cases/available", &actorHeader{id: "x", role: "intern"}, nil)
	gt.Value(t, rec.Code).Equal(http.StatusForbidden)
}

func TestServer_CaseLifecycle(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createCase("client-1")
	gt.Value(t, c.Status).Equal("DISPONIVEL")
	gt.Number(t, c.Version).Equal(1)

	rec := ts.do(http.MethodGet, "/api/v1/cases/available", &atendente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains(c.ID)

	rec = ts.do(http.MethodPost, "/api/v1/cases/"+c.ID+"/assign", &atendente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var assigned caseBody
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assigned)).Required()
	gt.Value(t, assigned.Status).Equal("ATRIBUIDO")
	gt.Bool(t, assigned.Lock.Active).True()
	gt.Value(t, assigned.Lock.OwnerID).Equal(atendente.id)

	t.Run("second claim gets the refresh message", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/cases/"+c.ID+"/assign", &atendente2, nil)
		gt.Value(t, rec.Code).Equal(http.StatusConflict)
		gt.String(t, rec.Body.String()).Contains("case already taken, refresh the queue")
	})

	t.Run("non-owner transition is forbidden", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/cases/"+c.ID+"/transition", &atendente2,
			map[string]any{"target": "PENDENTE_CALCULO"})
		gt.Value(t, rec.Code).Equal(http.StatusForbidden)
	})

	t.Run("undeclared edge is unprocessable", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/cases/"+c.ID+"/transition", &atendente,
			map[string]any{"target": "ENCERRADO_ATIVADO"})
		gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	})

	rec = ts.do(http.MethodPost, "/api/v1/cases/"+c.ID+"/interactions", &atendente,
		map[string]any{"kind": "phone", "note": "called client"})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	rec = ts.do(http.MethodPost, "/api/v1/cases/"+c.ID+"/transition", &atendente,
		map[string]any{"target": "PENDENTE_CALCULO", "payload": map[string]any{"note": "docs complete"}})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var moved caseBody
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &moved)).Required()
	gt.Value(t, moved.Status).Equal("PENDENTE_CALCULO")
	gt.Bool(t, moved.Lock.Active).False()

	rec = ts.do(http.MethodGet, "/api/v1/cases/"+c.ID+"/audit", &gerente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var audit struct {
		Entries []struct {
			Event string `json:"event"`
		} `json:"entries"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &audit)).Required()
	gt.Array(t, audit.Entries).Length(3).Required()
	gt.Value(t, audit.Entries[2].Event).Equal("STATUS_CHANGED")

	rec = ts.do(http.MethodGet, "/api/v1/cases/"+c.ID+"/interactions", &atendente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains("called client")
}

func TestServer_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/cases/unknown", &atendente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)

	rec = ts.do(http.MethodGet, "/api/v1/cases/available?limit=abc", &atendente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", strings.NewReader("{not json"))
	req.Header.Set(server.HeaderActorID, atendente.id)
	req.Header.Set(server.HeaderActorRole, string(atendente.role))
	w := httptest.NewRecorder()
	ts.srv.ServeHTTP(w, req)
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)
}

func TestServer_SLA(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createCase("client-1")
	rec := ts.do(http.MethodPost, "/api/v1/cases/"+c.ID+"/assign", &atendente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = ts.do(http.MethodPost, "/api/v1/sla/run", &atendente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusForbidden)

	ts.now = ts.now.Add(14 * 24 * time.Hour)
	rec = ts.do(http.MethodPost, "/api/v1/sla/run", &gerente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var exec struct {
		ID                string `json:"id"`
		ExecutionType     string `json:"execution_type"`
		ExecutedByUserID  string `json:"executed_by_user_id"`
		CasesExpiredCount int    `json:"cases_expired_count"`
		CasesReleased     []struct {
			CaseID string `json:"case_id"`
			Reason string `json:"reason"`
		} `json:"cases_released"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exec)).Required()
	gt.Value(t, exec.ExecutionType).Equal("manual")
	gt.Value(t, exec.ExecutedByUserID).Equal(gerente.id)
	gt.Number(t, exec.CasesExpiredCount).Equal(1)
	gt.Array(t, exec.CasesReleased).Length(1).Required()
	gt.Value(t, exec.CasesReleased[0].CaseID).Equal(c.ID)
	gt.Value(t, exec.CasesReleased[0].Reason).Equal("expired_no_interaction")

	rec = ts.do(http.MethodGet, "/api/v1/sla/executions?type=manual", &gerente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var list struct {
		Total int `json:"total"`
		Page  int `json:"page"`
		Limit int `json:"limit"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list)).Required()
	gt.Number(t, list.Total).Equal(1)
	gt.Number(t, list.Page).Equal(1)

	rec = ts.do(http.MethodGet, "/api/v1/sla/executions/"+exec.ID, &gerente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = ts.do(http.MethodGet, "/api/v1/sla/executions/missing", &gerente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)

	rec = ts.do(http.MethodGet, "/api/v1/sla/executions?from=yesterday", &gerente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	rec = ts.do(http.MethodGet, "/api/v1/sla/executions?type=hourly", &gerente, nil)
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}
