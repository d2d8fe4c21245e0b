package http

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
)

// runSLA is the manual "run SLA sweep now" trigger
func (s *Server) runSLA(w http.ResponseWriter, r *http.Request) {
	execution, err := s.uc.SLA.RunMaintenance(r.Context(), types.ExecutionTypeManual, model.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, execution)
}

func (s *Server) listExecutions(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseExecutionQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	executions, total, err := s.uc.SLA.ListExecutions(r.Context(), filter, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page = page.Normalize()
	writeJSON(w, r, http.StatusOK, executionListResponse{
		Executions: executions,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
	})
}

func (s *Server) getExecution(w http.ResponseWriter, r *http.Request) {
	id := model.SLAExecutionID(chi.URLParam(r, "executionID"))
	execution, err := s.uc.SLA.GetExecution(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, execution)
}

// parseExecutionQuery reads from/to (RFC 3339), type, page and limit
func parseExecutionQuery(q url.Values) (model.SLAExecutionFilter, model.Pagination, error) {
	var (
		filter model.SLAExecutionFilter
		page   model.Pagination
	)

	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, page, goerr.Wrap(model.ErrInvalidInput, "invalid time parameter", goerr.V(key, v))
		}
		*dst = &t
	}

	filter.ExecutionType = types.ExecutionType(q.Get("type"))

	for key, dst := range map[string]*int{"page": &page.Page, "limit": &page.Limit} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, page, goerr.Wrap(model.ErrInvalidInput, "invalid paging parameter", goerr.V(key, v))
		}
		*dst = n
	}

	return filter, page, nil
}
