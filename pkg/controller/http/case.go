package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
)

type createCaseRequest struct {
	ClientID   string          `json:"client_id"`
	CalcResult json.RawMessage `json:"calc_result"`
}

type transitionRequest struct {
	Target  string          `json:"target"`
	Payload json.RawMessage `json:"payload"`
}

type interactionRequest struct {
	Kind string `json:"kind"`
	Note string `json:"note"`
}

func caseIDParam(r *http.Request) model.CaseID {
	return model.CaseID(chi.URLParam(r, "caseID"))
}

func (s *Server) createCase(w http.ResponseWriter, r *http.Request) {
	var req createCaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.uc.Case.CreateCase(r.Context(), model.ActorFromContext(r.Context()), req.ClientID, req.CalcResult)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toCaseResponse(c))
}

func (s *Server) listAvailable(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, goerr.Wrap(model.ErrInvalidInput, "invalid limit", goerr.V("limit", v)))
			return
		}
		limit = n
	}

	cases, err := s.uc.Case.ListAvailable(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"cases": toCaseResponses(cases)})
}

func (s *Server) listLocked(w http.ResponseWriter, r *http.Request) {
	cases, err := s.uc.Case.ListLocked(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"cases": toCaseResponses(cases)})
}

func (s *Server) getCase(w http.ResponseWriter, r *http.Request) {
	c, err := s.uc.Case.GetCase(r.Context(), caseIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCaseResponse(c))
}

func (s *Server) assignCase(w http.ResponseWriter, r *http.Request) {
	c, err := s.uc.Lock.Assign(r.Context(), caseIDParam(r), model.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCaseResponse(c))
}

func (s *Server) releaseCase(w http.ResponseWriter, r *http.Request) {
	c, err := s.uc.Lock.Release(r.Context(), caseIDParam(r), model.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCaseResponse(c))
}

func (s *Server) transitionCase(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.uc.Transition.Transition(r.Context(), caseIDParam(r),
		types.CaseStatus(req.Target), model.ActorFromContext(r.Context()), req.Payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCaseResponse(c))
}

func (s *Server) caseAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := s.uc.Audit.Query(r.Context(), caseIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"entries": toAuditLogResponses(entries)})
}

func (s *Server) recordInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	interaction, err := s.uc.Interaction.Record(r.Context(), caseIDParam(r),
		types.InteractionKind(req.Kind), model.ActorFromContext(r.Context()), req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toInteractionResponse(interaction))
}

func (s *Server) listInteractions(w http.ResponseWriter, r *http.Request) {
	interactions, err := s.uc.Interaction.List(r.Context(), caseIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]interactionResponse, len(interactions))
	for i, interaction := range interactions {
		resp[i] = toInteractionResponse(interaction)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"interactions": resp})
}
