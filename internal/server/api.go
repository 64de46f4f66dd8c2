package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-attestform/internal/apispec"
	"github.com/goliatone/go-attestform/pkg/chain"
	"github.com/goliatone/go-attestform/pkg/schema"
	"github.com/goliatone/go-attestform/pkg/session"
	"github.com/goliatone/go-attestform/pkg/wallet"
	"github.com/goliatone/go-attestform/pkg/workflow"
)

type stateResponse struct {
	Workflow workflow.View      `json:"workflow"`
	Wallet   wallet.ControlView `json:"wallet"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type fieldRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type valuesRequest struct {
	Values map[string]string `json:"values"`
}

type schemaCreated struct {
	SchemaID string `json:"schemaId"`
}

type attestationCreated struct {
	AttestationID string `json:"attestationId"`
}

// apiRoutes is mounted behind the OpenAPI validator, so handlers only see
// requests whose shape already matches the document.
func (s *Server) apiRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.withSession(s.apiState))
	mux.HandleFunc("POST /api/fields", s.withSession(s.apiAddField))
	mux.HandleFunc("DELETE /api/fields/{id}", s.withSession(s.apiRemoveField))
	mux.HandleFunc("POST /api/schemas", s.withSession(s.apiCreateSchema))
	mux.HandleFunc("GET /api/schemas/{id}", s.withSession(s.apiFetchSchema))
	mux.HandleFunc("PUT /api/values", s.withSession(s.apiSetValues))
	mux.HandleFunc("POST /api/attestations", s.withSession(s.apiCreateAttestation))
	mux.HandleFunc("GET /api/chains", s.apiChains)
	mux.HandleFunc("GET /api/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(apispec.Document())
	})
	return mux
}

func (s *Server) apiState(w http.ResponseWriter, _ *http.Request, state *session.State) {
	s.writeJSON(w, http.StatusOK, snapshot(state))
}

func (s *Server) apiAddField(w http.ResponseWriter, r *http.Request, state *session.State) {
	var req fieldRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if raw := strings.TrimSpace(req.Type); raw != "" {
		t, err := schema.ParseType(raw)
		if err == nil {
			err = state.Workflow.SelectType(t)
		}
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	state.Workflow.StageField(req.Name)
	state.Workflow.AddField()
	s.writeJSON(w, http.StatusOK, snapshot(state))
}

func (s *Server) apiRemoveField(w http.ResponseWriter, r *http.Request, state *session.State) {
	if !state.Workflow.RemoveField(r.PathValue("id")) {
		s.writeError(w, http.StatusNotFound, "field not found")
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot(state))
}

func (s *Server) apiCreateSchema(w http.ResponseWriter, r *http.Request, state *session.State) {
	id, err := state.Workflow.CreateSchema(r.Context())
	if err != nil {
		s.actionError(w, workflow.ActionCreateSchema, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, schemaCreated{SchemaID: id})
}

func (s *Server) apiFetchSchema(w http.ResponseWriter, r *http.Request, state *session.State) {
	if _, err := state.Workflow.FetchSchema(r.Context(), r.PathValue("id")); err != nil {
		s.actionError(w, workflow.ActionFetchSchema, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot(state))
}

func (s *Server) apiSetValues(w http.ResponseWriter, r *http.Request, state *session.State) {
	var req valuesRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	for name, value := range req.Values {
		state.Workflow.SetValue(name, value)
	}
	s.writeJSON(w, http.StatusOK, snapshot(state))
}

func (s *Server) apiCreateAttestation(w http.ResponseWriter, r *http.Request, state *session.State) {
	id, err := state.Workflow.CreateAttestation(r.Context())
	if err != nil {
		s.actionError(w, workflow.ActionCreateAttestation, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, attestationCreated{AttestationID: id})
}

func (s *Server) apiChains(w http.ResponseWriter, _ *http.Request) {
	chains := s.chains.List()
	if chains == nil {
		chains = []chain.Chain{}
	}
	s.writeJSON(w, http.StatusOK, chains)
}

// actionError maps workflow outcomes to API statuses: 409 while busy or
// superseded, 502 with the static failure message otherwise.
func (s *Server) actionError(w http.ResponseWriter, action workflow.Action, err error) {
	switch {
	case errors.Is(err, workflow.ErrBusy), errors.Is(err, workflow.ErrSuperseded):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.writeError(w, http.StatusBadGateway, workflow.FailureMessage(action))
	}
}

func (s *Server) validationError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Debug("api request rejected",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	s.writeError(w, status, err.Error())
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err := dec.Decode(dest); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json payload")
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Debug("write json response", zap.Error(err))
	}
}

func snapshot(state *session.State) stateResponse {
	return stateResponse{
		Workflow: state.Workflow.Snapshot(),
		Wallet:   state.Wallet.View(),
	}
}
