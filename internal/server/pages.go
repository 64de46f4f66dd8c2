package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-attestform/pkg/schema"
	"github.com/goliatone/go-attestform/pkg/session"
	"github.com/goliatone/go-attestform/pkg/views"
	"github.com/goliatone/go-attestform/pkg/workflow"
)

const (
	attestPath  = "/a"
	valuePrefix = "value."
)

type pageFunc func(r *views.Renderer, buf *bytes.Buffer, page views.Page) error

func (s *Server) home(w http.ResponseWriter, r *http.Request, state *session.State) {
	s.render(w, r, state, http.StatusOK, func(v *views.Renderer, buf *bytes.Buffer, page views.Page) error {
		return v.Home(buf, page)
	})
}

func (s *Server) attestPage(w http.ResponseWriter, r *http.Request, state *session.State) {
	s.render(w, r, state, http.StatusOK, func(v *views.Renderer, buf *bytes.Buffer, page views.Page) error {
		return v.Attest(buf, page)
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, state *session.State) {
	s.render(w, r, state, http.StatusNotFound, func(v *views.Renderer, buf *bytes.Buffer, page views.Page) error {
		return v.NotFound(buf, page)
	})
}

// render buffers the page so a template failure can still produce a 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, state *session.State, status int, fn pageFunc) {
	page := views.Page{
		Path:     r.URL.Path,
		Wallet:   state.Wallet.View(),
		Workflow: state.Workflow.Snapshot(),
	}
	var buf bytes.Buffer
	if err := fn(s.views, &buf, page); err != nil {
		s.logger.Error("render page", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("write page", zap.Error(err))
	}
}

func (s *Server) addField(w http.ResponseWriter, r *http.Request, state *session.State) {
	if !s.parseForm(w, r) {
		return
	}
	if raw := strings.TrimSpace(r.PostFormValue("type")); raw != "" {
		t, err := schema.ParseType(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := state.Workflow.SelectType(t); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	state.Workflow.StageField(r.PostFormValue("name"))
	state.Workflow.AddField()
	redirect(w, r, attestPath)
}

func (s *Server) removeField(w http.ResponseWriter, r *http.Request, state *session.State) {
	state.Workflow.RemoveField(r.PathValue("id"))
	redirect(w, r, attestPath)
}

func (s *Server) createSchema(w http.ResponseWriter, r *http.Request, state *session.State) {
	_, err := state.Workflow.CreateSchema(r.Context())
	s.settled(r, workflow.ActionCreateSchema, err)
	redirect(w, r, attestPath)
}

func (s *Server) fetchSchema(w http.ResponseWriter, r *http.Request, state *session.State) {
	if !s.parseForm(w, r) {
		return
	}
	id := strings.TrimSpace(r.PostFormValue("schema_id"))
	if id != "" {
		_, err := state.Workflow.FetchSchema(r.Context(), id)
		s.settled(r, workflow.ActionFetchSchema, err)
	}
	redirect(w, r, attestPath)
}

func (s *Server) createAttestation(w http.ResponseWriter, r *http.Request, state *session.State) {
	if !s.parseForm(w, r) {
		return
	}
	for key, values := range r.PostForm {
		name, ok := strings.CutPrefix(key, valuePrefix)
		if !ok || len(values) == 0 {
			continue
		}
		state.Workflow.SetValue(name, values[0])
	}
	_, err := state.Workflow.CreateAttestation(r.Context())
	s.settled(r, workflow.ActionCreateAttestation, err)
	redirect(w, r, attestPath)
}

func (s *Server) connectWallet(w http.ResponseWriter, r *http.Request, state *session.State) {
	if !s.parseForm(w, r) {
		return
	}
	if addr := strings.TrimSpace(r.PostFormValue("address")); addr != "" {
		if err := state.Wallet.Connect(addr); err != nil {
			s.logger.Debug("wallet connect rejected", zap.Error(err))
		}
	}
	redirect(w, r, returnPath(r))
}

func (s *Server) disconnectWallet(w http.ResponseWriter, r *http.Request, state *session.State) {
	if !s.parseForm(w, r) {
		return
	}
	state.Wallet.Disconnect()
	redirect(w, r, returnPath(r))
}

func (s *Server) switchChain(w http.ResponseWriter, r *http.Request, state *session.State) {
	if !s.parseForm(w, r) {
		return
	}
	id, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("chain_id")), 10, 64)
	if err == nil {
		err = state.Wallet.SwitchChain(id)
	}
	if err != nil {
		s.logger.Debug("chain switch rejected", zap.Error(err))
	}
	redirect(w, r, returnPath(r))
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return false
	}
	return true
}

// settled logs outcomes the workflow does not surface as a page message.
func (s *Server) settled(r *http.Request, action workflow.Action, err error) {
	switch {
	case err == nil:
	case errors.Is(err, workflow.ErrBusy):
		s.logger.Debug("duplicate submit ignored", zap.String("action", string(action)))
	case errors.Is(err, workflow.ErrSuperseded), errors.Is(err, context.Canceled):
		s.logger.Debug("action result dropped", zap.String("action", string(action)), zap.Error(err))
	default:
		s.logger.Debug("action failed", zap.String("action", string(action)), zap.String("path", r.URL.Path))
	}
}

// returnPath reads the local path a navbar form asks to return to.
func returnPath(r *http.Request) string {
	next := strings.TrimSpace(r.PostFormValue("next"))
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
