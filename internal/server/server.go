// Package server wires the session store, views and JSON API into the HTTP
// application.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-attestform/internal/apispec"
	"github.com/goliatone/go-attestform/pkg/attest"
	"github.com/goliatone/go-attestform/pkg/session"
	"github.com/goliatone/go-attestform/pkg/views"
	"github.com/goliatone/go-attestform/pkg/wallet"
	"github.com/goliatone/go-attestform/pkg/workflow"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultShutdownGrace     = 10 * time.Second
	maxFormBytes             = 1 << 20
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request logs and handler failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithViews overrides the page renderer.
func WithViews(renderer *views.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.views = renderer
		}
	}
}

// WithValidator overrides the JSON API request validator.
func WithValidator(validator *apispec.Validator) Option {
	return func(s *Server) {
		if validator != nil {
			s.validator = validator
		}
	}
}

// WithShutdownGrace bounds how long Run waits for in-flight requests.
func WithShutdownGrace(grace time.Duration) Option {
	return func(s *Server) {
		if grace > 0 {
			s.grace = grace
		}
	}
}

// Server is the HTTP application.
type Server struct {
	sessions  *session.Store
	chains    wallet.Chains
	views     *views.Renderer
	validator *apispec.Validator
	logger    *zap.Logger
	grace     time.Duration
	handler   http.Handler
}

// New builds the application handler. Views and the API validator are
// created from their embedded defaults unless provided.
func New(sessions *session.Store, chains wallet.Chains, options ...Option) (*Server, error) {
	if sessions == nil {
		return nil, errors.New("server: session store is required")
	}
	if chains == nil {
		return nil, errors.New("server: chain registry is required")
	}
	s := &Server{
		sessions: sessions,
		chains:   chains,
		logger:   zap.NewNop(),
		grace:    defaultShutdownGrace,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if s.views == nil {
		renderer, err := views.New()
		if err != nil {
			return nil, fmt.Errorf("server: views: %w", err)
		}
		s.views = renderer
	}
	if s.validator == nil {
		doc, err := apispec.Load(context.Background())
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		validator, err := apispec.NewValidator(doc, apispec.WithErrorHandler(s.validationError))
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.validator = validator
	}

	s.handler = s.recoverer(s.logRequests(s.routes()))
	return s, nil
}

// SessionFactory returns a factory that gives every new session its own
// workflow and wallet connection. The double-submit guard is always on.
func SessionFactory(client attest.Client, chains wallet.Chains, options ...workflow.Option) session.Factory {
	return func() (*session.State, error) {
		conn, err := wallet.NewConnection(chains)
		if err != nil {
			return nil, err
		}
		opts := append([]workflow.Option{}, options...)
		opts = append(opts, workflow.WithDoubleSubmitGuard(true))
		return &session.State{
			Workflow: workflow.New(client, opts...),
			Wallet:   conn,
		}, nil
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	s.logger.Info("shutting down", zap.Duration("grace", s.grace))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return <-errCh
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.withOptionalSession(s.home))
	mux.HandleFunc("GET /a", s.withSession(s.attestPage))
	mux.HandleFunc("POST /a/fields", s.withSession(s.addField))
	mux.HandleFunc("POST /a/fields/{id}/delete", s.withSession(s.removeField))
	mux.HandleFunc("POST /a/schema", s.withSession(s.createSchema))
	mux.HandleFunc("POST /a/schema/fetch", s.withSession(s.fetchSchema))
	mux.HandleFunc("POST /a/attestations", s.withSession(s.createAttestation))

	mux.HandleFunc("POST /wallet/connect", s.withSession(s.connectWallet))
	mux.HandleFunc("POST /wallet/disconnect", s.withSession(s.disconnectWallet))
	mux.HandleFunc("POST /wallet/chain", s.withSession(s.switchChain))

	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(views.Assets())))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/api/", s.validator.Middleware(s.apiRoutes()))
	mux.HandleFunc("/", s.withOptionalSession(s.notFound))
	return mux
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, state *session.State)

func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := s.sessions.Load(w, r)
		if err != nil {
			s.logger.Error("load session", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next(w, r, state)
	}
}

// withOptionalSession serves read-only pages. Visitors without a session see
// a blank state, and no session or cookie is created for them.
func (s *Server) withOptionalSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := s.sessions.Find(r)
		if !ok {
			blank, err := s.sessions.Blank()
			if err != nil {
				s.logger.Error("build blank session", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			state = blank
		}
		next(w, r, state)
	}
}
