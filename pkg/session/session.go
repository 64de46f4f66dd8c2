// Package session keeps per-browser application state in memory, keyed by a
// random cookie. Each session owns its own workflow and wallet connection.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-attestform/pkg/wallet"
	"github.com/goliatone/go-attestform/pkg/workflow"
)

const (
	DefaultCookieName = "attestform_session"
	DefaultTTL        = 30 * time.Minute
)

// State is the application state of one browser session.
type State struct {
	ID       string
	Workflow *workflow.Workflow
	Wallet   *wallet.Connection
}

// Factory builds the state for a new session.
type Factory func() (*State, error)

// Option configures a Store.
type Option func(*Store)

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(s *Store) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.cookieName = trimmed
		}
	}
}

// WithTTL sets how long an idle session survives.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSweepInterval sets how often Run evicts idle sessions. Defaults to half
// the TTL.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Store) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(s *Store) {
		s.secure = secure
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the uuid session id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type entry struct {
	state    *State
	lastSeen time.Time
}

// Store is an in-memory session store safe for concurrent use.
type Store struct {
	factory    Factory
	cookieName string
	ttl        time.Duration
	interval   time.Duration
	secure     bool
	now        func() time.Time
	newID      func() string
	logger     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

// New creates a store that builds new sessions with factory.
func New(factory Factory, options ...Option) (*Store, error) {
	if factory == nil {
		return nil, errors.New("session: factory is required")
	}
	s := &Store{
		factory:    factory,
		cookieName: DefaultCookieName,
		ttl:        DefaultTTL,
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     zap.NewNop(),
		sessions:   make(map[string]*entry),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.interval == 0 {
		s.interval = s.ttl / 2
	}
	return s, nil
}

// CookieName returns the name of the session cookie.
func (s *Store) CookieName() string {
	return s.cookieName
}

// Load returns the session named by the request cookie, creating one (and
// setting the cookie on w) when the cookie is missing, unknown or expired.
func (s *Store) Load(w http.ResponseWriter, r *http.Request) (*State, error) {
	if state, ok := s.Find(r); ok {
		return state, nil
	}

	state, err := s.build()
	if err != nil {
		return nil, err
	}
	state.ID = s.newID()

	s.mu.Lock()
	s.sessions[state.ID] = &entry{state: state, lastSeen: s.now()}
	total := len(s.sessions)
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    state.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Debug("session created", zap.String("session_id", state.ID), zap.Int("sessions", total))
	return state, nil
}

// Find returns the live session named by the request cookie, if any. It
// never creates a session or sets a cookie.
func (s *Store) Find(r *http.Request) (*State, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	return s.touch(cookie.Value)
}

// Blank builds a fresh state that is not stored, for rendering read-only
// pages to visitors without a session.
func (s *Store) Blank() (*State, error) {
	return s.build()
}

// Get returns a live session without creating one.
func (s *Store) Get(id string) (*State, bool) {
	return s.touch(id)
}

// Delete removes a session.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on a ticker until ctx is done.
func (s *Store) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Info("expired sessions evicted", zap.Int("removed", removed), zap.Int("remaining", s.Len()))
			}
		}
	}
}

func (s *Store) build() (*State, error) {
	state, err := s.factory()
	if err != nil {
		return nil, fmt.Errorf("session: create state: %w", err)
	}
	if state == nil {
		return nil, errors.New("session: factory returned nil state")
	}
	return state, nil
}

func (s *Store) touch(id string) (*State, bool) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if now.Sub(e.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	e.lastSeen = now
	return e.state, true
}
