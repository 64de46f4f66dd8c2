package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/goliatone/go-attestform/pkg/attest"
	"github.com/goliatone/go-attestform/pkg/attest/memory"
	"github.com/goliatone/go-attestform/pkg/chain"
	"github.com/goliatone/go-attestform/pkg/session"
	"github.com/goliatone/go-attestform/pkg/wallet"
	"github.com/goliatone/go-attestform/pkg/workflow"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newFactory(t *testing.T) session.Factory {
	t.Helper()
	service := memory.New(attest.Config{Mode: attest.ModeOffChain, ChainID: chain.OptimismSepoliaID})
	chains := chain.NewDefaultRegistry()
	return func() (*session.State, error) {
		conn, err := wallet.NewConnection(chains)
		if err != nil {
			return nil, err
		}
		return &session.State{Workflow: workflow.New(service), Wallet: conn}, nil
	}
}

func newStore(t *testing.T, options ...session.Option) *session.Store {
	t.Helper()
	store, err := session.New(newFactory(t), options...)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestLoad_CreatesSessionAndCookie(t *testing.T) {
	store := newStore(t, session.WithIDGenerator(func() string { return "sid-1" }))

	rec := httptest.NewRecorder()
	state, err := store.Load(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.ID != "sid-1" || state.Workflow == nil || state.Wallet == nil {
		t.Fatalf("unexpected state %+v", state)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != session.DefaultCookieName || cookie.Value != "sid-1" {
		t.Fatalf("unexpected cookie %+v", cookie)
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode || cookie.Path != "/" {
		t.Fatalf("unexpected cookie attributes %+v", cookie)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one session, got %d", store.Len())
	}
}

func TestLoad_ReusesSessionFromCookie(t *testing.T) {
	store := newStore(t, session.WithCookieName("sid"))

	first := httptest.NewRecorder()
	state, err := store.Load(first, httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/a", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: state.ID})
	second := httptest.NewRecorder()
	again, err := store.Load(second, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if again != state {
		t.Fatalf("expected the same session state")
	}
	if len(second.Result().Cookies()) != 0 {
		t.Fatalf("expected no new cookie for an existing session")
	}
}

func TestFindAndBlank_DoNotCreateSessions(t *testing.T) {
	store := newStore(t, session.WithIDGenerator(func() string { return "sid-1" }))

	if _, ok := store.Find(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Fatalf("expected no session without a cookie")
	}
	blank, err := store.Blank()
	if err != nil {
		t.Fatalf("blank: %v", err)
	}
	if blank.ID != "" || blank.Workflow == nil || blank.Wallet == nil {
		t.Fatalf("unexpected blank state %+v", blank)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}

	state, err := store.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "sid-1"})
	found, ok := store.Find(req)
	if !ok || found != state {
		t.Fatalf("expected Find to return the stored session")
	}
}

func TestLoad_UnknownCookieStartsNewSession(t *testing.T) {
	store := newStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	state, err := store.Load(rec, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.ID == "forged" {
		t.Fatalf("client supplied ids must not be adopted")
	}
	if _, ok := store.Get("forged"); ok {
		t.Fatalf("forged id stored")
	}
}

func TestLoad_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	store, err := session.New(func() (*session.State, error) { return nil, boom })
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)); !errors.Is(err, boom) {
		t.Fatalf("expected factory error, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("failed session stored")
	}
}

func TestNew_RequiresFactory(t *testing.T) {
	if _, err := session.New(nil); err == nil {
		t.Fatalf("expected error without factory")
	}
}

func TestSweepAndExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	ids := []string{"a", "b"}
	store := newStore(t,
		session.WithTTL(time.Minute),
		session.WithClock(clock.Now),
		session.WithIDGenerator(func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}),
	)

	for range 2 {
		if _, err := store.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)); err != nil {
			t.Fatalf("load: %v", err)
		}
	}

	clock.Advance(45 * time.Second)
	if _, ok := store.Get("b"); !ok {
		t.Fatalf("expected b alive")
	}
	clock.Advance(30 * time.Second)

	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("expected one eviction, got %d", removed)
	}
	if _, ok := store.Get("a"); ok {
		t.Fatalf("expected a evicted")
	}
	if _, ok := store.Get("b"); !ok {
		t.Fatalf("expected b kept after touch")
	}

	clock.Advance(2 * time.Minute)
	if _, ok := store.Get("b"); ok {
		t.Fatalf("expected expired session to be dropped on access")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestDelete(t *testing.T) {
	store := newStore(t, session.WithIDGenerator(func() string { return "x" }))
	if _, err := store.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !store.Delete("x") {
		t.Fatalf("expected delete")
	}
	if store.Delete("x") {
		t.Fatalf("expected second delete to report false")
	}
}

func TestRun_StopsWithContext(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newStore(t,
		session.WithTTL(time.Minute),
		session.WithSweepInterval(time.Millisecond),
		session.WithClock(clock.Now),
	)
	if _, err := store.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)); err != nil {
		t.Fatalf("load: %v", err)
	}
	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for store.Len() != 0 {
		select {
		case <-deadline:
			cancel()
			<-done
			t.Fatalf("janitor did not evict the idle session")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}
