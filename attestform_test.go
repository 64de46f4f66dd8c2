package attestform

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/goliatone/go-attestform/pkg/attest"
)

func TestAssetsFSContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), "app.css")
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), "var(--accent)") {
		t.Fatalf("expected stylesheet to use theme variables")
	}
}

func TestEmbeddedTemplatesIncludePages(t *testing.T) {
	for _, name := range []string{"layout.tmpl", "navbar.tmpl", "home.tmpl", "attest.tmpl", "notfound.tmpl"} {
		if _, err := fs.Stat(EmbeddedTemplates(), name); err != nil {
			t.Fatalf("expected template %s: %v", name, err)
		}
	}
}

func TestLoadAPISpec(t *testing.T) {
	doc, err := LoadAPISpec(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Paths.Find("/api/state") == nil {
		t.Fatalf("expected /api/state in document")
	}
	if len(APIDocument()) == 0 {
		t.Fatalf("expected raw document")
	}
}

func TestNewHandler(t *testing.T) {
	client := NewMemoryClient(ServiceConfig{Mode: attest.ModeOnChain, ChainID: 11155420})
	handler, janitor, err := NewHandler(client, nil, WithSchemaCacheSize(8), WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Schema Management") {
		t.Fatalf("expected workflow page")
	}
	if janitor.Sessions() != 1 {
		t.Fatalf("expected one session, got %d", janitor.Sessions())
	}
}
