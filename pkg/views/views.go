// Package views renders the application's HTML pages. Every page shares a
// layout with the navbar; page bodies come from embedded pongo2 templates.
package views

import (
	"fmt"
	"io"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-attestform/pkg/render/template"
	"github.com/goliatone/go-attestform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-attestform/pkg/wallet"
	"github.com/goliatone/go-attestform/pkg/workflow"
)

// DefaultAppName is shown in the navbar brand link.
const DefaultAppName = "DeciReport"

// Page template names.
const (
	PageHome     = "home"
	PageAttest   = "attest"
	PageNotFound = "notfound"
)

// Page is the per-request data shared by all pages.
type Page struct {
	Path     string
	Wallet   wallet.ControlView
	Workflow workflow.View
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTemplateRenderer replaces the embedded pongo2 engine.
func WithTemplateRenderer(engine template.TemplateRenderer) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithThemeSelector resolves the theme through selector instead of the
// built-in manifest.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(r *Renderer) {
		if selector != nil {
			r.selector = selector
		}
	}
}

// WithTheme picks the theme and variant passed to the selector.
func WithTheme(name, variant string) Option {
	return func(r *Renderer) {
		r.themeName = strings.TrimSpace(name)
		if v := strings.TrimSpace(variant); v != "" {
			r.variant = v
		}
	}
}

// WithAppName overrides the navbar brand.
func WithAppName(name string) Option {
	return func(r *Renderer) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			r.appName = trimmed
		}
	}
}

// Renderer renders full HTML pages. It is safe for concurrent use once built.
type Renderer struct {
	engine    template.TemplateRenderer
	selector  theme.ThemeSelector
	themeName string
	variant   string
	appName   string

	theme themeData
}

type appData struct {
	Name string `json:"name"`
}

type themeData struct {
	Name         string `json:"name"`
	Variant      string `json:"variant"`
	Stylesheet   string `json:"stylesheet"`
	CSSVarsStyle string `json:"cssVarsStyle"`
}

type pageData struct {
	Page       string             `json:"page"`
	Path       string             `json:"path"`
	Wallet     wallet.ControlView `json:"wallet"`
	WalletLink string             `json:"walletLink"`
	Workflow   workflow.View      `json:"workflow"`
}

// New builds a renderer, resolving the theme once up front.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		themeName: DefaultTheme,
		variant:   DefaultVariant,
		appName:   DefaultAppName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.selector == nil {
		selector, err := NewStaticSelector(Manifest())
		if err != nil {
			return nil, err
		}
		r.selector = selector
	}

	selection, err := r.selector.Select(r.themeName, r.variant)
	if err != nil {
		return nil, fmt.Errorf("views: select theme: %w", err)
	}
	cfg := RendererConfig(selection)
	if cfg != nil {
		r.theme = themeData{
			Name:         cfg.Theme,
			Variant:      cfg.Variant,
			CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
		}
		if cfg.AssetURL != nil {
			r.theme.Stylesheet = cfg.AssetURL(stylesheetAsset)
		}
	}

	// app and theme are fixed for the renderer's lifetime and live in the
	// engine's globals; pages only carry per-request data.
	globals := map[string]any{
		"app":   appData{Name: r.appName},
		"theme": r.theme,
	}
	if r.engine == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(Templates()), gotemplate.WithGlobalData(globals))
		if err != nil {
			return nil, fmt.Errorf("views: template engine: %w", err)
		}
		r.engine = engine
	} else if err := r.engine.GlobalContext(globals); err != nil {
		return nil, fmt.Errorf("views: template globals: %w", err)
	}
	return r, nil
}

// Render writes the named page to w.
func (r *Renderer) Render(w io.Writer, name string, page Page) error {
	data := pageData{
		Page:       name,
		Path:       page.Path,
		Wallet:     page.Wallet,
		WalletLink: walletLink(page.Wallet),
		Workflow:   page.Workflow,
	}
	if _, err := r.engine.RenderTemplate(name, data, w); err != nil {
		return fmt.Errorf("views: render %s: %w", name, err)
	}
	return nil
}

// Home renders the landing page.
func (r *Renderer) Home(w io.Writer, page Page) error {
	return r.Render(w, PageHome, page)
}

// Attest renders the schema builder and attestation page.
func (r *Renderer) Attest(w io.Writer, page Page) error {
	return r.Render(w, PageAttest, page)
}

// NotFound renders the layout with the navbar and no page content.
func (r *Renderer) NotFound(w io.Writer, page Page) error {
	return r.Render(w, PageNotFound, page)
}
