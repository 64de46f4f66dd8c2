package views

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

const (
	// DefaultTheme is the name of the built-in theme manifest.
	DefaultTheme = "incident"
	// DefaultVariant is the variant used when none is configured.
	DefaultVariant = "light"

	stylesheetAsset = "app.stylesheet"
	assetPrefix     = "/assets"
)

// ErrUnknownTheme is returned by the static selector for unregistered themes
// or variants.
var ErrUnknownTheme = errors.New("views: unknown theme")

// Manifest returns the built-in theme manifest. Variants only override the
// tokens they change.
func Manifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultTheme,
		Version: "1.0.0",
		Tokens: map[string]string{
			"background":   "#f5f5f4",
			"surface":      "#ffffff",
			"text":         "#0c0a09",
			"muted":        "#57534e",
			"accent":       "#fb923c",
			"accent-alt":   "#d946ef",
			"danger":       "#dc2626",
			"radius":       "999px",
			"font-display": "'Neue Machina', system-ui, sans-serif",
		},
		Templates: map[string]string{
			"layout": "layout.tmpl",
			"navbar": "navbar.tmpl",
		},
		Assets: theme.Assets{
			Prefix: assetPrefix,
			Files: map[string]string{
				stylesheetAsset: "app.css",
			},
		},
		Variants: map[string]theme.Variant{
			"light": {},
			"dark": {
				Tokens: map[string]string{
					"background": "#1c1917",
					"surface":    "#292524",
					"text":       "#fafaf9",
					"muted":      "#a8a29e",
				},
			},
		},
	}
}

type manifestRegistry interface {
	Register(*theme.Manifest) error
}

// StaticSelector resolves themes from a fixed set of manifests. Manifests are
// validated through a go-theme registry when added.
type StaticSelector struct {
	mu        sync.RWMutex
	registry  manifestRegistry
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ theme.ThemeSelector = (*StaticSelector)(nil)

// NewStaticSelector registers manifests; the first one is the fallback when
// Select is called with an empty name.
func NewStaticSelector(manifests ...*theme.Manifest) (*StaticSelector, error) {
	s := &StaticSelector{
		registry:  theme.NewRegistry(),
		manifests: make(map[string]*theme.Manifest, len(manifests)),
	}
	for _, m := range manifests {
		if err := s.Add(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add registers a manifest.
func (s *StaticSelector) Add(m *theme.Manifest) error {
	if m == nil || strings.TrimSpace(m.Name) == "" {
		return errors.New("views: theme manifest requires a name")
	}
	if err := s.registry.Register(m); err != nil {
		return fmt.Errorf("views: register theme %q: %w", m.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[m.Name] = m
	if s.fallback == "" {
		s.fallback = m.Name
	}
	return nil
}

// Select implements theme.ThemeSelector.
func (s *StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = s.fallback
	}
	m, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	variant = strings.TrimSpace(variant)
	if variant != "" {
		if _, ok := m.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q has no variant %q", ErrUnknownTheme, name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: m}, nil
}

// RendererConfig flattens a selection: variant tokens, templates and asset
// files override the base manifest, and every token becomes a "--name" CSS
// variable.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	m := selection.Manifest

	tokens := mergeStrings(m.Tokens, nil)
	partials := mergeStrings(m.Templates, nil)
	files := mergeStrings(m.Assets.Files, nil)
	prefix := m.Assets.Prefix
	if v, ok := m.Variants[selection.Variant]; ok {
		tokens = mergeStrings(tokens, v.Tokens)
		partials = mergeStrings(partials, v.Templates)
		files = mergeStrings(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				return ""
			}
			return path.Join(prefix, file)
		},
	}
}

func mergeStrings(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// cssVarsStyle renders a :root rule with the variables in key order.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString("  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
