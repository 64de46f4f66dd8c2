// Package apispec embeds the OpenAPI document of the JSON API and validates
// incoming API requests against it.
package apispec

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed openapi.yaml
var document []byte

// Document returns the raw embedded OpenAPI document.
func Document() []byte {
	out := make([]byte, len(document))
	copy(out, document)
	return out
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("apispec: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("apispec: validate document: %w", err)
	}
	return doc, nil
}

// ErrorHandler writes a validation failure.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, status int, err error)

// Option configures a Validator.
type Option func(*Validator)

// WithErrorHandler replaces the plain-text error writer.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(v *Validator) {
		if fn != nil {
			v.onError = fn
		}
	}
}

// Validator matches requests to document operations and validates their
// parameters and bodies.
type Validator struct {
	router  routers.Router
	options *openapi3filter.Options
	onError ErrorHandler
}

// NewValidator builds a validator over doc.
func NewValidator(doc *openapi3.T, options ...Option) (*Validator, error) {
	if doc == nil {
		return nil, errors.New("apispec: document is required")
	}
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("apispec: build router: %w", err)
	}
	v := &Validator{
		router: router,
		options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
		onError: func(w http.ResponseWriter, _ *http.Request, status int, err error) {
			http.Error(w, err.Error(), status)
		},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}
	return v, nil
}

// Validate checks r and returns the HTTP status to answer with when it is
// rejected (404 for unknown operations, 405 for unsupported methods, 400 for
// invalid input).
func (v *Validator) Validate(r *http.Request) (int, error) {
	route, params, err := v.router.FindRoute(r)
	if err != nil {
		var routeErr *routers.RouteError
		if errors.As(err, &routeErr) && routeErr.Reason == routers.ErrMethodNotAllowed.Error() {
			return http.StatusMethodNotAllowed, err
		}
		return http.StatusNotFound, err
	}
	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: params,
		Route:      route,
		Options:    v.options,
	}
	if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
		return http.StatusBadRequest, err
	}
	return http.StatusOK, nil
}

// Middleware rejects requests that do not match the document before they
// reach next.
func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status, err := v.Validate(r); err != nil {
			v.onError(w, r, status, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
