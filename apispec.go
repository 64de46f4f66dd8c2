package attestform

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-attestform/internal/apispec"
)

// APIDocument returns the OpenAPI document describing the JSON API.
func APIDocument() []byte {
	return apispec.Document()
}

// LoadAPISpec parses and validates the JSON API document.
func LoadAPISpec(ctx context.Context) (*openapi3.T, error) {
	return apispec.Load(ctx)
}
