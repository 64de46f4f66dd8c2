package apispec_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-attestform/internal/apispec"
	"github.com/goliatone/go-attestform/pkg/schema"
)

func newValidator(t *testing.T) *apispec.Validator {
	t.Helper()
	doc, err := apispec.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	v, err := apispec.NewValidator(doc)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	return v
}

func TestFieldTypeEnumMatchesBuilderTypes(t *testing.T) {
	doc, err := apispec.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	prop := doc.Components.Schemas["FieldInput"].Value.Properties["type"].Value

	var got []string
	for _, v := range prop.Enum {
		got = append(got, fmt.Sprint(v))
	}
	var want []string
	for _, ft := range schema.Types() {
		want = append(want, string(ft))
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	v := newValidator(t)

	cases := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		want        int
	}{
		{name: "state", method: http.MethodGet, path: "/api/state", want: http.StatusOK},
		{name: "add field", method: http.MethodPost, path: "/api/fields", contentType: "application/json", body: `{"name":"age","type":"uint256"}`, want: http.StatusOK},
		{name: "add field default type", method: http.MethodPost, path: "/api/fields", contentType: "application/json", body: `{"name":"age"}`, want: http.StatusOK},
		{name: "unknown type", method: http.MethodPost, path: "/api/fields", contentType: "application/json", body: `{"name":"age","type":"float"}`, want: http.StatusBadRequest},
		{name: "missing name", method: http.MethodPost, path: "/api/fields", contentType: "application/json", body: `{"type":"bool"}`, want: http.StatusBadRequest},
		{name: "missing body", method: http.MethodPost, path: "/api/fields", contentType: "application/json", want: http.StatusBadRequest},
		{name: "wrong content type", method: http.MethodPost, path: "/api/fields", contentType: "text/plain", body: `{"name":"age"}`, want: http.StatusBadRequest},
		{name: "remove field", method: http.MethodDelete, path: "/api/fields/f-1", want: http.StatusOK},
		{name: "fetch schema", method: http.MethodGet, path: "/api/schemas/abc", want: http.StatusOK},
		{name: "values", method: http.MethodPut, path: "/api/values", contentType: "application/json", body: `{"values":{"field1":"x"}}`, want: http.StatusOK},
		{name: "non string value", method: http.MethodPut, path: "/api/values", contentType: "application/json", body: `{"values":{"field1":1}}`, want: http.StatusBadRequest},
		{name: "unknown path", method: http.MethodGet, path: "/api/nope", want: http.StatusNotFound},
		{name: "method not allowed", method: http.MethodPut, path: "/api/state", want: http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req := httptest.NewRequest(tc.method, tc.path, body)
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			status, err := v.Validate(req)
			if status != tc.want {
				t.Fatalf("status: want %d, got %d (err %v)", tc.want, status, err)
			}
			if (err == nil) != (tc.want == http.StatusOK) {
				t.Fatalf("unexpected error state: %v", err)
			}
		})
	}
}

func TestMiddleware_PreservesBody(t *testing.T) {
	v := newValidator(t)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		seen = string(data)
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/fields", strings.NewReader(`{"name":"age"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	v.Middleware(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: %d body %s", rec.Code, rec.Body.String())
	}
	if seen != `{"name":"age"}` {
		t.Fatalf("body not preserved: %q", seen)
	}
}

func TestMiddleware_CustomErrorHandler(t *testing.T) {
	doc, err := apispec.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var gotStatus int
	v, err := apispec.NewValidator(doc, apispec.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, status int, _ error) {
		gotStatus = status
		w.WriteHeader(status)
	}))
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	called := false
	rec := httptest.NewRecorder()
	v.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))

	if called {
		t.Fatalf("invalid request reached the handler")
	}
	if gotStatus != http.StatusNotFound || rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d/%d", gotStatus, rec.Code)
	}
}

func TestDocumentIsCopy(t *testing.T) {
	a := apispec.Document()
	a[0] = 'x'
	if apispec.Document()[0] == 'x' {
		t.Fatalf("Document exposed the embedded slice")
	}
}
