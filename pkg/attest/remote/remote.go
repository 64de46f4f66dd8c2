// Package remote implements attest.Client over the attestation service's
// JSON/HTTP API. Requests carry the configured mode and chain in headers and
// an HMAC signature of the body derived from the signing key. There is no
// retry: a failed call is returned to the caller as-is.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-attestform/pkg/attest"
	"github.com/goliatone/go-attestform/pkg/schema"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 1 << 20
)

// Option customises the client.
type Option func(*Client)

// WithHTTPClient injects the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds each call. Zero disables the client-side deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client talks to a hosted attestation service.
type Client struct {
	base    *url.URL
	cfg     attest.Config
	http    *http.Client
	timeout time.Duration
}

var _ attest.Client = (*Client)(nil)

// New constructs a client for baseURL.
func New(baseURL string, cfg attest.Config, options ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("remote: base url is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("remote: unsupported scheme %q", parsed.Scheme)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	c := &Client{
		base:    parsed,
		cfg:     cfg,
		http:    http.DefaultClient,
		timeout: defaultTimeout,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// CreateSchema registers a schema.
func (c *Client) CreateSchema(ctx context.Context, spec attest.SchemaSpec) (attest.SchemaResult, error) {
	var out attest.SchemaResult
	if err := c.do(ctx, http.MethodPost, spec, &out, "schemas"); err != nil {
		return attest.SchemaResult{}, fmt.Errorf("remote: create schema: %w", err)
	}
	return out, nil
}

// GetSchema fetches a schema by id.
func (c *Client) GetSchema(ctx context.Context, schemaID string) (schema.Schema, error) {
	if strings.TrimSpace(schemaID) == "" {
		return schema.Schema{}, fmt.Errorf("remote: get schema: %w: empty id", attest.ErrInvalidRequest)
	}
	var out schema.Schema
	if err := c.do(ctx, http.MethodGet, nil, &out, "schemas", schemaID); err != nil {
		return schema.Schema{}, fmt.Errorf("remote: get schema: %w", err)
	}
	return out, nil
}

// CreateAttestation submits values for a schema.
func (c *Client) CreateAttestation(ctx context.Context, req attest.AttestationRequest) (attest.AttestationResult, error) {
	var out attest.AttestationResult
	if err := c.do(ctx, http.MethodPost, req, &out, "attestations"); err != nil {
		return attest.AttestationResult{}, fmt.Errorf("remote: create attestation: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method string, payload, dest any, elems ...string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		body = encoded
	}

	target := c.base.JoinPath(elems...)

	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(attest.HeaderMode, string(c.cfg.Mode))
	req.Header.Set(attest.HeaderChain, strconv.FormatInt(c.cfg.ChainID, 10))
	if c.cfg.SigningKey != "" {
		req.Header.Set(attest.HeaderSignature, attest.Sign(c.cfg.SigningKey, attest.RequestToSign(req, body)))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}
	if dest == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	message := http.StatusText(status)
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		message = payload.Error
	}

	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", attest.ErrNotFound, message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", attest.ErrInvalidRequest, message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", attest.ErrUnauthorized, message)
	default:
		return fmt.Errorf("unexpected status %d: %s", status, message)
	}
}
