// Package attestform exposes the incident reporting app's building blocks
// from the module root: schema and attestation types, client constructors,
// the per-session workflow and a ready-to-mount HTTP handler.
package attestform

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-attestform/internal/server"
	"github.com/goliatone/go-attestform/pkg/attest"
	"github.com/goliatone/go-attestform/pkg/attest/memory"
	"github.com/goliatone/go-attestform/pkg/attest/remote"
	"github.com/goliatone/go-attestform/pkg/chain"
	"github.com/goliatone/go-attestform/pkg/schema"
	"github.com/goliatone/go-attestform/pkg/session"
	"github.com/goliatone/go-attestform/pkg/workflow"
)

// Field is one named, typed schema column.
type Field = schema.Field

// FieldType is a schema field type tag.
type FieldType = schema.FieldType

// Schema is a registered schema.
type Schema = schema.Schema

// Client is the attestation service capability set.
type Client = attest.Client

// ServiceConfig configures attestation clients.
type ServiceConfig = attest.Config

// Workflow is the per-session schema builder and attestation state.
type Workflow = workflow.Workflow

// Chain is a network descriptor.
type Chain = chain.Chain

// NewMemoryClient returns an in-process attestation service.
func NewMemoryClient(cfg ServiceConfig) *memory.Service {
	return memory.New(cfg)
}

// NewRemoteClient returns a client for a hosted attestation service.
func NewRemoteClient(baseURL string, cfg ServiceConfig, options ...remote.Option) (*remote.Client, error) {
	return remote.New(baseURL, cfg, options...)
}

// NewWorkflow builds a workflow around client.
func NewWorkflow(client Client, options ...workflow.Option) *Workflow {
	return workflow.New(client, options...)
}

// NewHandler mounts the full web app (pages, form actions, JSON API and
// assets) for client. chains may be nil to use the built-in networks.
// Sessions live in memory; run Janitor to evict idle ones.
func NewHandler(client Client, chains *chain.Registry, options ...HandlerOption) (http.Handler, *Janitor, error) {
	cfg := handlerConfig{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if chains == nil {
		chains = chain.NewDefaultRegistry()
	}
	cached := attest.NewCachedClient(client, cfg.cacheSize)
	store, err := session.New(server.SessionFactory(cached, chains, cfg.workflow...), cfg.session...)
	if err != nil {
		return nil, nil, err
	}
	srv, err := server.New(store, chains, cfg.server...)
	if err != nil {
		return nil, nil, err
	}
	return srv, &Janitor{store: store}, nil
}

// Janitor evicts idle sessions for a handler built by NewHandler.
type Janitor struct {
	store *session.Store
}

// Run sweeps until ctx is done.
func (j *Janitor) Run(ctx context.Context) error {
	return j.store.Run(ctx)
}

// Sessions reports how many sessions are live.
func (j *Janitor) Sessions() int {
	return j.store.Len()
}

type handlerConfig struct {
	cacheSize int
	workflow  []workflow.Option
	session   []session.Option
	server    []server.Option
}

// HandlerOption configures NewHandler.
type HandlerOption func(*handlerConfig)

// WithSchemaCacheSize bounds the shared schema cache.
func WithSchemaCacheSize(size int) HandlerOption {
	return func(c *handlerConfig) {
		c.cacheSize = size
	}
}

// WithWorkflowOptions applies options to every session's workflow.
func WithWorkflowOptions(options ...workflow.Option) HandlerOption {
	return func(c *handlerConfig) {
		c.workflow = append(c.workflow, options...)
	}
}

// WithSessionOptions configures the session store.
func WithSessionOptions(options ...session.Option) HandlerOption {
	return func(c *handlerConfig) {
		c.session = append(c.session, options...)
	}
}

// WithLogger sets the logger for request logs, sessions and workflows.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(c *handlerConfig) {
		c.workflow = append(c.workflow, workflow.WithLogger(logger))
		c.session = append(c.session, session.WithLogger(logger))
		c.server = append(c.server, server.WithLogger(logger))
	}
}
