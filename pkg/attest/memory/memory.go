// Package memory implements attest.Client in-process. It backs the "memory"
// service mode used for local development and doubles as the reference
// server for the remote wire protocol (see NewHandler).
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-attestform/pkg/attest"
	"github.com/goliatone/go-attestform/pkg/schema"
)

// Attestation is a stored attestation record.
type Attestation struct {
	ID        string            `json:"attestationId"`
	SchemaID  string            `json:"schemaId"`
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Service keeps schemas and attestations in memory.
type Service struct {
	cfg attest.Config
	now func() time.Time

	mu           sync.RWMutex
	seq          uint64
	schemas      map[string]schema.Schema
	attestations map[string]Attestation
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs an empty service for the given configuration.
func New(cfg attest.Config, options ...Option) *Service {
	s := &Service{
		cfg:          cfg,
		now:          time.Now,
		schemas:      make(map[string]schema.Schema),
		attestations: make(map[string]Attestation),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

var _ attest.Client = (*Service)(nil)

// CreateSchema registers a schema. Every field needs a name and a type.
func (s *Service) CreateSchema(ctx context.Context, spec attest.SchemaSpec) (attest.SchemaResult, error) {
	if err := ctx.Err(); err != nil {
		return attest.SchemaResult{}, err
	}
	if len(spec.Data) == 0 {
		return attest.SchemaResult{}, fmt.Errorf("%w: schema has no fields", attest.ErrInvalidRequest)
	}
	fields := make([]schema.Field, 0, len(spec.Data))
	for i, f := range spec.Data {
		if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(string(f.Type)) == "" {
			return attest.SchemaResult{}, fmt.Errorf("%w: field %d needs a name and type", attest.ErrInvalidRequest, i)
		}
		fields = append(fields, schema.Field{Name: f.Name, Type: f.Type})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextIDLocked()
	s.schemas[id] = schema.Schema{ID: id, Name: spec.Name, Fields: fields}
	return attest.SchemaResult{SchemaID: id}, nil
}

// GetSchema returns a stored schema.
func (s *Service) GetSchema(ctx context.Context, schemaID string) (schema.Schema, error) {
	if err := ctx.Err(); err != nil {
		return schema.Schema{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.schemas[schemaID]
	if !ok {
		return schema.Schema{}, fmt.Errorf("%w: schema %q", attest.ErrNotFound, schemaID)
	}
	out := stored
	out.Fields = append([]schema.Field(nil), stored.Fields...)
	return out, nil
}

// CreateAttestation stores values for an existing schema. Keys must name
// fields of that schema; missing fields are allowed.
func (s *Service) CreateAttestation(ctx context.Context, req attest.AttestationRequest) (attest.AttestationResult, error) {
	if err := ctx.Err(); err != nil {
		return attest.AttestationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.schemas[req.SchemaID]
	if !ok {
		return attest.AttestationResult{}, fmt.Errorf("%w: schema %q", attest.ErrNotFound, req.SchemaID)
	}
	known := make(map[string]struct{}, len(stored.Fields))
	for _, f := range stored.Fields {
		known[f.Name] = struct{}{}
	}
	data := make(map[string]string, len(req.Data))
	for key, value := range req.Data {
		if _, ok := known[key]; !ok {
			return attest.AttestationResult{}, fmt.Errorf("%w: unknown field %q", attest.ErrInvalidRequest, key)
		}
		data[key] = value
	}

	id := s.nextIDLocked()
	s.attestations[id] = Attestation{
		ID:        id,
		SchemaID:  req.SchemaID,
		Data:      data,
		CreatedAt: s.now(),
	}
	return attest.AttestationResult{AttestationID: id}, nil
}

// Attestation looks up a stored attestation.
func (s *Service) Attestation(id string) (Attestation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attestations[id]
	return a, ok
}

// Counts reports how many schemas and attestations are stored.
func (s *Service) Counts() (schemas, attestations int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.schemas), len(s.attestations)
}

// ids follow the "<mode>_evm_<chain>_0x<seq>" shape of the hosted service.
func (s *Service) nextIDLocked() string {
	s.seq++
	return fmt.Sprintf("%s_evm_%d_0x%x", s.cfg.Mode, s.cfg.ChainID, s.seq)
}
