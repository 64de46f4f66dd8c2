package attest

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-attestform/pkg/schema"
)

// Mode selects where the service records schemas and attestations.
type Mode string

const (
	ModeOnChain  Mode = "onchain"
	ModeOffChain Mode = "offchain"
)

// ParseMode normalises a mode string, defaulting to on-chain when empty.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeOnChain:
		return ModeOnChain, nil
	case ModeOffChain:
		return ModeOffChain, nil
	default:
		return "", fmt.Errorf("attest: unknown mode %q", raw)
	}
}

// Config is passed explicitly to every client constructor.
type Config struct {
	Mode       Mode
	ChainID    int64
	SigningKey string
}

// Validate checks the fields all clients require.
func (c Config) Validate() error {
	if c.Mode != ModeOnChain && c.Mode != ModeOffChain {
		return fmt.Errorf("attest: invalid mode %q", c.Mode)
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("attest: chain id must be positive")
	}
	return nil
}

// SchemaSpec is the payload for registering a schema.
type SchemaSpec struct {
	Name string         `json:"name"`
	Data []schema.Field `json:"data"`
}

// SchemaResult carries the id issued for a new schema.
type SchemaResult struct {
	SchemaID string `json:"schemaId"`
}

// AttestationRequest instantiates a schema with concrete values.
type AttestationRequest struct {
	SchemaID string            `json:"schemaId"`
	Data     map[string]string `json:"data"`
}

// AttestationResult carries the id issued for a new attestation.
type AttestationResult struct {
	AttestationID string `json:"attestationId"`
}

// Client is the attestation service capability set. Implementations must be
// safe for concurrent use.
type Client interface {
	CreateSchema(ctx context.Context, spec SchemaSpec) (SchemaResult, error)
	GetSchema(ctx context.Context, schemaID string) (schema.Schema, error)
	CreateAttestation(ctx context.Context, req AttestationRequest) (AttestationResult, error)
}
