// Package bootstrap turns a loaded configuration into the attestation client
// and chain registry shared by the binaries.
package bootstrap

import (
	"fmt"

	"github.com/goliatone/go-attestform/internal/config"
	"github.com/goliatone/go-attestform/pkg/attest"
	"github.com/goliatone/go-attestform/pkg/attest/memory"
	"github.com/goliatone/go-attestform/pkg/attest/remote"
	"github.com/goliatone/go-attestform/pkg/chain"
)

// Client returns the configured attestation client wrapped in the schema
// cache.
func Client(cfg *config.Config) (*attest.CachedClient, error) {
	svc, err := cfg.ServiceConfig()
	if err != nil {
		return nil, err
	}
	var client attest.Client
	switch cfg.Attest.Mode {
	case config.ServiceMemory:
		client = memory.New(svc)
	case config.ServiceRemote:
		client, err = remote.New(cfg.Attest.BaseURL, svc, remote.WithTimeout(cfg.Attest.Timeout))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("bootstrap: unsupported attest mode %q", cfg.Attest.Mode)
	}
	return attest.NewCachedClient(client, cfg.Attest.CacheSize), nil
}

// Chains builds the chain registry. Without a chains file the attestation
// chain becomes the wallet default when it is registered.
func Chains(cfg *config.Config) (*chain.Registry, error) {
	if cfg.Chains.File != "" {
		return chain.LoadFile(cfg.Chains.File)
	}
	registry := chain.NewDefaultRegistry()
	if registry.Has(cfg.Attest.ChainID) {
		if err := registry.SetDefault(cfg.Attest.ChainID); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
