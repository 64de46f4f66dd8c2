// Package config loads runtime configuration from defaults, an optional YAML
// file and ATTESTFORM_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-attestform/pkg/attest"
	"github.com/goliatone/go-attestform/pkg/chain"
	"github.com/goliatone/go-attestform/pkg/workflow"
)

// EnvPrefix prefixes every environment override, e.g. ATTESTFORM_SERVER_ADDR.
const EnvPrefix = "ATTESTFORM"

// Service modes.
const (
	ServiceMemory = "memory"
	ServiceRemote = "remote"
)

type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Attest  AttestConfig
	Schema  SchemaConfig
	Chains  ChainsConfig
	Session SessionConfig
	Theme   ThemeConfig
}

type ServerConfig struct {
	Addr          string
	ShutdownGrace time.Duration
}

type LogConfig struct {
	Level       string
	Development bool
}

// AttestConfig selects and configures the attestation service client.
type AttestConfig struct {
	Mode        string // memory or remote
	BaseURL     string
	NetworkMode string // onchain or offchain
	ChainID     int64
	SigningKey  string
	Timeout     time.Duration
	CacheSize   int
}

type SchemaConfig struct {
	Name string
}

type ChainsConfig struct {
	File string
}

type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type ThemeConfig struct {
	Name    string
	Variant string
}

// SetDefaults registers a default for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_grace", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("attest.mode", ServiceMemory)
	v.SetDefault("attest.base_url", "")
	v.SetDefault("attest.network_mode", string(attest.ModeOnChain))
	v.SetDefault("attest.chain_id", chain.OptimismSepoliaID)
	v.SetDefault("attest.signing_key", "")
	v.SetDefault("attest.timeout", 15*time.Second)
	v.SetDefault("attest.cache_size", 128)
	v.SetDefault("schema.name", workflow.DefaultSchemaName)
	v.SetDefault("chains.file", "")
	v.SetDefault("session.cookie_name", "attestform_session")
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.secure", false)
	v.SetDefault("theme.name", "incident")
	v.SetDefault("theme.variant", "light")
}

// NewViper returns a viper instance with defaults and environment overrides
// applied. When configFile is set it is read as well and must exist.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load reads configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, errors.New("config: viper instance is required")
	}
	cfg := &Config{
		Server: ServerConfig{
			Addr:          v.GetString("server.addr"),
			ShutdownGrace: v.GetDuration("server.shutdown_grace"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
		Attest: AttestConfig{
			Mode:        strings.ToLower(strings.TrimSpace(v.GetString("attest.mode"))),
			BaseURL:     strings.TrimSpace(v.GetString("attest.base_url")),
			NetworkMode: v.GetString("attest.network_mode"),
			ChainID:     v.GetInt64("attest.chain_id"),
			SigningKey:  v.GetString("attest.signing_key"),
			Timeout:     v.GetDuration("attest.timeout"),
			CacheSize:   v.GetInt("attest.cache_size"),
		},
		Schema: SchemaConfig{
			Name: v.GetString("schema.name"),
		},
		Chains: ChainsConfig{
			File: v.GetString("chains.file"),
		},
		Session: SessionConfig{
			CookieName: v.GetString("session.cookie_name"),
			TTL:        v.GetDuration("session.ttl"),
			Secure:     v.GetBool("session.secure"),
		},
		Theme: ThemeConfig{
			Name:    v.GetString("theme.name"),
			Variant: v.GetString("theme.variant"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is required")
	}
	if c.Server.ShutdownGrace < 0 {
		return errors.New("config: server.shutdown_grace must not be negative")
	}
	switch c.Attest.Mode {
	case ServiceMemory:
	case ServiceRemote:
		if c.Attest.BaseURL == "" {
			return errors.New("config: attest.base_url is required in remote mode")
		}
	default:
		return fmt.Errorf("config: attest.mode must be %q or %q (got %q)", ServiceMemory, ServiceRemote, c.Attest.Mode)
	}
	if _, err := c.ServiceConfig(); err != nil {
		return err
	}
	if c.Attest.Timeout <= 0 {
		return errors.New("config: attest.timeout must be positive")
	}
	if c.Attest.CacheSize < 0 {
		return errors.New("config: attest.cache_size must not be negative")
	}
	if c.Session.TTL <= 0 {
		return errors.New("config: session.ttl must be positive")
	}
	return nil
}

// ServiceConfig builds the attestation client configuration.
func (c *Config) ServiceConfig() (attest.Config, error) {
	mode, err := attest.ParseMode(c.Attest.NetworkMode)
	if err != nil {
		return attest.Config{}, fmt.Errorf("config: attest.network_mode: %w", err)
	}
	out := attest.Config{
		Mode:       mode,
		ChainID:    c.Attest.ChainID,
		SigningKey: c.Attest.SigningKey,
	}
	if err := out.Validate(); err != nil {
		return attest.Config{}, fmt.Errorf("config: %w", err)
	}
	return out, nil
}
