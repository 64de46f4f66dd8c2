// Package chain describes the blockchain networks and well-known contracts the
// application can talk to. Descriptors are static: they are compiled in as
// defaults and may be overridden from a YAML file at startup.
package chain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-attestform/pkg/address"
)

// Multicall3Address is the deterministic multicall3 deployment shared by most
// EVM networks.
const Multicall3Address = "0xcA11bde05977b3631167028862bE2a173976CA11"

// ErrUnknownChain is returned when a chain id is not registered.
var ErrUnknownChain = errors.New("chain: unknown chain")

// Currency describes a network's native currency.
type Currency struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals int    `json:"decimals" yaml:"decimals"`
}

// Contract points at a deployed contract and the block it was created in.
type Contract struct {
	Address      string `json:"address" yaml:"address"`
	BlockCreated uint64 `json:"blockCreated,omitempty" yaml:"block_created"`
}

// Chain is a static network descriptor consumed by wallet and client setup.
type Chain struct {
	ID             int64    `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Network        string   `json:"network" yaml:"network"`
	NativeCurrency Currency `json:"nativeCurrency" yaml:"native_currency"`
	RPCURL         string   `json:"rpcUrl" yaml:"rpc_url"`
	ExplorerURL    string   `json:"explorerUrl,omitempty" yaml:"explorer_url"`
	Multicall      Contract `json:"multicall" yaml:"multicall"`
	Testnet        bool     `json:"testnet" yaml:"testnet"`
}

// Validate checks the fields required to build a wallet/provider connection.
func (c Chain) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("chain: id must be positive (got %d)", c.ID)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("chain %d: name is required", c.ID)
	}
	if strings.TrimSpace(c.RPCURL) == "" {
		return fmt.Errorf("chain %d: rpc url is required", c.ID)
	}
	if c.NativeCurrency.Symbol == "" {
		return fmt.Errorf("chain %d: native currency symbol is required", c.ID)
	}
	if c.Multicall.Address != "" && !address.Valid(c.Multicall.Address) {
		return fmt.Errorf("chain %d: invalid multicall address %q", c.ID, c.Multicall.Address)
	}
	return nil
}

// ExplorerAddressURL links an address on the chain's block explorer. It
// returns "" when the chain has no explorer configured.
func (c Chain) ExplorerAddressURL(addr string) string {
	base := strings.TrimRight(c.ExplorerURL, "/")
	if base == "" || addr == "" {
		return ""
	}
	return base + "/address/" + addr
}
