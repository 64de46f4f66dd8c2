// Package wallet tracks the wallet a browser session has connected and the
// chain it has selected. Signing and balance lookups happen in the user's
// wallet, never here.
package wallet

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-attestform/pkg/address"
	"github.com/goliatone/go-attestform/pkg/chain"
)

var (
	// ErrInvalidAddress is returned by Connect for malformed addresses.
	ErrInvalidAddress = errors.New("wallet: invalid address")
	// ErrUnknownChain is returned by SwitchChain for unregistered chain ids.
	ErrUnknownChain = errors.New("wallet: unknown chain")
	// ErrNoChains is returned when the chain source has nothing registered.
	ErrNoChains = errors.New("wallet: no chains configured")
)

// Chains is the chain lookup a connection validates against. *chain.Registry
// satisfies it.
type Chains interface {
	Get(id int64) (chain.Chain, error)
	Default() (chain.Chain, bool)
	List() []chain.Chain
}

// Connection holds one session's wallet state. The zero chain id is never
// exposed: a new connection starts on the default chain.
type Connection struct {
	chains Chains

	mu      sync.RWMutex
	address string
	chainID int64
}

// NewConnection returns a disconnected wallet on the default chain.
func NewConnection(chains Chains) (*Connection, error) {
	if chains == nil {
		return nil, ErrNoChains
	}
	def, ok := chains.Default()
	if !ok {
		return nil, ErrNoChains
	}
	return &Connection{chains: chains, chainID: def.ID}, nil
}

// Connect records addr as the connected account.
func (c *Connection) Connect(addr string) error {
	addr = strings.TrimSpace(addr)
	if !address.Valid(addr) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	c.mu.Lock()
	c.address = addr
	c.mu.Unlock()
	return nil
}

// Disconnect forgets the connected account. The chain selection is kept.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	c.address = ""
	c.mu.Unlock()
}

// SwitchChain selects a registered chain.
func (c *Connection) SwitchChain(id int64) error {
	if _, err := c.chains.Get(id); err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownChain, err)
	}
	c.mu.Lock()
	c.chainID = id
	c.mu.Unlock()
	return nil
}

// Connected reports whether an account is connected.
func (c *Connection) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.address != ""
}

// Address returns the connected account or "".
func (c *Connection) Address() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.address
}

// ChainID returns the selected chain id.
func (c *Connection) ChainID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.chainID
}

// Chain returns the selected chain descriptor.
func (c *Connection) Chain() (chain.Chain, error) {
	return c.chains.Get(c.ChainID())
}
