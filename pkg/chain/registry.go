package chain

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores chain descriptors by id. The first registered chain is the
// default unless SetDefault picks another.
type Registry struct {
	mu        sync.RWMutex
	chains    map[int64]Chain
	defaultID int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{chains: make(map[int64]Chain)}
}

// NewDefaultRegistry returns a registry seeded with Defaults().
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, c := range Defaults() {
		r.MustRegister(c)
	}
	return r
}

// Register validates and adds a chain. Duplicate ids return an error.
func (r *Registry) Register(c Chain) error {
	if err := c.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chains[c.ID]; exists {
		return fmt.Errorf("chain: id %d already registered", c.ID)
	}
	r.chains[c.ID] = c
	if r.defaultID == 0 {
		r.defaultID = c.ID
	}
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(c Chain) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Put adds or replaces a chain after validation.
func (r *Registry) Put(c Chain) error {
	if err := c.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.chains[c.ID] = c
	if r.defaultID == 0 {
		r.defaultID = c.ID
	}
	return nil
}

// SetDefault selects the default chain.
func (r *Registry) SetDefault(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chains[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownChain, id)
	}
	r.defaultID = id
	return nil
}

// Get retrieves a chain by id.
func (r *Registry) Get(id int64) (Chain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.chains[id]
	if !ok {
		return Chain{}, fmt.Errorf("%w: %d", ErrUnknownChain, id)
	}
	return c, nil
}

// Has reports whether a chain id is registered.
func (r *Registry) Has(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.chains[id]
	return ok
}

// Default returns the default chain. The boolean is false for an empty
// registry.
func (r *Registry) Default() (Chain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.chains[r.defaultID]
	return c, ok
}

// List returns the registered chains sorted by id.
func (r *Registry) List() []Chain {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Chain, 0, len(r.chains))
	for _, c := range r.chains {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
