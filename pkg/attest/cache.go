package attest

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-attestform/pkg/schema"
)

const (
	defaultCacheSize = 128
	// sharedFetchTimeout bounds an upstream fetch that no longer follows any
	// single caller's context.
	sharedFetchTimeout = 30 * time.Second
)

// CachedClient memoises GetSchema results. Schemas are immutable once
// created, so entries never expire; the cache is bounded by LRU eviction.
// Concurrent fetches of the same id share one upstream call, which runs
// detached from the callers so one caller giving up does not fail the rest.
type CachedClient struct {
	next  Client
	size  int
	group singleflight.Group

	mu      sync.Mutex
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	id     string
	schema schema.Schema
}

// NewCachedClient wraps next. size <= 0 selects a default capacity.
func NewCachedClient(next Client, size int) *CachedClient {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &CachedClient{
		next:    next,
		size:    size,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

var _ Client = (*CachedClient)(nil)

// CreateSchema delegates and primes the cache with the submitted fields.
func (c *CachedClient) CreateSchema(ctx context.Context, spec SchemaSpec) (SchemaResult, error) {
	result, err := c.next.CreateSchema(ctx, spec)
	if err != nil {
		return SchemaResult{}, err
	}
	if result.SchemaID != "" {
		fields := make([]schema.Field, len(spec.Data))
		for i, f := range spec.Data {
			fields[i] = schema.Field{Name: f.Name, Type: f.Type}
		}
		c.store(schema.Schema{ID: result.SchemaID, Name: spec.Name, Fields: fields})
	}
	return result, nil
}

// GetSchema serves from cache or fetches once per id. A caller whose ctx ends
// returns ctx.Err() while the shared fetch keeps going for the others.
func (c *CachedClient) GetSchema(ctx context.Context, schemaID string) (schema.Schema, error) {
	if cached, ok := c.lookup(schemaID); ok {
		return cached, nil
	}
	ch := c.group.DoChan(schemaID, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		fetched, err := c.next.GetSchema(fetchCtx, schemaID)
		if err != nil {
			return nil, err
		}
		c.store(fetched)
		return fetched, nil
	})
	select {
	case <-ctx.Done():
		return schema.Schema{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return schema.Schema{}, res.Err
		}
		return copySchema(res.Val.(schema.Schema)), nil
	}
}

// CreateAttestation delegates without caching.
func (c *CachedClient) CreateAttestation(ctx context.Context, req AttestationRequest) (AttestationResult, error) {
	return c.next.CreateAttestation(ctx, req)
}

// Len reports the number of cached schemas.
func (c *CachedClient) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Unwrap returns the wrapped client.
func (c *CachedClient) Unwrap() Client {
	return c.next
}

func (c *CachedClient) lookup(id string) (schema.Schema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[id]
	if !ok {
		return schema.Schema{}, false
	}
	c.order.MoveToFront(elem)
	return copySchema(elem.Value.(*cacheEntry).schema), true
}

func (c *CachedClient) store(s schema.Schema) {
	if s.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[s.ID]; ok {
		elem.Value.(*cacheEntry).schema = copySchema(s)
		c.order.MoveToFront(elem)
		return
	}
	c.entries[s.ID] = c.order.PushFront(&cacheEntry{id: s.ID, schema: copySchema(s)})
	for c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).id)
	}
}

func copySchema(s schema.Schema) schema.Schema {
	out := s
	out.Fields = make([]schema.Field, len(s.Fields))
	copy(out.Fields, s.Fields)
	return out
}
