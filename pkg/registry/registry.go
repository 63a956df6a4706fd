// Package registry implements the configuration registry: product blueprint
// management, cluster instantiation, and the proxy entities that project the
// hierarchical key/value tree onto a typed object model.
//
// The store is the single source of truth. Proxy entities own nothing beyond
// their DN; every attribute access is a live read or write against the
// backing store.
package registry

import (
	"errors"
	"sync"

	"github.com/bigdatacesga/config-registry/pkg/kv"
	"github.com/bigdatacesga/config-registry/pkg/template"
)

// Default top-level prefixes. An earlier convention used "templates" and
// "instances"; both are configurable through WithPrefixes.
const (
	DefaultProductPrefix = "products"
	DefaultClusterPrefix = "clusters"
)

// DefaultWriteConcurrency bounds the parallel fan-out of bulk writes.
const DefaultWriteConcurrency = 8

var (
	// ErrReadOnlyAttribute is returned when writing to a protected attribute.
	ErrReadOnlyAttribute = errors.New("attribute is read-only")

	// ErrInvalidFilter is returned when query filters leave holes in the
	// path hierarchy (e.g. a version without a product).
	ErrInvalidFilter = errors.New("query filters must be hierarchical")

	// ErrInvalidOptions mirrors the template package sentinel for callers
	// that only import this package.
	ErrInvalidOptions = template.ErrInvalidOptions
)

// Registry is the top-level API object. All operations go through an
// explicit Registry so callers control the store binding; a process-wide
// default is kept for tooling convenience (see Connect and Default).
type Registry struct {
	store      kv.Store
	products   string
	clusters   string
	writeLimit int
}

// Option configures a Registry.
type Option func(*Registry)

// WithPrefixes overrides the top-level product and cluster prefixes.
func WithPrefixes(products, clusters string) Option {
	return func(r *Registry) {
		r.products = products
		r.clusters = clusters
	}
}

// WithWriteConcurrency tunes the bulk-write worker bound.
func WithWriteConcurrency(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.writeLimit = n
		}
	}
}

// New creates a Registry bound to the given store.
func New(store kv.Store, opts ...Option) *Registry {
	r := &Registry{
		store:      store,
		products:   DefaultProductPrefix,
		clusters:   DefaultClusterPrefix,
		writeLimit: DefaultWriteConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store exposes the underlying store, mainly for tooling (dump).
func (r *Registry) Store() kv.Store {
	return r.store
}

var (
	defaultMu       sync.RWMutex
	defaultRegistry *Registry
)

// Connect binds the process-wide default registry to a Consul endpoint
// shaped like http://<host>:<port>/v1/kv. Only the store binding changes;
// prefixes and tuning keep their defaults.
func Connect(endpoint string) (*Registry, error) {
	store, err := kv.NewConsulStore(endpoint)
	if err != nil {
		return nil, err
	}
	r := New(store)

	defaultMu.Lock()
	defaultRegistry = r
	defaultMu.Unlock()
	return r, nil
}

// Default returns the process-wide registry, connecting to the default
// endpoint on first use. Races between Connect and in-flight operations are
// the caller's responsibility.
func Default() *Registry {
	defaultMu.RLock()
	r := defaultRegistry
	defaultMu.RUnlock()
	if r != nil {
		return r
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		store, err := kv.NewConsulStore(kv.DefaultEndpoint)
		if err != nil {
			// The default endpoint constant always parses; this only
			// happens if DefaultEndpoint is patched to something broken.
			panic(err)
		}
		defaultRegistry = New(store)
	}
	return defaultRegistry
}
