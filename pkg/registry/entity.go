package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bigdatacesga/config-registry/pkg/kv"
)

// entity is the shared shape of every proxy: a DN plus the store it reads
// from. Attribute access is a live round trip; nothing is cached.
type entity struct {
	dn       string
	store    kv.Store
	readOnly map[string]bool
}

func newEntity(store kv.Store, dn string) entity {
	return entity{dn: strings.TrimRight(dn, "/"), store: store}
}

// DN returns the distinguished name of the backing subtree.
func (e *entity) DN() string {
	return e.dn
}

func (e *entity) String() string {
	return e.dn
}

func (e *entity) key(name string) string {
	return e.dn + "/" + name
}

// Get reads the attribute leaf name under the entity DN. A missing key
// surfaces as kv.ErrKeyNotFound.
func (e *entity) Get(ctx context.Context, name string) (string, error) {
	return e.store.Get(ctx, e.key(name))
}

// GetDefault reads an attribute, substituting def when the key is absent.
func (e *entity) GetDefault(ctx context.Context, name, def string) (string, error) {
	value, err := e.store.Get(ctx, e.key(name))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return def, nil
	}
	return value, err
}

// Set writes the attribute leaf name under the entity DN.
func (e *entity) Set(ctx context.Context, name, value string) error {
	if e.readOnly[name] {
		return fmt.Errorf("%s: %w", name, ErrReadOnlyAttribute)
	}
	return e.store.Set(ctx, e.key(name), value)
}

// attrMap reads a fixed set of attribute leaves; the serialization path of
// every entity type.
func (e *entity) attrMap(ctx context.Context, fields []string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		value, err := e.Get(ctx, f)
		if err != nil {
			return nil, err
		}
		out[f] = value
	}
	return out, nil
}

// childDNs reconstructs the distinct child entity DNs below subtree by
// scanning its keys through parse. The bare directory key ("<subtree>/")
// some stores persist is skipped.
func childDNs(ctx context.Context, store kv.Store, subtree string, parse func(string) (string, bool)) ([]string, error) {
	tree, err := store.Recurse(ctx, subtree)
	if err != nil {
		return nil, err
	}

	found := sets.New[string]()
	for key := range tree {
		if key == subtree+"/" {
			continue
		}
		if dn, ok := parse(key); ok {
			found.Insert(dn)
		}
	}
	return sets.List(found), nil
}

// dnOrdered is implemented by every entity proxy; equality and ordering are
// defined on DN strings alone.
type dnOrdered interface {
	DN() string
}

func sortByDN[T dnOrdered](items []T) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].DN() < items[j].DN()
	})
}
