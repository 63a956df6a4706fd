package registry

import (
	"context"
	"errors"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bigdatacesga/config-registry/pkg/kv"
	"github.com/bigdatacesga/config-registry/pkg/paths"
)

// QueryProducts lists registered products, optionally narrowed by product
// name and version. Filters are hierarchical: a version filter requires a
// product filter. A missing prefix yields an empty result, not an error.
func (r *Registry) QueryProducts(ctx context.Context, product, version string) ([]*Product, error) {
	if version != "" && product == "" {
		return nil, ErrInvalidFilter
	}

	dns, err := r.queryDNs(ctx, r.products, 2, product, version)
	if err != nil {
		return nil, err
	}
	products := make([]*Product, 0, len(dns))
	for _, dn := range dns {
		products = append(products, NewProduct(r.store, dn))
	}
	return products, nil
}

// QueryClusters lists materialised cluster instances, optionally narrowed
// by user, product and version (hierarchically, no holes). A missing
// prefix yields an empty result, not an error.
func (r *Registry) QueryClusters(ctx context.Context, user, product, version string) ([]*Cluster, error) {
	if (product != "" && user == "") || (version != "" && product == "") {
		return nil, ErrInvalidFilter
	}

	dns, err := r.queryDNs(ctx, r.clusters, 4, user, product, version)
	if err != nil {
		return nil, err
	}
	clusters := make([]*Cluster, 0, len(dns))
	for _, dn := range dns {
		clusters = append(clusters, NewCluster(r.store, dn))
	}
	return clusters, nil
}

// queryDNs walks the subtree below root (narrowed by the given filter
// segments) and extracts the distinct entity DNs formed by the first depth
// segments below root.
func (r *Registry) queryDNs(ctx context.Context, root string, depth int, filters ...string) ([]string, error) {
	prefix := root
	for _, f := range filters {
		if f == "" {
			break
		}
		prefix = prefix + "/" + f
	}

	tree, err := r.store.Recurse(ctx, prefix)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	found := sets.New[string]()
	for key := range tree {
		// Recurse matches raw prefixes; enforce a segment boundary so a
		// filter of "u" does not pick up keys under "uu".
		if key != prefix && !strings.HasPrefix(key, prefix+"/") {
			continue
		}
		rest, ok := strings.CutPrefix(key, root+"/")
		if !ok {
			continue
		}
		segments := strings.Split(rest, "/")
		if len(segments) < depth {
			continue
		}
		found.Insert(paths.Join(append([]string{root}, segments[:depth]...)...))
	}
	return sets.List(found), nil
}
