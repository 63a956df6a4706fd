package registry

import "context"

// Package-level convenience API delegating to the process-wide default
// registry. Library code should prefer an explicit Registry; these exist
// for tooling and interactive use.

// Register stores a product blueprint through the default registry.
func Register(ctx context.Context, spec ProductSpec) (*Product, error) {
	return Default().Register(ctx, spec)
}

// Deregister removes a product through the default registry.
func Deregister(ctx context.Context, name, version string) error {
	return Default().Deregister(ctx, name, version)
}

// Instantiate materialises a cluster through the default registry.
func Instantiate(ctx context.Context, user, product, version string, opts map[string]any) (*Cluster, error) {
	return Default().Instantiate(ctx, user, product, version, opts)
}

// Deinstantiate removes a cluster instance through the default registry.
func Deinstantiate(ctx context.Context, user, product, version string, id int) error {
	return Default().Deinstantiate(ctx, user, product, version, id)
}

// GetProduct wraps a product through the default registry.
func GetProduct(name, version string) *Product {
	return Default().GetProduct(name, version)
}

// GetCluster wraps a cluster instance through the default registry.
func GetCluster(user, product, version string, id int) *Cluster {
	return Default().GetCluster(user, product, version, id)
}

// QueryProducts lists products through the default registry.
func QueryProducts(ctx context.Context, product, version string) ([]*Product, error) {
	return Default().QueryProducts(ctx, product, version)
}

// QueryClusters lists cluster instances through the default registry.
func QueryClusters(ctx context.Context, user, product, version string) ([]*Cluster, error) {
	return Default().QueryClusters(ctx, user, product, version)
}
