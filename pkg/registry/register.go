package registry

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bigdatacesga/config-registry/pkg/flatten"
	"github.com/bigdatacesga/config-registry/pkg/paths"
	"github.com/bigdatacesga/config-registry/pkg/template"
)

// ProductSpec carries the attributes stored when registering a product.
type ProductSpec struct {
	Name         string
	Version      string
	Description  string
	Template     string
	TemplateType string
	// Options is the JSON option schema text (required/optional/advanced).
	Options string
	// Orquestrator is the opaque lifecycle script payload.
	Orquestrator string
}

// Register stores a product blueprint under products/<name>/<version>.
// The option schema and template type are validated up front so broken
// blueprints are rejected at registration time, not at instantiation.
func (r *Registry) Register(ctx context.Context, spec ProductSpec) (*Product, error) {
	if spec.Name == "" || spec.Version == "" {
		return nil, fmt.Errorf("product name and version are required")
	}
	if spec.TemplateType != template.TypeJSON && spec.TemplateType != template.TypeYAML {
		return nil, fmt.Errorf("%w: %q", template.ErrUnsupportedFormat, spec.TemplateType)
	}
	if spec.Options != "" {
		if _, err := template.ParseSchema(spec.Options); err != nil {
			return nil, err
		}
	}

	dn := paths.Join(r.products, spec.Name, spec.Version)
	leaves := map[string]string{
		"name":         spec.Name,
		"version":      spec.Version,
		"description":  spec.Description,
		"template":     spec.Template,
		"templatetype": spec.TemplateType,
		"options":      spec.Options,
		"orquestrator": spec.Orquestrator,
	}
	for leaf, value := range leaves {
		if err := r.store.Set(ctx, dn+"/"+leaf, value); err != nil {
			return nil, fmt.Errorf("registering product %s/%s: %w", spec.Name, spec.Version, err)
		}
	}
	return NewProduct(r.store, dn), nil
}

// Deregister removes a product blueprint and everything below it.
func (r *Registry) Deregister(ctx context.Context, name, version string) error {
	dn := paths.Join(r.products, name, version)
	return r.store.Delete(ctx, dn, true)
}

// GetProduct wraps the product at (name, version). No I/O is performed;
// reads of a missing product fail lazily with kv.ErrKeyNotFound.
func (r *Registry) GetProduct(name, version string) *Product {
	return NewProduct(r.store, paths.Join(r.products, name, version))
}

// GetProductByDN wraps an explicit product DN.
func (r *Registry) GetProductByDN(dn string) *Product {
	return NewProduct(r.store, dn)
}

// GetCluster wraps the cluster instance at (user, product, version, id).
// No I/O is performed.
func (r *Registry) GetCluster(user, product, version string, id int) *Cluster {
	dn := paths.Join(r.clusters, user, product, version, strconv.Itoa(id))
	return NewCluster(r.store, dn)
}

// GetClusterByDN wraps an explicit cluster DN.
func (r *Registry) GetClusterByDN(dn string) *Cluster {
	return NewCluster(r.store, dn)
}

// RegisterCluster materialises a cluster directly from node and service
// definition documents, bypassing the template pipeline. Definitions may
// contain scalars, flat lists (stored as membership leaves) and nested
// mappings. A fresh instance id is allocated under
// clusters/<user>/<product>/<version>.
func (r *Registry) RegisterCluster(ctx context.Context, user, product, version string,
	nodes, services map[string]map[string]any) (*Cluster, error) {

	prefix := paths.Join(r.clusters, user, product, version)
	id, err := r.nextInstanceID(ctx, prefix)
	if err != nil {
		return nil, err
	}
	dn := fmt.Sprintf("%s/%d", prefix, id)

	flat := make(map[string]string)
	for name, node := range nodes {
		part, err := flatten.Flatten(map[string]any(node), dn+"/nodes/"+name)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", name, err)
		}
		for k, v := range part {
			flat[k] = v
		}
	}
	for name, service := range services {
		part, err := flatten.Flatten(map[string]any(service), dn+"/services/"+name)
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", name, err)
		}
		for k, v := range part {
			flat[k] = v
		}
	}

	if err := r.bulkWrite(ctx, flat); err != nil {
		return nil, err
	}
	return NewCluster(r.store, dn), nil
}
