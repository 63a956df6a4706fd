package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bigdatacesga/config-registry/pkg/flatten"
	"github.com/bigdatacesga/config-registry/pkg/kv"
	"github.com/bigdatacesga/config-registry/pkg/paths"
	"github.com/bigdatacesga/config-registry/pkg/template"
)

// Instantiate materialises a new cluster instance of (product, version) for
// user. The caller's options are validated against the product's option
// schema and merged over its defaults, the template is rendered and parsed,
// and the flattened document is bulk-written under a freshly allocated
// instance DN.
//
// Id allocation is read-then-write and not linearisable: concurrent calls
// on the same (user, product, version) may collide. Failed instantiations
// are not rolled back; Deinstantiate is the recovery operation.
func (r *Registry) Instantiate(ctx context.Context, user, product, version string, opts map[string]any) (*Cluster, error) {
	p := r.GetProduct(product, version)

	schemaText, err := p.Options(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading product %s/%s: %w", product, version, err)
	}
	templateText, err := p.Template(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading product %s/%s: %w", product, version, err)
	}
	templateType, err := p.TemplateType(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading product %s/%s: %w", product, version, err)
	}

	schema, err := template.ParseSchema(schemaText)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(opts); err != nil {
		return nil, err
	}
	merged, err := schema.MergeDefaults(opts)
	if err != nil {
		return nil, err
	}

	prefix := paths.Join(r.clusters, user, product, version)
	id, err := r.nextInstanceID(ctx, prefix)
	if err != nil {
		return nil, err
	}
	dn := fmt.Sprintf("%s/%d", prefix, id)

	rendered, err := template.Render(templateText, template.Bindings{
		Options:   merged,
		User:      user,
		Product:   product,
		Version:   version,
		ClusterDN: dn,
		ClusterID: paths.IDFromDN(dn),
	})
	if err != nil {
		return nil, err
	}

	doc, err := template.ParseDocument(rendered, templateType)
	if err != nil {
		return nil, err
	}
	flat, err := flatten.Flatten(doc, dn)
	if err != nil {
		return nil, err
	}

	if err := r.bulkWrite(ctx, flat); err != nil {
		return nil, err
	}
	return NewCluster(r.store, dn), nil
}

// Deinstantiate removes a cluster instance and everything below it. It is
// also the recovery path for partially materialised instances.
func (r *Registry) Deinstantiate(ctx context.Context, user, product, version string, id int) error {
	dn := paths.Join(r.clusters, user, product, version, strconv.Itoa(id))
	return r.store.Delete(ctx, dn, true)
}

// nextInstanceID allocates a new instance id under prefix: one greater
// than the highest existing sibling, or 1 for a fresh prefix. Sibling
// segments that are not decimal integers count as 0.
func (r *Registry) nextInstanceID(ctx context.Context, prefix string) (int, error) {
	tree, err := r.store.Recurse(ctx, prefix)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	max := 0
	for key := range tree {
		// Recurse matches raw prefixes; require a full segment boundary so
		// clusters/u/p/v2 keys do not leak into clusters/u/p/v.
		rest, ok := strings.CutPrefix(key, prefix+"/")
		if !ok {
			continue
		}
		seg, _, _ := strings.Cut(rest, "/")
		id, err := strconv.Atoi(seg)
		if err != nil {
			continue
		}
		if id > max {
			max = id
		}
	}
	return max + 1, nil
}

// bulkWrite issues the independent writes of a flattened document through a
// bounded worker pool and waits for all of them. On failure the completed
// writes are left in place.
func (r *Registry) bulkWrite(ctx context.Context, flat map[string]string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.writeLimit)
	for key, value := range flat {
		key, value := key, value
		g.Go(func() error {
			return r.store.Set(ctx, key, value)
		})
	}
	return g.Wait()
}
