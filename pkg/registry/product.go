package registry

import (
	"context"

	"github.com/bigdatacesga/config-registry/pkg/kv"
)

// productFields is the fixed serializable attribute set of a Product.
var productFields = []string{
	"name", "version", "description", "template", "templatetype",
	"options", "orquestrator",
}

// Product is a lazy view over a registered blueprint at
// products/<name>/<version>. Name and version are identity attributes
// encoded in the DN and therefore read-only.
type Product struct {
	entity
}

// NewProduct wraps a product DN without performing any I/O.
func NewProduct(store kv.Store, dn string) *Product {
	p := &Product{entity: newEntity(store, dn)}
	p.readOnly = map[string]bool{"name": true, "version": true}
	return p
}

// Equal reports DN equality.
func (p *Product) Equal(other *Product) bool {
	return other != nil && p.dn == other.dn
}

func (p *Product) Name(ctx context.Context) (string, error)    { return p.Get(ctx, "name") }
func (p *Product) Version(ctx context.Context) (string, error) { return p.Get(ctx, "version") }

// Description reads the human-readable product description.
func (p *Product) Description(ctx context.Context) (string, error) {
	return p.Get(ctx, "description")
}

// Template reads the opaque parameterised template text.
func (p *Product) Template(ctx context.Context) (string, error) {
	return p.Get(ctx, "template")
}

// TemplateType reads the template format tag (json+jinja2, yaml+jinja2).
func (p *Product) TemplateType(ctx context.Context) (string, error) {
	return p.Get(ctx, "templatetype")
}

// Options reads the JSON option schema text.
func (p *Product) Options(ctx context.Context) (string, error) {
	return p.Get(ctx, "options")
}

// Orquestrator reads the opaque lifecycle script payload.
func (p *Product) Orquestrator(ctx context.Context) (string, error) {
	return p.Get(ctx, "orquestrator")
}

// SetDescription updates the product description.
func (p *Product) SetDescription(ctx context.Context, v string) error {
	return p.Set(ctx, "description", v)
}

// ToMap serialises the fixed product attribute set.
func (p *Product) ToMap(ctx context.Context) (map[string]string, error) {
	return p.attrMap(ctx, productFields)
}
