package template

import (
	"fmt"

	"github.com/flosch/pongo2/v6"
)

func init() {
	// Option names carry dots (slaves.number), which the Django-style
	// variable lookup cannot address. The "option" filter does an exact
	// map lookup instead: {{ opts|option:"slaves.number" }}.
	pongo2.RegisterFilter("option", optionFilter)
}

func optionFilter(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	m, ok := in.Interface().(map[string]any)
	if !ok {
		return nil, &pongo2.Error{
			Sender:    "filter:option",
			OrigError: fmt.Errorf("option filter applied to %T, not a map", in.Interface()),
		}
	}
	return pongo2.AsValue(m[param.String()]), nil
}

// Bindings carries the variables exposed to a product template during
// rendering.
type Bindings struct {
	// Options is the merged option set (schema defaults + caller overrides).
	Options map[string]any

	// User is the owner of the new cluster instance.
	User string

	// Product and Version identify the blueprint being expanded.
	Product string
	Version string

	// ClusterDN is the instance DN the rendered tree will live under.
	ClusterDN string

	// ClusterID is ClusterDN after the id substitution (single-segment safe).
	ClusterID string
}

// Render expands a product template with the given bindings. Both variable
// naming generations are exposed so older stored templates keep working:
// {opts, user, product, version, clusterdn, clusterid} and the legacy
// {opts, user, servicename, version, instancedn, instancename}.
func Render(text string, b Bindings) (string, error) {
	tpl, err := pongo2.FromString(text)
	if err != nil {
		return "", fmt.Errorf("compiling template: %w", err)
	}

	out, err := tpl.Execute(pongo2.Context{
		"opts":      b.Options,
		"user":      b.User,
		"product":   b.Product,
		"version":   b.Version,
		"clusterdn": b.ClusterDN,
		"clusterid": b.ClusterID,
		// legacy names
		"servicename":  b.Product,
		"instancedn":   b.ClusterDN,
		"instancename": b.ClusterID,
	})
	if err != nil {
		return "", fmt.Errorf("rendering template: %w", err)
	}
	return out, nil
}
