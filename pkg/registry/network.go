package registry

import (
	"context"

	"github.com/bigdatacesga/config-registry/pkg/kv"
)

// networkFields is the fixed serializable attribute set of a Network.
var networkFields = []string{"name", "device", "bridge", "address", "netmask", "gateway"}

// Network is a scalar-only view over …/nodes/<node>/networks/<name>.
type Network struct {
	entity
}

// NewNetwork wraps a network DN without performing any I/O.
func NewNetwork(store kv.Store, dn string) *Network {
	return &Network{entity: newEntity(store, dn)}
}

// Equal reports DN equality.
func (n *Network) Equal(other *Network) bool {
	return other != nil && n.dn == other.dn
}

func (n *Network) Name(ctx context.Context) (string, error)    { return n.Get(ctx, "name") }
func (n *Network) Device(ctx context.Context) (string, error)  { return n.Get(ctx, "device") }
func (n *Network) Bridge(ctx context.Context) (string, error)  { return n.Get(ctx, "bridge") }
func (n *Network) Address(ctx context.Context) (string, error) { return n.Get(ctx, "address") }
func (n *Network) Netmask(ctx context.Context) (string, error) { return n.Get(ctx, "netmask") }
func (n *Network) Gateway(ctx context.Context) (string, error) { return n.Get(ctx, "gateway") }

// ToMap serialises the fixed network attribute set.
func (n *Network) ToMap(ctx context.Context) (map[string]string, error) {
	return n.attrMap(ctx, networkFields)
}
