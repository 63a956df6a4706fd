package registry

import (
	"context"

	"github.com/bigdatacesga/config-registry/pkg/kv"
	"github.com/bigdatacesga/config-registry/pkg/paths"
)

// clusterFields is the fixed serializable attribute set of a Cluster.
var clusterFields = []string{"name", "status"}

// Cluster is a lazy view over a materialised cluster instance at
// clusters/<user>/<product>/<version>/<id>.
type Cluster struct {
	entity
}

// NewCluster wraps a cluster DN without performing any I/O.
func NewCluster(store kv.Store, dn string) *Cluster {
	return &Cluster{entity: newEntity(store, dn)}
}

// Equal reports DN equality.
func (c *Cluster) Equal(other *Cluster) bool {
	return other != nil && c.dn == other.dn
}

// Name reads the cluster name attribute.
func (c *Cluster) Name(ctx context.Context) (string, error) {
	return c.Get(ctx, "name")
}

// Status reads the cluster status attribute.
func (c *Cluster) Status(ctx context.Context) (string, error) {
	return c.Get(ctx, "status")
}

// SetStatus writes the cluster status attribute.
func (c *Cluster) SetStatus(ctx context.Context, status string) error {
	return c.Set(ctx, "status", status)
}

// Nodes reconstructs the member nodes from the nodes/ subtree.
func (c *Cluster) Nodes(ctx context.Context) ([]*Node, error) {
	dns, err := childDNs(ctx, c.store, c.dn+"/nodes", paths.NodeDN)
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, len(dns))
	for _, dn := range dns {
		nodes = append(nodes, NewNode(c.store, dn))
	}
	return nodes, nil
}

// Services reconstructs the deployed services from the services/ subtree.
func (c *Cluster) Services(ctx context.Context) ([]*Service, error) {
	dns, err := childDNs(ctx, c.store, c.dn+"/services", paths.ServiceDN)
	if err != nil {
		return nil, err
	}
	services := make([]*Service, 0, len(dns))
	for _, dn := range dns {
		services = append(services, NewService(c.store, dn))
	}
	return services, nil
}

// SetAttributes bulk-writes scalar attributes at the top level of the
// cluster DN without touching anything already stored.
func (c *Cluster) SetAttributes(ctx context.Context, attrs map[string]string) error {
	for name, value := range attrs {
		if err := c.Set(ctx, name, value); err != nil {
			return err
		}
	}
	return nil
}

// ToMap serialises the fixed cluster attribute set.
func (c *Cluster) ToMap(ctx context.Context) (map[string]string, error) {
	return c.attrMap(ctx, clusterFields)
}
