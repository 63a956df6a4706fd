package registry

import (
	"context"
	"fmt"

	"github.com/bigdatacesga/config-registry/pkg/kv"
	"github.com/bigdatacesga/config-registry/pkg/paths"
)

// serviceFields is the fixed serializable attribute set of a Service.
// Product-specific scalars (heap, workers, ...) remain reachable through
// the generic Get.
var serviceFields = []string{"name", "status"}

// Service is a lazy view over a logical service at
// <cluster>/services/<name>.
type Service struct {
	entity
}

// NewService wraps a service DN without performing any I/O.
func NewService(store kv.Store, dn string) *Service {
	return &Service{entity: newEntity(store, dn)}
}

// Equal reports DN equality.
func (s *Service) Equal(other *Service) bool {
	return other != nil && s.dn == other.dn
}

// Cluster resolves the enclosing cluster proxy.
func (s *Service) Cluster() (*Cluster, error) {
	dn, ok := paths.ClusterDN(s.dn)
	if !ok {
		return nil, fmt.Errorf("%s: not inside a cluster subtree", s.dn)
	}
	return NewCluster(s.store, dn), nil
}

// Name reads the service name attribute.
func (s *Service) Name(ctx context.Context) (string, error) {
	return s.Get(ctx, "name")
}

// Status reads the service status attribute.
func (s *Service) Status(ctx context.Context) (string, error) {
	return s.Get(ctx, "status")
}

// SetStatus writes the service status attribute.
func (s *Service) SetStatus(ctx context.Context, status string) error {
	return s.Set(ctx, "status", status)
}

// Nodes dereferences the membership leaves under nodes/ into full Node
// proxies rooted at the enclosing cluster.
func (s *Service) Nodes(ctx context.Context) ([]*Node, error) {
	tree, err := s.store.Recurse(ctx, s.dn+"/nodes")
	if err != nil {
		return nil, err
	}
	clusterDN, ok := paths.ClusterDN(s.dn)
	if !ok {
		return nil, fmt.Errorf("%s: not inside a cluster subtree", s.dn)
	}

	nodes := make([]*Node, 0, len(tree))
	for key := range tree {
		if key == s.dn+"/nodes/" {
			continue
		}
		name := paths.LastSegment(key)
		nodes = append(nodes, NewNode(s.store, clusterDN+"/nodes/"+name))
	}
	sortByDN(nodes)
	return nodes, nil
}

// SetNodes replaces the membership subtree: the previous leaves are
// removed, then one empty-valued leaf is written per given node.
func (s *Service) SetNodes(ctx context.Context, nodes []*Node) error {
	if err := s.store.Delete(ctx, s.dn+"/nodes", true); err != nil {
		return err
	}
	for _, node := range nodes {
		key := s.dn + "/nodes/" + paths.LastSegment(node.DN())
		if err := s.store.Set(ctx, key, ""); err != nil {
			return err
		}
	}
	return nil
}

// ToMap serialises the fixed service attribute set.
func (s *Service) ToMap(ctx context.Context) (map[string]string, error) {
	return s.attrMap(ctx, serviceFields)
}
