package registry

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bigdatacesga/config-registry/pkg/kv"
	"github.com/bigdatacesga/config-registry/pkg/paths"
)

// nodeFields is the fixed serializable attribute set of a Node.
var nodeFields = []string{
	"name", "status", "cpu", "mem", "host", "id", "address",
	"docker_image", "docker_opts", "port", "clustername", "type",
}

// Node is a lazy view over a member host at <cluster>/nodes/<name>.
type Node struct {
	entity
}

// NewNode wraps a node DN without performing any I/O.
func NewNode(store kv.Store, dn string) *Node {
	return &Node{entity: newEntity(store, dn)}
}

// Equal reports DN equality.
func (n *Node) Equal(other *Node) bool {
	return other != nil && n.dn == other.dn
}

// Cluster resolves the enclosing cluster proxy.
func (n *Node) Cluster() (*Cluster, error) {
	dn, ok := paths.ClusterDN(n.dn)
	if !ok {
		return nil, fmt.Errorf("%s: not inside a cluster subtree", n.dn)
	}
	return NewCluster(n.store, dn), nil
}

// ── scalar attributes ────────────────────────────────────────────────────────

func (n *Node) Name(ctx context.Context) (string, error)   { return n.Get(ctx, "name") }
func (n *Node) Status(ctx context.Context) (string, error) { return n.Get(ctx, "status") }
func (n *Node) CPU(ctx context.Context) (string, error)    { return n.Get(ctx, "cpu") }
func (n *Node) Mem(ctx context.Context) (string, error)    { return n.Get(ctx, "mem") }
func (n *Node) Host(ctx context.Context) (string, error)   { return n.Get(ctx, "host") }
func (n *Node) ID(ctx context.Context) (string, error)     { return n.Get(ctx, "id") }

// Address reads the primary address assigned to the node.
func (n *Node) Address(ctx context.Context) (string, error) { return n.Get(ctx, "address") }

// DockerImage reads the container image the node runs.
func (n *Node) DockerImage(ctx context.Context) (string, error) { return n.Get(ctx, "docker_image") }

// DockerOpts reads extra container runtime options.
func (n *Node) DockerOpts(ctx context.Context) (string, error) { return n.Get(ctx, "docker_opts") }

func (n *Node) Port(ctx context.Context) (string, error)        { return n.Get(ctx, "port") }
func (n *Node) ClusterName(ctx context.Context) (string, error) { return n.Get(ctx, "clustername") }
func (n *Node) Type(ctx context.Context) (string, error)        { return n.Get(ctx, "type") }

func (n *Node) SetStatus(ctx context.Context, v string) error  { return n.Set(ctx, "status", v) }
func (n *Node) SetHost(ctx context.Context, v string) error    { return n.Set(ctx, "host", v) }
func (n *Node) SetID(ctx context.Context, v string) error      { return n.Set(ctx, "id", v) }
func (n *Node) SetAddress(ctx context.Context, v string) error { return n.Set(ctx, "address", v) }

// ── compound attributes ──────────────────────────────────────────────────────

// Tags reads the comma-joined tags attribute, trimming whitespace around
// each item.
func (n *Node) Tags(ctx context.Context) ([]string, error) {
	raw, err := n.Get(ctx, "tags")
	if err != nil {
		return nil, err
	}
	items := strings.Split(raw, ",")
	tags := make([]string, 0, len(items))
	for _, item := range items {
		tags = append(tags, strings.TrimSpace(item))
	}
	return tags, nil
}

// SetTags stores tags as a single comma-joined scalar.
func (n *Node) SetTags(ctx context.Context, tags []string) error {
	return n.Set(ctx, "tags", strings.Join(tags, ","))
}

// CheckPorts reads the comma-joined list of health-check ports.
func (n *Node) CheckPorts(ctx context.Context) ([]int, error) {
	raw, err := n.Get(ctx, "check_ports")
	if err != nil {
		return nil, err
	}
	items := strings.Split(raw, ",")
	ports := make([]int, 0, len(items))
	for _, item := range items {
		port, err := strconv.Atoi(strings.TrimSpace(item))
		if err != nil {
			return nil, fmt.Errorf("check_ports: %w", err)
		}
		ports = append(ports, port)
	}
	return ports, nil
}

// SetCheckPorts stores ports as a single comma-joined scalar.
func (n *Node) SetCheckPorts(ctx context.Context, ports []int) error {
	items := make([]string, 0, len(ports))
	for _, port := range ports {
		items = append(items, strconv.Itoa(port))
	}
	return n.Set(ctx, "check_ports", strings.Join(items, ","))
}

// ── services membership ──────────────────────────────────────────────────────

// Services dereferences the membership leaves under services/ into full
// Service proxies rooted at the enclosing cluster.
func (n *Node) Services(ctx context.Context) ([]*Service, error) {
	tree, err := n.store.Recurse(ctx, n.dn+"/services")
	if err != nil {
		return nil, err
	}
	clusterDN, ok := paths.ClusterDN(n.dn)
	if !ok {
		return nil, fmt.Errorf("%s: not inside a cluster subtree", n.dn)
	}

	services := make([]*Service, 0, len(tree))
	for key := range tree {
		if key == n.dn+"/services/" {
			continue
		}
		name := paths.LastSegment(key)
		services = append(services, NewService(n.store, clusterDN+"/services/"+name))
	}
	sortByDN(services)
	return services, nil
}

// SetServices replaces the membership subtree: the previous leaves are
// removed, then one empty-valued leaf is written per given service.
func (n *Node) SetServices(ctx context.Context, services []*Service) error {
	if err := n.store.Delete(ctx, n.dn+"/services", true); err != nil {
		return err
	}
	for _, service := range services {
		key := n.dn + "/services/" + paths.LastSegment(service.DN())
		if err := n.store.Set(ctx, key, ""); err != nil {
			return err
		}
	}
	return nil
}

// ── disks ────────────────────────────────────────────────────────────────────

// DiskSpec is the input shape for disk attachment.
type DiskSpec struct {
	Name        string
	Type        string
	Mode        string
	Origin      string
	Destination string
}

// Disks reconstructs the attached disks from the disks/ subtree.
func (n *Node) Disks(ctx context.Context) ([]*Disk, error) {
	dns, err := childDNs(ctx, n.store, n.dn+"/disks", paths.DiskDN)
	if err != nil {
		return nil, err
	}
	disks := make([]*Disk, 0, len(dns))
	for _, dn := range dns {
		disks = append(disks, NewDisk(n.store, dn))
	}
	return disks, nil
}

// SetDisks replaces the disks subtree with the given disks.
func (n *Node) SetDisks(ctx context.Context, disks []DiskSpec) error {
	if err := n.store.Delete(ctx, n.dn+"/disks", true); err != nil {
		return err
	}
	return n.AddDisks(ctx, disks)
}

// AddDisks writes disks without removing existing siblings, for
// incremental attachment.
func (n *Node) AddDisks(ctx context.Context, disks []DiskSpec) error {
	for _, disk := range disks {
		dn := n.dn + "/disks/" + disk.Name
		leaves := map[string]string{
			"name":        disk.Name,
			"type":        disk.Type,
			"mode":        disk.Mode,
			"origin":      disk.Origin,
			"destination": disk.Destination,
		}
		for leaf, value := range leaves {
			if err := n.store.Set(ctx, dn+"/"+leaf, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ── networks ─────────────────────────────────────────────────────────────────

// NetworkSpec is the input shape for network attachment.
type NetworkSpec struct {
	Name    string
	Device  string
	Bridge  string
	Address string
	Netmask string
	Gateway string
}

// Networks reconstructs the attached networks from the networks/ subtree.
func (n *Node) Networks(ctx context.Context) ([]*Network, error) {
	dns, err := childDNs(ctx, n.store, n.dn+"/networks", paths.NetworkDN)
	if err != nil {
		return nil, err
	}
	networks := make([]*Network, 0, len(dns))
	for _, dn := range dns {
		networks = append(networks, NewNetwork(n.store, dn))
	}
	return networks, nil
}

// SetNetworks replaces the networks subtree with the given networks.
func (n *Node) SetNetworks(ctx context.Context, networks []NetworkSpec) error {
	if err := n.store.Delete(ctx, n.dn+"/networks", true); err != nil {
		return err
	}
	return n.AddNetworks(ctx, networks)
}

// AddNetworks writes networks without removing existing siblings.
func (n *Node) AddNetworks(ctx context.Context, networks []NetworkSpec) error {
	for _, network := range networks {
		dn := n.dn + "/networks/" + network.Name
		leaves := map[string]string{
			"name":    network.Name,
			"device":  network.Device,
			"bridge":  network.Bridge,
			"address": network.Address,
			"netmask": network.Netmask,
			"gateway": network.Gateway,
		}
		for leaf, value := range leaves {
			if err := n.store.Set(ctx, dn+"/"+leaf, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ToMap serialises the fixed node attribute set.
func (n *Node) ToMap(ctx context.Context) (map[string]string, error) {
	return n.attrMap(ctx, nodeFields)
}
