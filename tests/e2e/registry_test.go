package e2e

import (
	"context"
	"errors"
	"testing"

	"github.com/bigdatacesga/config-registry/pkg/kv"
	"github.com/bigdatacesga/config-registry/pkg/registry"
)

func TestE2E_ProductLifecycle(t *testing.T) {
	ctx := context.Background()
	h := NewE2EHarness(t)
	name, version := h.RegisterFixtureProduct()

	products, err := h.Registry.QueryProducts(ctx, "", "")
	if err != nil {
		t.Fatalf("QueryProducts() error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("len(QueryProducts()) = %d; want 1", len(products))
	}
	if got, _ := products[0].Name(ctx); got != name {
		t.Errorf("Name() = %q; want %q", got, name)
	}

	if err := h.Registry.Deregister(ctx, name, version); err != nil {
		t.Fatalf("Deregister() error: %v", err)
	}
	products, err = h.Registry.QueryProducts(ctx, "", "")
	if err != nil {
		t.Fatalf("QueryProducts() error: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("len(QueryProducts()) = %d after deregister; want 0", len(products))
	}
}

func TestE2E_ClusterLifecycle(t *testing.T) {
	ctx := context.Background()
	h := NewE2EHarness(t)
	name, version := h.RegisterFixtureProduct()

	cluster, err := h.Registry.Instantiate(ctx, "jlopez", name, version, map[string]any{
		"slaves.number": 4,
	})
	if err != nil {
		t.Fatalf("Instantiate() error: %v", err)
	}

	nodes, err := cluster.Nodes(ctx)
	if err != nil {
		t.Fatalf("Nodes() error: %v", err)
	}
	if len(nodes) != 4 {
		t.Errorf("len(Nodes()) = %d; want 4", len(nodes))
	}

	services, err := cluster.Services(ctx)
	if err != nil {
		t.Fatalf("Services() error: %v", err)
	}
	if len(services) != 2 {
		t.Errorf("len(Services()) = %d; want 2", len(services))
	}

	if err := cluster.SetStatus(ctx, "running"); err != nil {
		t.Fatalf("SetStatus() error: %v", err)
	}
	if got, _ := cluster.Status(ctx); got != "running" {
		t.Errorf("Status() = %q; want running", got)
	}

	if err := h.Registry.Deinstantiate(ctx, "jlopez", name, version, 1); err != nil {
		t.Fatalf("Deinstantiate() error: %v", err)
	}
	if _, err := h.Store.Recurse(ctx, cluster.DN()); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("cluster subtree still present: %v", err)
	}
}

func TestE2E_MonotonicIDsAcrossUsers(t *testing.T) {
	ctx := context.Background()
	h := NewE2EHarness(t)
	name, version := h.RegisterFixtureProduct()

	opts := map[string]any{"slaves.number": 2}
	first, err := h.Registry.Instantiate(ctx, "alice", name, version, opts)
	if err != nil {
		t.Fatalf("Instantiate() error: %v", err)
	}
	second, err := h.Registry.Instantiate(ctx, "alice", name, version, opts)
	if err != nil {
		t.Fatalf("Instantiate() error: %v", err)
	}
	if first.DN() == second.DN() {
		t.Errorf("two instances share DN %s", first.DN())
	}

	clusters, err := h.Registry.QueryClusters(ctx, "alice", "", "")
	if err != nil {
		t.Fatalf("QueryClusters() error: %v", err)
	}
	if len(clusters) != 2 {
		t.Errorf("len(QueryClusters(alice)) = %d; want 2", len(clusters))
	}
}

func TestE2E_NodeAttributes(t *testing.T) {
	ctx := context.Background()
	h := NewE2EHarness(t)
	name, version := h.RegisterFixtureProduct()

	cluster, err := h.Registry.Instantiate(ctx, "u", name, version, map[string]any{
		"slaves.number": 2,
	})
	if err != nil {
		t.Fatalf("Instantiate() error: %v", err)
	}

	node := registry.NewNode(h.Store, cluster.DN()+"/nodes/master0")
	if err := node.SetAddress(ctx, "10.112.251.101"); err != nil {
		t.Fatalf("SetAddress() error: %v", err)
	}
	if got, _ := node.Address(ctx); got != "10.112.251.101" {
		t.Errorf("Address() = %q", got)
	}

	if err := node.AddDisks(ctx, []registry.DiskSpec{
		{Name: "disk1", Type: "ssd", Mode: "rw", Origin: "/data/1/i1", Destination: "/data/1"},
	}); err != nil {
		t.Fatalf("AddDisks() error: %v", err)
	}
	disks, err := node.Disks(ctx)
	if err != nil {
		t.Fatalf("Disks() error: %v", err)
	}
	if len(disks) != 1 {
		t.Errorf("len(Disks()) = %d; want 1", len(disks))
	}
}
