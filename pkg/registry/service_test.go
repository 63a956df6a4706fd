package registry

import (
	"context"
	"testing"

	"github.com/bigdatacesga/config-registry/pkg/kv"
	"github.com/bigdatacesga/config-registry/pkg/testutil"
)

func seededService(t *testing.T, name string) (*kv.MemoryStore, *Service) {
	t.Helper()
	store := kv.NewMemoryStore()
	dn := testutil.SeedCluster(t, store)
	return store, NewService(store, dn+"/services/"+name)
}

func TestService_Attributes(t *testing.T) {
	ctx := context.Background()
	_, svc := seededService(t, "service0")

	if got, _ := svc.Status(ctx); got != "pending" {
		t.Errorf("Status() = %q", got)
	}
	// Product-specific scalars go through the generic read path.
	if got, _ := svc.Get(ctx, "heap"); got != "2048" {
		t.Errorf("Get(heap) = %q", got)
	}
	if err := svc.SetStatus(ctx, "running"); err != nil {
		t.Fatalf("SetStatus() error: %v", err)
	}
	if got, _ := svc.Status(ctx); got != "running" {
		t.Errorf("Status() = %q; want running", got)
	}
}

func TestService_Nodes_DereferencesPeers(t *testing.T) {
	_, svc := seededService(t, "service1")
	nodes, err := svc.Nodes(context.Background())
	if err != nil {
		t.Fatalf("Nodes() error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("len(Nodes()) = %d; want 2", len(nodes))
	}
	want := testutil.FixtureClusterDN + "/nodes/slave0"
	if nodes[0].DN() != want {
		t.Errorf("nodes[0].DN() = %s; want %s", nodes[0].DN(), want)
	}
}

func TestService_SetNodes(t *testing.T) {
	ctx := context.Background()
	store, svc := seededService(t, "service1")

	node := NewNode(store, testutil.FixtureClusterDN+"/nodes/master0")
	if err := svc.SetNodes(ctx, []*Node{node}); err != nil {
		t.Fatalf("SetNodes() error: %v", err)
	}

	tree, err := store.Recurse(ctx, svc.DN()+"/nodes")
	if err != nil {
		t.Fatalf("Recurse() error: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("membership subtree has %d keys; want 1", len(tree))
	}
	if _, ok := tree[svc.DN()+"/nodes/master0"]; !ok {
		t.Errorf("membership subtree = %v", tree)
	}
}

func TestService_Cluster(t *testing.T) {
	_, svc := seededService(t, "service0")
	cluster, err := svc.Cluster()
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	if cluster.DN() != testutil.FixtureClusterDN {
		t.Errorf("Cluster().DN() = %s", cluster.DN())
	}
}

func TestService_ToMap(t *testing.T) {
	_, svc := seededService(t, "service0")
	m, err := svc.ToMap(context.Background())
	if err != nil {
		t.Fatalf("ToMap() error: %v", err)
	}
	if m["name"] != "service0" || m["status"] != "pending" {
		t.Errorf("ToMap() = %v", m)
	}
}
