package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/bigdatacesga/config-registry/pkg/kv"
	"github.com/bigdatacesga/config-registry/pkg/testutil"
)

func seeded(t *testing.T) (*kv.MemoryStore, *Cluster) {
	t.Helper()
	store := kv.NewMemoryStore()
	dn := testutil.SeedCluster(t, store)
	return store, NewCluster(store, dn)
}

// ── attribute access ─────────────────────────────────────────────────────────

func TestCluster_Status(t *testing.T) {
	_, cluster := seeded(t)
	got, err := cluster.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if got != "running" {
		t.Errorf("Status() = %q; want running", got)
	}
}

func TestCluster_AttributeRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, cluster := seeded(t)

	if err := cluster.SetStatus(ctx, "stopped"); err != nil {
		t.Fatalf("SetStatus() error: %v", err)
	}
	got, err := cluster.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if got != "stopped" {
		t.Errorf("Status() = %q; want stopped", got)
	}
}

func TestCluster_MissingAttribute(t *testing.T) {
	_, cluster := seeded(t)
	if _, err := cluster.Get(context.Background(), "nope"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("Get() error = %v; want ErrKeyNotFound", err)
	}
}

func TestCluster_GetDefault(t *testing.T) {
	_, cluster := seeded(t)
	got, err := cluster.GetDefault(context.Background(), "nope", "fallback")
	if err != nil {
		t.Fatalf("GetDefault() error: %v", err)
	}
	if got != "fallback" {
		t.Errorf("GetDefault() = %q; want fallback", got)
	}
}

func TestCluster_TrailingSlashStripped(t *testing.T) {
	store := kv.NewMemoryStore()
	c := NewCluster(store, "clusters/u/p/v/1/")
	if c.DN() != "clusters/u/p/v/1" {
		t.Errorf("DN() = %q", c.DN())
	}
}

// ── navigation ───────────────────────────────────────────────────────────────

func TestCluster_Nodes(t *testing.T) {
	_, cluster := seeded(t)
	nodes, err := cluster.Nodes(context.Background())
	if err != nil {
		t.Fatalf("Nodes() error: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("len(Nodes()) = %d; want 3", len(nodes))
	}
	// childDNs returns sorted DNs.
	if nodes[0].DN() != testutil.FixtureClusterDN+"/nodes/master0" {
		t.Errorf("nodes[0] = %s", nodes[0].DN())
	}
	if nodes[2].DN() != testutil.FixtureClusterDN+"/nodes/slave1" {
		t.Errorf("nodes[2] = %s", nodes[2].DN())
	}
}

func TestCluster_Services(t *testing.T) {
	_, cluster := seeded(t)
	services, err := cluster.Services(context.Background())
	if err != nil {
		t.Fatalf("Services() error: %v", err)
	}
	if len(services) != 2 {
		t.Fatalf("len(Services()) = %d; want 2", len(services))
	}
	if services[0].DN() != testutil.FixtureClusterDN+"/services/service0" {
		t.Errorf("services[0] = %s", services[0].DN())
	}
}

func TestCluster_SetAttributes(t *testing.T) {
	ctx := context.Background()
	_, cluster := seeded(t)

	err := cluster.SetAttributes(ctx, map[string]string{
		"status":        "deployed",
		"instance_name": "cdh-one",
	})
	if err != nil {
		t.Fatalf("SetAttributes() error: %v", err)
	}
	if got, _ := cluster.Get(ctx, "instance_name"); got != "cdh-one" {
		t.Errorf("instance_name = %q; want cdh-one", got)
	}
	// Existing attributes outside the map are untouched.
	if got, _ := cluster.Name(ctx); got != "jlopez-cdh-5.7.0-1" {
		t.Errorf("name = %q; want jlopez-cdh-5.7.0-1", got)
	}
}

func TestCluster_ToMap(t *testing.T) {
	_, cluster := seeded(t)
	m, err := cluster.ToMap(context.Background())
	if err != nil {
		t.Fatalf("ToMap() error: %v", err)
	}
	if m["status"] != "running" || m["name"] != "jlopez-cdh-5.7.0-1" {
		t.Errorf("ToMap() = %v", m)
	}
}

func TestCluster_Equal(t *testing.T) {
	store := kv.NewMemoryStore()
	a := NewCluster(store, "clusters/u/p/v/1")
	b := NewCluster(store, "clusters/u/p/v/1/")
	c := NewCluster(store, "clusters/u/p/v/2")
	if !a.Equal(b) {
		t.Error("a.Equal(b) = false; want true")
	}
	if a.Equal(c) {
		t.Error("a.Equal(c) = true; want false")
	}
	if a.Equal(nil) {
		t.Error("a.Equal(nil) = true; want false")
	}
}
