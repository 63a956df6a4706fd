package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/bigdatacesga/config-registry/pkg/kv"
	"github.com/bigdatacesga/config-registry/pkg/testutil"
)

func queryFixture(t *testing.T) *Registry {
	t.Helper()
	ctx := context.Background()
	store := kv.NewMemoryStore()
	testutil.SeedProduct(t, store)
	store.Set(ctx, "products/mongodb/3.2/name", "mongodb")
	store.Set(ctx, "products/mongodb/3.2/version", "3.2")
	store.Set(ctx, "products/mongodb/3.4/name", "mongodb")

	r := New(store)
	opts := map[string]any{"slaves.number": 2}
	for _, u := range []string{"alice", "bob"} {
		if _, err := r.Instantiate(ctx, u, "cdh", "5.7.0", opts); err != nil {
			t.Fatalf("Instantiate(%s) error: %v", u, err)
		}
	}
	if _, err := r.Instantiate(ctx, "alice", "cdh", "5.7.0", opts); err != nil {
		t.Fatalf("Instantiate() error: %v", err)
	}
	return r
}

// ── QueryProducts ────────────────────────────────────────────────────────────

func TestQueryProducts_All(t *testing.T) {
	r := queryFixture(t)
	products, err := r.QueryProducts(context.Background(), "", "")
	if err != nil {
		t.Fatalf("QueryProducts() error: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("len(QueryProducts()) = %d; want 3", len(products))
	}
	if products[0].DN() != "products/cdh/5.7.0" {
		t.Errorf("products[0] = %s", products[0].DN())
	}
}

func TestQueryProducts_ByName(t *testing.T) {
	r := queryFixture(t)
	products, err := r.QueryProducts(context.Background(), "mongodb", "")
	if err != nil {
		t.Fatalf("QueryProducts() error: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("len(QueryProducts(mongodb)) = %d; want 2", len(products))
	}
}

func TestQueryProducts_ByNameAndVersion(t *testing.T) {
	r := queryFixture(t)
	products, err := r.QueryProducts(context.Background(), "mongodb", "3.2")
	if err != nil {
		t.Fatalf("QueryProducts() error: %v", err)
	}
	if len(products) != 1 || products[0].DN() != "products/mongodb/3.2" {
		t.Errorf("QueryProducts(mongodb, 3.2) = %v", products)
	}
}

func TestQueryProducts_FilterHole(t *testing.T) {
	r := queryFixture(t)
	if _, err := r.QueryProducts(context.Background(), "", "3.2"); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("QueryProducts() error = %v; want ErrInvalidFilter", err)
	}
}

// ── QueryClusters ────────────────────────────────────────────────────────────

func TestQueryClusters_All(t *testing.T) {
	r := queryFixture(t)
	clusters, err := r.QueryClusters(context.Background(), "", "", "")
	if err != nil {
		t.Fatalf("QueryClusters() error: %v", err)
	}
	if len(clusters) != 3 {
		t.Fatalf("len(QueryClusters()) = %d; want 3", len(clusters))
	}
}

func TestQueryClusters_ByUser(t *testing.T) {
	r := queryFixture(t)
	clusters, err := r.QueryClusters(context.Background(), "alice", "", "")
	if err != nil {
		t.Fatalf("QueryClusters() error: %v", err)
	}
	if len(clusters) != 2 {
		t.Fatalf("len(QueryClusters(alice)) = %d; want 2", len(clusters))
	}
	if clusters[0].DN() != "clusters/alice/cdh/5.7.0/1" {
		t.Errorf("clusters[0] = %s", clusters[0].DN())
	}
}

func TestQueryClusters_MissingPrefixIsEmpty(t *testing.T) {
	r := queryFixture(t)
	clusters, err := r.QueryClusters(context.Background(), "nobody", "", "")
	if err != nil {
		t.Fatalf("QueryClusters() error: %v", err)
	}
	if len(clusters) != 0 {
		t.Errorf("len(QueryClusters(nobody)) = %d; want 0", len(clusters))
	}
}

func TestQueryClusters_EmptyStoreIsEmpty(t *testing.T) {
	r := New(kv.NewMemoryStore())
	clusters, err := r.QueryClusters(context.Background(), "nobody", "", "")
	if err != nil {
		t.Fatalf("QueryClusters() error: %v", err)
	}
	if len(clusters) != 0 {
		t.Errorf("len(QueryClusters()) = %d; want 0", len(clusters))
	}
}

func TestQueryClusters_FilterHoles(t *testing.T) {
	r := queryFixture(t)
	ctx := context.Background()
	if _, err := r.QueryClusters(ctx, "", "cdh", ""); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("product without user: error = %v; want ErrInvalidFilter", err)
	}
	if _, err := r.QueryClusters(ctx, "alice", "", "5.7.0"); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("version without product: error = %v; want ErrInvalidFilter", err)
	}
}

func TestQueryClusters_UserSegmentBoundary(t *testing.T) {
	ctx := context.Background()
	r := queryFixture(t)
	// "alice" must not match an "alicex" sibling.
	r.Store().Set(ctx, "clusters/alicex/cdh/5.7.0/1/status", "running")

	clusters, err := r.QueryClusters(ctx, "alice", "", "")
	if err != nil {
		t.Fatalf("QueryClusters() error: %v", err)
	}
	if len(clusters) != 2 {
		t.Errorf("len(QueryClusters(alice)) = %d; want 2", len(clusters))
	}
}

// ── Register / Deregister ────────────────────────────────────────────────────

func TestRegisterAndDeregister(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	r := New(store)

	p, err := r.Register(ctx, ProductSpec{
		Name:         "mongodb",
		Version:      "3.2",
		Description:  "MongoDB replica set",
		Template:     "{}",
		TemplateType: "json+jinja2",
		Options:      `{"required": {}, "optional": {}, "advanced": {}}`,
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if p.DN() != "products/mongodb/3.2" {
		t.Errorf("DN() = %s", p.DN())
	}
	if got, _ := p.Name(ctx); got != "mongodb" {
		t.Errorf("Name() = %q", got)
	}

	if err := r.Deregister(ctx, "mongodb", "3.2"); err != nil {
		t.Fatalf("Deregister() error: %v", err)
	}
	if _, err := store.Recurse(ctx, "products/mongodb/3.2"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("product subtree still present: %v", err)
	}
}

func TestRegister_RejectsBadTemplateType(t *testing.T) {
	r := New(kv.NewMemoryStore())
	_, err := r.Register(context.Background(), ProductSpec{
		Name: "x", Version: "1", TemplateType: "ini+jinja2",
	})
	if err == nil {
		t.Error("Register() accepted an unknown template type")
	}
}

func TestRegister_RejectsBadOptionSchema(t *testing.T) {
	r := New(kv.NewMemoryStore())
	_, err := r.Register(context.Background(), ProductSpec{
		Name: "x", Version: "1", TemplateType: "json+jinja2", Options: "{not json",
	})
	if err == nil {
		t.Error("Register() accepted a malformed option schema")
	}
}
