// Package e2e contains end-to-end tests against a real Consul agent.
// They are skipped unless CONSUL_HTTP_ADDR points at one, for example:
//
//	CONSUL_HTTP_ADDR=127.0.0.1:8500 go test ./tests/e2e/...
//
// Each test works under a unique key prefix and removes it on cleanup, so
// the suite is safe to run against a shared development agent.
package e2e

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"testing"

	"github.com/bigdatacesga/config-registry/pkg/kv"
	"github.com/bigdatacesga/config-registry/pkg/registry"
	"github.com/bigdatacesga/config-registry/pkg/testutil"
)

// E2EHarness connects a registry to a real Consul agent under a per-test
// key prefix.
type E2EHarness struct {
	T        *testing.T
	Store    kv.Store
	Registry *registry.Registry

	// Root is the unique key prefix all of this test's data lives under.
	Root string
}

// NewE2EHarness skips the test when no Consul agent is configured, otherwise
// it connects to it and registers cleanup of the test's key prefix.
func NewE2EHarness(t *testing.T) *E2EHarness {
	t.Helper()

	addr := os.Getenv("CONSUL_HTTP_ADDR")
	if addr == "" {
		t.Skip("CONSUL_HTTP_ADDR not set; skipping e2e test")
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}

	store, err := kv.NewConsulStore(addr + "/v1/kv")
	if err != nil {
		t.Fatalf("NewConsulStore() error: %v", err)
	}

	root := fmt.Sprintf("config-registry-e2e/%08x", rand.Uint32())
	reg := registry.New(store,
		registry.WithPrefixes(root+"/products", root+"/clusters"))

	t.Cleanup(func() {
		if err := store.Delete(context.Background(), root, true); err != nil {
			t.Logf("warning: cleanup of %s failed: %v", root, err)
		}
	})

	return &E2EHarness{
		T:        t,
		Store:    store,
		Registry: reg,
		Root:     root,
	}
}

// RegisterFixtureProduct registers the canonical test product under the
// harness prefix and returns its name and version.
func (h *E2EHarness) RegisterFixtureProduct() (string, string) {
	h.T.Helper()

	_, err := h.Registry.Register(context.Background(), registry.ProductSpec{
		Name:         "cdh",
		Version:      "5.7.0",
		Description:  "Cloudera Distribution of Hadoop",
		Template:     testutil.FixtureTemplateYAML,
		TemplateType: "yaml+jinja2",
		Options:      testutil.FixtureOptionsJSON,
	})
	if err != nil {
		h.T.Fatalf("Register() error: %v", err)
	}
	return "cdh", "5.7.0"
}
