// Package integration provides a test framework for end-to-end integration
// tests of the registry pipeline against a fake Consul KV server.
package integration

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/bigdatacesga/config-registry/pkg/kv"
	"github.com/bigdatacesga/config-registry/pkg/registry"
	"github.com/bigdatacesga/config-registry/pkg/testutil"
)

// TestHarness wires a registry to an in-process fake Consul server so the
// whole pipeline, including the HTTP transport, runs inside the test.
type TestHarness struct {
	T        *testing.T
	Server   *fakeConsul
	Store    kv.Store
	Registry *registry.Registry
}

// NewTestHarness starts a fake Consul server and connects a registry to it.
// The server is shut down via t.Cleanup.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	server := newFakeConsul()
	t.Cleanup(server.Close)

	store, err := kv.NewConsulStore(server.URL() + "/v1/kv")
	if err != nil {
		t.Fatalf("NewConsulStore() error: %v", err)
	}

	return &TestHarness{
		T:        t,
		Server:   server,
		Store:    store,
		Registry: registry.New(store),
	}
}

// RegisterFixtureProduct registers the canonical test product through the
// real registration path and returns its name and version.
func (h *TestHarness) RegisterFixtureProduct() (string, string) {
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

// fakeConsul implements the subset of the Consul KV HTTP API the registry
// uses: GET (single key and ?recurse), PUT and DELETE (single and ?recurse).
type fakeConsul struct {
	mu     sync.RWMutex
	data   map[string]string
	server *httptest.Server
}

func newFakeConsul() *fakeConsul {
	f := &fakeConsul{data: make(map[string]string)}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *fakeConsul) URL() string { return f.server.URL }

func (f *fakeConsul) Close() { f.server.Close() }

// Len reports how many keys the server currently holds.
func (f *fakeConsul) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.data)
}

type kvPair struct {
	Key         string
	Value       string
	CreateIndex uint64
	ModifyIndex uint64
	LockIndex   uint64
	Flags       uint64
}

func (f *fakeConsul) handle(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/v1/kv/")
	recurse := r.URL.Query().Has("recurse")

	// The real agent always sends these; the client parses them.
	w.Header().Set("X-Consul-Index", "1")
	w.Header().Set("X-Consul-KnownLeader", "true")
	w.Header().Set("X-Consul-LastContact", "0")

	switch r.Method {
	case http.MethodGet:
		f.handleGet(w, key, recurse)
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.data[key] = string(body)
		f.mu.Unlock()
		w.Write([]byte("true"))
	case http.MethodDelete:
		f.mu.Lock()
		if recurse {
			for k := range f.data {
				if k == key || strings.HasPrefix(k, key) {
					delete(f.data, k)
				}
			}
		} else {
			delete(f.data, key)
		}
		f.mu.Unlock()
		w.Write([]byte("true"))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (f *fakeConsul) handleGet(w http.ResponseWriter, key string, recurse bool) {
	f.mu.RLock()
	var pairs []kvPair
	if recurse {
		// Consul matches on the raw string prefix, not path segments.
		for k, v := range f.data {
			if strings.HasPrefix(k, key) {
				pairs = append(pairs, encodePair(k, v))
			}
		}
	} else if v, ok := f.data[key]; ok {
		pairs = append(pairs, encodePair(key, v))
	}
	f.mu.RUnlock()

	if len(pairs) == 0 {
		http.Error(w, "", http.StatusNotFound)
		return
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pairs)
}

func encodePair(key, value string) kvPair {
	return kvPair{
		Key:         key,
		Value:       base64.StdEncoding.EncodeToString([]byte(value)),
		CreateIndex: 1,
		ModifyIndex: 1,
	}
}
