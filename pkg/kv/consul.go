package kv

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultEndpoint is the endpoint used when none is configured.
const DefaultEndpoint = "http://127.0.0.1:8500/v1/kv"

// ConsulStore implements Store on top of the Consul KV HTTP API. Transient
// transport failures are retried by the underlying HTTP client; application
// failures (missing keys) are not.
type ConsulStore struct {
	kv *consulapi.KV
}

// NewConsulStore connects to a Consul agent. The endpoint has the shape
// http://<host>:<port>/v1/kv; the path part is accepted for compatibility
// with stored connection strings and ignored.
func NewConsulStore(endpoint string) (*ConsulStore, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = 3
	retry.Logger = nil

	client, err := consulapi.NewClient(&consulapi.Config{
		Address:    u.Host,
		Scheme:     u.Scheme,
		HttpClient: retry.StandardClient(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating consul client: %w", err)
	}

	return &ConsulStore{kv: client.KV()}, nil
}

// Get implements Store.
func (s *ConsulStore) Get(ctx context.Context, key string) (string, error) {
	pair, _, err := s.kv.Get(normalize(key), queryOpts(ctx))
	if err != nil {
		return "", fmt.Errorf("consul get %s: %w", key, err)
	}
	if pair == nil {
		return "", fmt.Errorf("%s: %w", key, ErrKeyNotFound)
	}
	return string(pair.Value), nil
}

// Set implements Store.
func (s *ConsulStore) Set(ctx context.Context, key, value string) error {
	pair := &consulapi.KVPair{Key: normalize(key), Value: []byte(value)}
	if _, err := s.kv.Put(pair, writeOpts(ctx)); err != nil {
		return fmt.Errorf("consul put %s: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (s *ConsulStore) Delete(ctx context.Context, key string, recursive bool) error {
	var err error
	if recursive {
		_, err = s.kv.DeleteTree(normalize(key), writeOpts(ctx))
	} else {
		_, err = s.kv.Delete(normalize(key), writeOpts(ctx))
	}
	if err != nil {
		return fmt.Errorf("consul delete %s: %w", key, err)
	}
	return nil
}

// Recurse implements Store.
func (s *ConsulStore) Recurse(ctx context.Context, prefix string) (map[string]string, error) {
	pairs, _, err := s.kv.List(normalize(prefix), queryOpts(ctx))
	if err != nil {
		return nil, fmt.Errorf("consul list %s: %w", prefix, err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%s: %w", prefix, ErrKeyNotFound)
	}

	subtree := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		subtree[pair.Key] = string(pair.Value)
	}
	return subtree, nil
}

// Consul keys carry no leading slash.
func normalize(key string) string {
	return strings.TrimLeft(key, "/")
}

func queryOpts(ctx context.Context) *consulapi.QueryOptions {
	return (&consulapi.QueryOptions{}).WithContext(ctx)
}

func writeOpts(ctx context.Context) *consulapi.WriteOptions {
	return (&consulapi.WriteOptions{}).WithContext(ctx)
}
