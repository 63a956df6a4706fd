// Package testutil provides shared fixtures for registry tests: a canonical
// pre-materialised cluster tree and a registered product blueprint.
package testutil

import (
	"context"
	"testing"

	"github.com/bigdatacesga/config-registry/pkg/kv"
)

// FixtureClusterDN is the DN of the cluster seeded by SeedCluster.
const FixtureClusterDN = "clusters/jlopez/cdh/5.7.0/1"

// FixtureOptionsJSON is the option schema of the product seeded by
// SeedProduct.
const FixtureOptionsJSON = `{
	"required": {"slaves.number": 4},
	"optional": {"slaves.cpu": 2, "slaves.mem": 2048},
	"advanced": {"datanode.heap": 1024},
	"descriptions": {"slaves.number": "number of slave nodes"}
}`

// FixtureTemplateYAML renders two master nodes, two slave nodes and two
// services from the option set.
const FixtureTemplateYAML = `name: {{ user }}-{{ product }}-{{ version }}
status: pending
nodes:
  master0:
    name: master0
    type: docker
    status: pending
    clustername: {{ clusterid }}
    cpu: 2
    mem: 4096
    services:
      - nameservice
      - dataservice
  master1:
    name: master1
    type: docker
    status: pending
    clustername: {{ clusterid }}
    cpu: 2
    mem: 4096
    services:
      - nameservice
  slave0:
    name: slave0
    type: docker
    status: pending
    clustername: {{ clusterid }}
    cpu: {{ opts|option:"slaves.cpu" }}
    mem: {{ opts|option:"slaves.mem" }}
    services:
      - dataservice
  slave1:
    name: slave1
    type: docker
    status: pending
    clustername: {{ clusterid }}
    cpu: {{ opts|option:"slaves.cpu" }}
    mem: {{ opts|option:"slaves.mem" }}
    services:
      - dataservice
services:
  nameservice:
    name: nameservice
    status: pending
    heap: {{ opts|option:"datanode.heap" }}
    nodes:
      - master0
      - master1
  dataservice:
    name: dataservice
    status: pending
    heap: {{ opts|option:"datanode.heap" }}
    nodes:
      - slave0
      - slave1
`

// SeedCluster writes the canonical cluster tree into store and returns its
// DN. The shape mirrors a small CDH deployment: one master, two slaves,
// two services with symmetric membership leaves.
func SeedCluster(t *testing.T, store kv.Store) string {
	t.Helper()

	leaves := map[string]string{
		"name":   "jlopez-cdh-5.7.0-1",
		"status": "running",

		"nodes/master0/name":         "master0.local",
		"nodes/master0/status":       "pending",
		"nodes/master0/cpu":          "1",
		"nodes/master0/mem":          "2048",
		"nodes/master0/host":         "",
		"nodes/master0/id":           "",
		"nodes/master0/address":      "",
		"nodes/master0/docker_image": "cdh:5.7.0",
		"nodes/master0/docker_opts":  "--privileged",
		"nodes/master0/port":         "22",
		"nodes/master0/clustername":  "jlopez-cdh-5.7.0-1",
		"nodes/master0/type":         "docker",
		"nodes/master0/tags":         "master, namenode",
		"nodes/master0/check_ports":  "8080,8443",

		"nodes/master0/services/service0": "",
		"nodes/master0/services/service1": "",

		"nodes/master0/disks/disk1/name":        "disk1",
		"nodes/master0/disks/disk1/type":        "sata",
		"nodes/master0/disks/disk1/mode":        "rw",
		"nodes/master0/disks/disk1/origin":      "/data/1/instance-jlopez-cdh-5.7.0-1",
		"nodes/master0/disks/disk1/destination": "/data/1",
		"nodes/master0/disks/disk2/name":        "disk2",
		"nodes/master0/disks/disk2/type":        "sata",
		"nodes/master0/disks/disk2/mode":        "rw",
		"nodes/master0/disks/disk2/origin":      "/data/2/instance-jlopez-cdh-5.7.0-1",
		"nodes/master0/disks/disk2/destination": "/data/2",

		"nodes/master0/networks/eth0/name":    "eth0",
		"nodes/master0/networks/eth0/device":  "eth0",
		"nodes/master0/networks/eth0/bridge":  "virbrPRIVATE",
		"nodes/master0/networks/eth0/address": "10.112.251.101",
		"nodes/master0/networks/eth0/netmask": "16",
		"nodes/master0/networks/eth0/gateway": "10.112.0.1",

		"nodes/slave0/name":              "slave0.local",
		"nodes/slave0/status":            "pending",
		"nodes/slave0/services/service1": "",
		"nodes/slave1/name":              "slave1.local",
		"nodes/slave1/status":            "deployed",
		"nodes/slave1/id":                "1a2b3c4e",
		"nodes/slave1/address":           "10.112.200.101",
		"nodes/slave1/host":              "c13-1.local",
		"nodes/slave1/services/service1": "",

		"services/service0/name":          "service0",
		"services/service0/status":        "pending",
		"services/service0/heap":          "2048",
		"services/service0/workers":       "11",
		"services/service0/nodes/master0": "",

		"services/service1/name":         "service1",
		"services/service1/status":       "pending",
		"services/service1/heap":         "2048",
		"services/service1/nodes/slave0": "",
		"services/service1/nodes/slave1": "",
	}

	ctx := context.Background()
	for key, value := range leaves {
		if err := store.Set(ctx, FixtureClusterDN+"/"+key, value); err != nil {
			t.Fatalf("seeding %s: %v", key, err)
		}
	}
	return FixtureClusterDN
}

// SeedProduct registers the canonical cdh/5.7.0 product blueprint directly
// through the store and returns its (name, version).
func SeedProduct(t *testing.T, store kv.Store) (string, string) {
	t.Helper()

	leaves := map[string]string{
		"name":         "cdh",
		"version":      "5.7.0",
		"description":  "Cloudera CDH cluster",
		"template":     FixtureTemplateYAML,
		"templatetype": "yaml+jinja2",
		"options":      FixtureOptionsJSON,
		"orquestrator": "#!/bin/sh\nexit 0\n",
	}

	ctx := context.Background()
	for key, value := range leaves {
		if err := store.Set(ctx, "products/cdh/5.7.0/"+key, value); err != nil {
			t.Fatalf("seeding product %s: %v", key, err)
		}
	}
	return "cdh", "5.7.0"
}
