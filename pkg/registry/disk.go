package registry

import (
	"context"

	"github.com/bigdatacesga/config-registry/pkg/kv"
)

// diskFields is the fixed serializable attribute set of a Disk.
var diskFields = []string{"name", "type", "mode", "origin", "destination"}

// Disk is a scalar-only view over …/nodes/<node>/disks/<name>.
type Disk struct {
	entity
}

// NewDisk wraps a disk DN without performing any I/O.
func NewDisk(store kv.Store, dn string) *Disk {
	return &Disk{entity: newEntity(store, dn)}
}

// Equal reports DN equality.
func (d *Disk) Equal(other *Disk) bool {
	return other != nil && d.dn == other.dn
}

func (d *Disk) Name(ctx context.Context) (string, error) { return d.Get(ctx, "name") }
func (d *Disk) Type(ctx context.Context) (string, error) { return d.Get(ctx, "type") }
func (d *Disk) Mode(ctx context.Context) (string, error) { return d.Get(ctx, "mode") }

// Origin reads the host path backing the disk.
func (d *Disk) Origin(ctx context.Context) (string, error) { return d.Get(ctx, "origin") }

// Destination reads the mount point inside the node.
func (d *Disk) Destination(ctx context.Context) (string, error) { return d.Get(ctx, "destination") }

// ToMap serialises the fixed disk attribute set.
func (d *Disk) ToMap(ctx context.Context) (map[string]string, error) {
	return d.attrMap(ctx, diskFields)
}
