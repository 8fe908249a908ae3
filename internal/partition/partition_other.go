//go:build !windows

package partition

import "fileshredder_enterprise/internal/model"

// Provider is the non-Windows PartitionInfoProvider: it reports no
// managed partitions, matching the spec's documented Windows-only scope.
type Provider struct{}

// New returns the non-Windows PartitionInfoProvider stand-in.
func New() *Provider { return &Provider{} }

func (Provider) RootStringSize() int { return RootSize }

func (Provider) Partitions() ([]model.PortablePartition, error) {
	return nil, nil
}
