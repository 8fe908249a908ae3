// Package cache implements the shredder cache: an in-memory,
// drive-partitioned routing layer in front of one DriveEraser per physical
// drive. The cache itself is not thread-safe; the coordinator holds the
// outer lock around every call.
package cache

import (
	"sync/atomic"

	"fileshredder_enterprise/internal/capability"
	"fileshredder_enterprise/internal/driveeraser"
	"fileshredder_enterprise/internal/fileeraser"
	"fileshredder_enterprise/internal/model"
)

// Cache routes submissions to the correct DriveEraser via a root->drive
// map, and tracks whether its contents currently reflect the persistent
// store.
type Cache struct {
	partitionToDrive map[string]int
	drives           map[int]*driveeraser.DriveEraser
	rootSize         int

	ready atomic.Bool
}

// Config bundles the per-drive dependencies the cache wires into every
// DriveEraser it constructs.
type Config struct {
	Method             fileeraser.Method
	VolumeOps          capability.VolumeOps
	Logger             capability.Logger
	NewEraser          driveeraser.NewEraserFunc
	MultithreadedErase bool
	NTFSErase          bool
}

// New enumerates partitions and constructs one DriveEraser per distinct
// drive index.
func New(partitions []model.PortablePartition, rootSize int, cfg Config) *Cache {
	c := &Cache{
		partitionToDrive: make(map[string]int),
		drives:           make(map[int]*driveeraser.DriveEraser),
		rootSize:         rootSize,
	}

	byDrive := make(map[int][]model.PortablePartition)
	for _, p := range partitions {
		c.partitionToDrive[p.Root] = p.DriveIndex
		byDrive[p.DriveIndex] = append(byDrive[p.DriveIndex], p)
	}

	for driveIndex, parts := range byDrive {
		isSSD := parts[0].IsSSD
		c.drives[driveIndex] = driveeraser.New(cfg.Method, isSSD, parts, driveeraser.Config{
			VolumeOps:          cfg.VolumeOps,
			Logger:             cfg.Logger,
			NewEraser:          cfg.NewEraser,
			MultithreadedErase: cfg.MultithreadedErase,
			NTFSErase:          cfg.NTFSErase,
		})
	}

	return c
}

func (c *Cache) root(path string) string {
	if len(path) < c.rootSize {
		return path
	}
	return path[:c.rootSize]
}

// Submit routes path to the drive eraser owning its root, dropping it
// silently if the root is unmanaged.
func (c *Cache) Submit(path string, entropy float64) {
	root := c.root(path)
	driveIndex, ok := c.partitionToDrive[root]
	if !ok {
		return
	}
	c.drives[driveIndex].Submit(root, path, entropy)
}

// Remove routes a removal the same way Submit routes an insertion.
func (c *Cache) Remove(path string) {
	root := c.root(path)
	driveIndex, ok := c.partitionToDrive[root]
	if !ok {
		return
	}
	c.drives[driveIndex].Remove(root, path)
}

// AlreadyExist reports whether path is present in its owning drive eraser.
func (c *Cache) AlreadyExist(path string) bool {
	root := c.root(path)
	driveIndex, ok := c.partitionToDrive[root]
	if !ok {
		return false
	}
	return c.drives[driveIndex].AlreadyExist(root, path)
}

// Clean clears every drive eraser and marks the cache stale.
func (c *Cache) Clean() {
	c.ready.Store(false)
	for _, d := range c.drives {
		d.Clean()
	}
}

// EraseFiles shreds every drive eraser's submission list, empties those
// lists, aggregates their results, then marks the cache stale.
func (c *Cache) EraseFiles() *driveeraser.ShredResult {
	result := &driveeraser.ShredResult{}
	for _, d := range c.drives {
		r := d.ShredFiles()
		d.Clean()
		result.FilesErased += r.FilesErased
		result.DirectoriesErased += r.DirectoriesErased
		result.BytesErased += r.BytesErased
		result.JournalsPurged += r.JournalsPurged
		result.Failures = append(result.Failures, r.Failures...)
	}
	c.ready.Store(false)
	return result
}

// IsReady reports whether the cache currently mirrors the persistent store.
func (c *Cache) IsReady() bool { return c.ready.Load() }

// SetReady sets the cache-coherence flag.
func (c *Cache) SetReady(ready bool) { c.ready.Store(ready) }

// FilesPrepared aggregates every drive eraser's prepared-files map.
func (c *Cache) FilesPrepared() map[string]float64 {
	out := make(map[string]float64)
	for _, d := range c.drives {
		for path, ent := range d.FilesPrepared() {
			out[path] = ent
		}
	}
	return out
}

// DirectoriesPrepared aggregates every drive eraser's prepared directories.
func (c *Cache) DirectoriesPrepared() []string {
	var out []string
	for _, d := range c.drives {
		out = append(out, d.DirectoriesPrepared()...)
	}
	return out
}
