// Package engine implements the shredding coordinator: submission,
// removal, cache lifecycle, entropy scheduling and the top-level
// erase_files pass. It is the sole owner of the entropy worker pool, the
// persistent store handle and the in-memory cache.
package engine

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fileshredder_enterprise/internal/cache"
	"fileshredder_enterprise/internal/capability"
	"fileshredder_enterprise/internal/driveeraser"
	"fileshredder_enterprise/internal/entropy"
	"fileshredder_enterprise/internal/fileeraser"
	"fileshredder_enterprise/internal/hashkey"
	"fileshredder_enterprise/internal/model"
)

// statKind reports whether path names a regular file, a directory, or
// neither (including nonexistent paths).
func statKind(path string) (isFile, isDir bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false, err
	}
	if info.IsDir() {
		return false, true, nil
	}
	return info.Mode().IsRegular(), false, nil
}

// Config bundles the settings spec.md §6 enumerates for the coordinator.
type Config struct {
	// ThreadNumber sizes the entropy worker pool. 0 means hardware
	// concurrency.
	ThreadNumber int
	// MultithreadedErase enables per-file goroutine fan-out during
	// shredding on SSD drives.
	MultithreadedErase bool
	// NTFSErase enables the post-shred USN journal purge.
	NTFSErase bool
	// Method selects the overwrite strategy every drive eraser dispatches.
	Method fileeraser.Method
}

// Deps bundles the external collaborators the engine never implements
// itself.
type Deps struct {
	Store     capability.WorkListStore
	Hasher    hashkey.Hasher
	Partition capability.PartitionInfoProvider
	VolumeOps capability.VolumeOps
	Logger    capability.Logger
	NewEraser driveeraser.NewEraserFunc
}

// Engine is the shredding coordinator. It is not a process-wide singleton:
// callers construct one per lifecycle (typically once per process, but
// tests may hold several independent instances).
type Engine struct {
	cfg  Config
	deps Deps

	mu    sync.Mutex // not recursive: taken once per entry point (and by registerSubmission/updateEntropy); *Locked helpers assume it is held
	cache *cache.Cache

	interrupt *entropy.Interrupt
	pool      *workerPool
}

// New constructs an Engine bound to the given configuration and
// collaborators. The partition set and cache are built eagerly; a failure
// to enumerate partitions is not fatal, it simply leaves the cache empty.
func New(cfg Config, deps Deps) (*Engine, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("engine: store dependency is required")
	}
	if deps.Hasher == nil {
		deps.Hasher = hashkey.XXHash{}
	}

	threads := cfg.ThreadNumber
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	e := &Engine{
		cfg:       cfg,
		deps:      deps,
		interrupt: &entropy.Interrupt{},
		pool:      newWorkerPool(threads),
	}

	if err := e.rebuildCache(); err != nil {
		if deps.Logger != nil {
			deps.Logger.Log("WARN", "initial partition enumeration failed, cache starts empty", "err", err)
		}
	}

	return e, nil
}

func (e *Engine) rebuildCache() error {
	var partitions []model.PortablePartition
	var enumErr error
	rootSize := 3
	if e.deps.Partition != nil {
		rootSize = e.deps.Partition.RootStringSize()
		parts, err := e.deps.Partition.Partitions()
		if err != nil {
			enumErr = err
		} else {
			partitions = parts
		}
	}

	e.cache = cache.New(partitions, rootSize, cache.Config{
		Method:             e.cfg.Method,
		VolumeOps:          e.deps.VolumeOps,
		Logger:             e.deps.Logger,
		NewEraser:          e.deps.NewEraser,
		MultithreadedErase: e.cfg.MultithreadedErase,
		NTFSErase:          e.cfg.NTFSErase,
	})
	return enumErr
}

// canonicalPath upper-cases path on Windows, where the filesystem is
// case-insensitive, and returns it unchanged on other platforms.
func canonicalPath(path string) string {
	if runtime.GOOS == "windows" {
		return model.CanonicalPath(path)
	}
	return path
}

func (e *Engine) log(level, msg string, fields ...interface{}) {
	if e.deps.Logger != nil {
		e.deps.Logger.Log(level, msg, fields...)
	}
}

// Submit inserts path into the work list and enqueues entropy computation.
// The path is canonicalized (upper-cased on Windows) before hashing and
// cache lookup. If noInsert
// is true, nothing is written to the store or cache; only entropy work is
// (re-)enqueued for an existing record — used to replay computation after
// a crash without re-inserting.
func (e *Engine) Submit(path string, systemAdded, noInsert bool, cb capability.ProgressCallback) error {
	isFile, isDir, err := statKind(path)
	if err != nil || (!isFile && !isDir) {
		return fmt.Errorf("engine: invalid path %q", path)
	}

	canonical := canonicalPath(path)
	key := model.FileKey(e.deps.Hasher.Hash(canonical))

	if err := e.registerSubmission(canonical, key, systemAdded, isFile, noInsert); err != nil {
		return err
	}

	// pool.enqueue blocks once the pool is saturated, and every worker
	// only frees its slot by locking e.mu as the last step of
	// updateEntropy. Calling it with e.mu still held would deadlock the
	// pool against itself, so e.mu must already be released here.
	e.pool.enqueue(func(ctx context.Context) {
		e.updateEntropy(key, canonical, cb)
	})
	return nil
}

func (e *Engine) registerSubmission(canonical string, key model.FileKey, systemAdded, isFile, noInsert bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if noInsert {
		return nil
	}

	if e.cache.IsReady() && e.cache.AlreadyExist(canonical) {
		e.log("DEBUG", "submit rejected, already present", "path", canonical)
		return fmt.Errorf("engine: %q already present", canonical)
	}

	flags := model.FileFlags(0).WithSystemAdded(systemAdded).WithIsFile(isFile)
	if err := e.deps.Store.Insert(key, canonical, flags); err != nil {
		e.log("ERROR", "store insert failed", "path", canonical, "err", err)
		return fmt.Errorf("engine: insert %q: %w", canonical, err)
	}
	e.cache.Submit(canonical, model.UnknownEntropy)
	return nil
}

// Remove deletes path from the store and the cache.
func (e *Engine) Remove(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	canonical := canonicalPath(path)
	key := model.FileKey(e.deps.Hasher.Hash(canonical))

	if err := e.deps.Store.Delete(key); err != nil {
		e.log("ERROR", "store delete failed", "path", canonical, "err", err)
		return fmt.Errorf("engine: delete %q: %w", canonical, err)
	}
	e.cache.Remove(canonical)
	return nil
}

// Clean drops every row of the work list and marks the cache stale.
func (e *Engine) Clean() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.deps.Store.DropTable(); err != nil {
		e.log("ERROR", "drop table failed", "err", err)
		return fmt.Errorf("engine: drop table: %w", err)
	}
	e.cache.Clean()
	return nil
}

// CleanUserFiles drops rows whose SystemAdded bit is clear and marks the
// cache stale.
func (e *Engine) CleanUserFiles() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.deps.Store.DeleteUserRows(); err != nil {
		e.log("ERROR", "delete user rows failed", "err", err)
		return fmt.Errorf("engine: delete user rows: %w", err)
	}
	e.cache.Clean()
	return nil
}

// EraseFiles interrupts pending entropy work, ensures the cache is
// coherent with the store, shreds every drive eraser's submission list,
// then drops the work-list table. Per-file/per-directory failures are
// logged inside the drive eraser and also collected into the returned
// result rather than aborting the pass.
func (e *Engine) EraseFiles() (*driveeraser.ShredResult, error) {
	e.InterruptChecks()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cache.IsReady() {
		if err := e.readTableLocked(); err != nil {
			return nil, err
		}
	}

	result := e.cache.EraseFiles()

	if err := e.deps.Store.DropTable(); err != nil {
		e.log("ERROR", "drop table after erase failed", "err", err)
		return result, fmt.Errorf("engine: drop table: %w", err)
	}
	return result, nil
}

// InterruptChecks raises the entropy interrupt flag, blocks until the pool
// drains, then lowers the flag again. It does not stop concurrent Submit
// calls from enqueueing new entropy tasks while it waits.
func (e *Engine) InterruptChecks() {
	e.interrupt.Set()
	e.pool.drain()
	for e.pool.busy() {
		time.Sleep(time.Millisecond)
	}
	e.interrupt.Clear()
}

// ReadTable reads the whole work list from the store, re-submits every
// record to the cache and marks the cache coherent.
func (e *Engine) ReadTable() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readTableLocked()
}

func (e *Engine) readTableLocked() error {
	records, err := e.deps.Store.ReadAll()
	if err != nil {
		e.log("ERROR", "read table failed", "err", err)
		return fmt.Errorf("engine: read table: %w", err)
	}

	e.cache.Clean()
	for _, rec := range records {
		e.cache.Submit(rec.Path, rec.Entropy)
	}
	e.cache.SetReady(true)
	return nil
}

// updateEntropy computes fresh entropy for path, writes it back to the
// store, runs the callback's Cleanup, and marks the cache stale. Run on
// the entropy worker pool; cancellable via the shared interrupt flag.
func (e *Engine) updateEntropy(key model.FileKey, path string, cb capability.ProgressCallback) {
	checker := entropy.New(e.interrupt, cb)
	value := checker.FileEntropy(path)

	if err := e.deps.Store.UpdateEntropy(key, value); err != nil {
		e.log("ERROR", "update entropy failed", "path", path, "err", err)
	}
	if cb != nil {
		cb.Cleanup()
	}

	e.mu.Lock()
	e.cache.SetReady(false)
	e.mu.Unlock()
}

// FilesPrepared returns every file currently staged for shredding.
func (e *Engine) FilesPrepared() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.FilesPrepared()
}

// DirectoriesPrepared returns every directory currently staged for
// removal.
func (e *Engine) DirectoriesPrepared() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.DirectoriesPrepared()
}

// workerPool is the bounded entropy worker pool: an errgroup with its
// concurrency capped to thread_number via SetLimit, so enqueue blocks
// once the pool is saturated rather than spawning unbounded goroutines.
type workerPool struct {
	mu   sync.Mutex
	g    *errgroup.Group
	live int
}

func newWorkerPool(size int) *workerPool {
	if size < 1 {
		size = 1
	}
	g := &errgroup.Group{}
	g.SetLimit(size)
	return &workerPool{g: g}
}

func (p *workerPool) enqueue(task func(ctx context.Context)) {
	p.mu.Lock()
	p.live++
	p.mu.Unlock()

	p.g.Go(func() error {
		defer func() {
			p.mu.Lock()
			p.live--
			p.mu.Unlock()
		}()
		task(context.Background())
		return nil
	})
}

// drain blocks until every currently enqueued task has finished.
func (p *workerPool) drain() { p.g.Wait() }

func (p *workerPool) busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live > 0
}
