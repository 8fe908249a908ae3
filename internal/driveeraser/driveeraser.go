// Package driveeraser implements the per-drive shredding pipeline: holds
// the submission lists for one physical drive, dispatches file and
// directory erasure (parallel on SSD, serial on HDD), and triggers the
// NTFS journal purge once a shred pass completes.
package driveeraser

import (
	"os"
	"sort"
	"sync"

	"fileshredder_enterprise/internal/capability"
	"fileshredder_enterprise/internal/entropy"
	"fileshredder_enterprise/internal/fileeraser"
	"fileshredder_enterprise/internal/mask"
	"fileshredder_enterprise/internal/model"
	"fileshredder_enterprise/internal/obfuscate"
)

// fileRecord is one entry of the per-root shredded-files multimap.
type fileRecord struct {
	path    string
	entropy float64
}

// NewEraserFunc constructs a fresh, unopened single-file eraser bound to a
// disk type. Exposed as a field so tests can substitute a fake.
type NewEraserFunc func(isSSD bool) fileeraser.Eraser

// DriveEraser holds one physical drive's submission lists and shreds them
// on command. All mutating operations serialize on a single mutex.
type DriveEraser struct {
	mu sync.Mutex

	partitions []model.PortablePartition
	method     fileeraser.Method
	isSSD      bool

	shreddedFiles map[string][]fileRecord // root -> files
	shreddedDirs  map[string][]string     // root -> directories

	mask *mask.Source

	multithreadedErase bool
	ntfsErase          bool

	volumeOps capability.VolumeOps
	logger    capability.Logger
	newEraser NewEraserFunc

	dispatch map[fileeraser.Method]strategyFunc
}

type strategyFunc func(e fileeraser.Eraser, m []byte, class model.Classification) error

// Config bundles the dependencies a DriveEraser needs beyond its partition
// list, method and disk type.
type Config struct {
	VolumeOps          capability.VolumeOps
	Logger             capability.Logger
	NewEraser          NewEraserFunc
	MultithreadedErase bool
	NTFSErase          bool
}

// New constructs a DriveEraser for one physical drive.
func New(method fileeraser.Method, isSSD bool, partitions []model.PortablePartition, cfg Config) *DriveEraser {
	newEraser := cfg.NewEraser
	if newEraser == nil {
		newEraser = func(ssd bool) fileeraser.Eraser { return fileeraser.NewNative(ssd) }
	}

	d := &DriveEraser{
		partitions:         partitions,
		method:             method,
		isSSD:              isSSD,
		shreddedFiles:      make(map[string][]fileRecord),
		shreddedDirs:       make(map[string][]string),
		mask:               mask.New(),
		multithreadedErase: cfg.MultithreadedErase,
		ntfsErase:          cfg.NTFSErase,
		volumeOps:          cfg.VolumeOps,
		logger:             cfg.Logger,
		newEraser:          newEraser,
	}

	d.dispatch = map[fileeraser.Method]strategyFunc{
		fileeraser.MethodSmart:    func(e fileeraser.Eraser, m []byte, c model.Classification) error { return e.EraseSmart(m, c) },
		fileeraser.MethodFull:     func(e fileeraser.Eraser, m []byte, c model.Classification) error { return e.EraseFull(m) },
		fileeraser.MethodRandom:   func(e fileeraser.Eraser, m []byte, c model.Classification) error { return e.EraseRandom(m) },
		fileeraser.MethodBeginEnd: func(e fileeraser.Eraser, m []byte, c model.Classification) error { return e.EraseBeginEnd(m) },
	}
	return d
}

// Submit registers a path under root, deduplicating against whatever list
// (files or directories) applies. Non-regular, non-directory paths are
// silently ignored.
func (d *DriveEraser) Submit(root, path string, ent float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		return
	}

	if info.IsDir() {
		d.submitDirLocked(root, path)
		return
	}
	if !info.Mode().IsRegular() {
		return
	}

	for _, rec := range d.shreddedFiles[root] {
		if rec.path == path {
			return
		}
	}
	d.shreddedFiles[root] = append(d.shreddedFiles[root], fileRecord{path: path, entropy: ent})
}

func (d *DriveEraser) submitDirLocked(root, path string) {
	for _, p := range d.shreddedDirs[root] {
		if p == path {
			return
		}
	}
	d.shreddedDirs[root] = append(d.shreddedDirs[root], path)
}

// Remove drops path from whichever list currently holds it.
func (d *DriveEraser) Remove(root, path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	files := d.shreddedFiles[root]
	for i, rec := range files {
		if rec.path == path {
			d.shreddedFiles[root] = append(files[:i], files[i+1:]...)
			return
		}
	}
	dirs := d.shreddedDirs[root]
	for i, p := range dirs {
		if p == path {
			d.shreddedDirs[root] = append(dirs[:i], dirs[i+1:]...)
			return
		}
	}
}

// AlreadyExist reports whether path is already held under root.
func (d *DriveEraser) AlreadyExist(root, path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, rec := range d.shreddedFiles[root] {
		if rec.path == path {
			return true
		}
	}
	for _, p := range d.shreddedDirs[root] {
		if p == path {
			return true
		}
	}
	return false
}

// Clean drops both lists.
func (d *DriveEraser) Clean() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shreddedFiles = make(map[string][]fileRecord)
	d.shreddedDirs = make(map[string][]string)
}

// FilesPrepared returns a snapshot of path -> entropy for all submitted files.
func (d *DriveEraser) FilesPrepared() map[string]float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]float64)
	for _, recs := range d.shreddedFiles {
		for _, r := range recs {
			out[r.path] = r.entropy
		}
	}
	return out
}

// DirectoriesPrepared returns a snapshot of all submitted directories.
func (d *DriveEraser) DirectoriesPrepared() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []string
	for _, dirs := range d.shreddedDirs {
		out = append(out, dirs...)
	}
	return out
}

// ShredResult summarizes one ShredFiles pass: how many files and
// directories were processed, how many bytes were overwritten, how many
// NTFS volumes were purged, and any per-item failures. Reported all the
// way up to whatever builds the run's audit trail.
type ShredResult struct {
	FilesErased       int
	DirectoriesErased int
	BytesErased       int64
	JournalsPurged    int
	Failures          []model.Failure
}

// shredAccumulator collects a ShredResult across however many goroutines
// a parallel pass fans out to.
type shredAccumulator struct {
	mu     sync.Mutex
	result ShredResult
}

func (a *shredAccumulator) addFile(bytes int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.FilesErased++
	a.result.BytesErased += bytes
}

func (a *shredAccumulator) addDirectory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.DirectoriesErased++
}

func (a *shredAccumulator) addJournalPurge() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.JournalsPurged++
}

func (a *shredAccumulator) addFailure(path string, kind model.FailureKind, note string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.Failures = append(a.result.Failures, model.Failure{Path: path, Kind: kind, Note: note})
}

// ShredFiles erases every submitted file, removes every submitted
// directory tree, then purges the NTFS journal of every affected root.
// Per-item failures are logged and collected into the returned result
// rather than aborting the pass.
func (d *DriveEraser) ShredFiles() *ShredResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	acc := &shredAccumulator{}

	roots := sortedKeys(d.shreddedFiles)
	d.shredEntries(roots, acc)

	dirRoots := sortedKeys(d.shreddedDirs)
	d.removeDirs(dirRoots, acc)

	purgeRoots := append([]string(nil), roots...)
	for _, r := range dirRoots {
		if _, ok := d.shreddedFiles[r]; !ok {
			purgeRoots = append(purgeRoots, r)
		}
	}
	sort.Strings(purgeRoots)
	d.purgeJournals(purgeRoots, acc)

	return &acc.result
}

func (d *DriveEraser) shredEntries(roots []string, acc *shredAccumulator) {
	parallel := d.isSSD && d.multithreadedErase

	if !parallel {
		for _, root := range roots {
			for _, rec := range d.shreddedFiles[root] {
				d.eraseFile(rec.path, rec.entropy, acc)
			}
		}
		return
	}

	var wg sync.WaitGroup
	for _, root := range roots {
		for _, rec := range d.shreddedFiles[root] {
			wg.Add(1)
			go func(path string, ent float64) {
				defer wg.Done()
				d.eraseFile(path, ent, acc)
			}(rec.path, rec.entropy)
		}
	}
	wg.Wait()
}

func (d *DriveEraser) removeDirs(roots []string, acc *shredAccumulator) {
	parallel := d.isSSD && d.multithreadedErase

	if !parallel {
		for _, root := range roots {
			for _, dir := range d.shreddedDirs[root] {
				d.removeDir(dir, acc)
			}
		}
		return
	}

	var wg sync.WaitGroup
	for _, root := range roots {
		for _, dir := range d.shreddedDirs[root] {
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				d.removeDir(path, acc)
			}(dir)
		}
	}
	wg.Wait()
}

func (d *DriveEraser) removeDir(path string, acc *shredAccumulator) {
	if err := os.RemoveAll(path); err != nil {
		if d.logger != nil {
			d.logger.Log("DEBUG", "directory removal failed", "path", path, "err", err)
		}
		acc.addFailure(path, model.FailureIO, err.Error())
		return
	}
	acc.addDirectory()
}

// eraseFile overwrites one file, constructing a fresh single-file eraser,
// then obfuscates its name. Zero-length files skip straight to name
// obfuscation, matching the source.
func (d *DriveEraser) eraseFile(path string, ent float64, acc *shredAccumulator) {
	info, err := os.Stat(path)
	if err != nil {
		if d.logger != nil {
			d.logger.Log("DEBUG", "stat failed before erase", "path", path, "err", err)
		}
		acc.addFailure(path, model.FailureIO, err.Error())
		return
	}
	if info.Size() == 0 {
		obfuscate.CheatFileNode(path)
		acc.addFile(0)
		return
	}

	class := entropy.Estimate(ent, info.Size())

	e := d.newEraser(d.isSSD)
	if err := e.Open(path); err != nil {
		if d.logger != nil {
			d.logger.Log("DEBUG", "open failed, skipping file", "path", path, "err", err)
		}
		acc.addFailure(path, model.FailureOpen, err.Error())
		return
	}

	strategy := d.dispatch[d.method]
	if err := strategy(e, d.mask.Sequence(), class); err != nil {
		if d.logger != nil {
			d.logger.Log("DEBUG", "erase failed, skipping obfuscation", "path", path, "err", err)
		}
		acc.addFailure(path, model.FailureIO, err.Error())
		e.Close()
		return
	}
	e.Close()

	obfuscate.CheatFileNode(path)
	acc.addFile(info.Size())
}

func (d *DriveEraser) purgeJournals(roots []string, acc *shredAccumulator) {
	if !d.ntfsErase || d.volumeOps == nil {
		return
	}
	for _, root := range roots {
		for _, p := range d.partitions {
			if p.Root == root && p.FilesystemName == "NTFS" {
				if d.volumeOps.CleanNTFSJournal(root) {
					acc.addJournalPurge()
				}
				break
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
