// Package reporting implements component O: a read-only post-erase
// summary, saved alongside the audit trail. It never changes erase
// semantics; it only observes what the engine already did.
package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"fileshredder_enterprise/internal/config"
	"fileshredder_enterprise/internal/driveeraser"
	"fileshredder_enterprise/internal/model"
)

// Report is the JSON summary produced after an erase_files pass.
type Report struct {
	RunID             string          `json:"run_id"`
	Timestamp         time.Time       `json:"timestamp"`
	Duration          string          `json:"duration"`
	FilesErased       int             `json:"files_erased"`
	DirectoriesErased int             `json:"directories_erased"`
	BytesProcessed    int64           `json:"bytes_processed"`
	NTFSVolumesPurged int             `json:"ntfs_volumes_purged"`
	Failures          []model.Failure `json:"failures,omitempty"`
	Config            ConfigSummary   `json:"config"`
}

// ConfigSummary is the subset of configuration worth recording per run,
// avoiding a brittle full-struct dump in the audit trail.
type ConfigSummary struct {
	ThreadNumber       int    `json:"thread_number"`
	MultithreadedErase bool   `json:"multithreaded_erase"`
	NTFSErase          bool   `json:"ntfs_erase"`
	Method             string `json:"method"`
}

// Builder accumulates counts during an erase pass for later summary.
type Builder struct {
	runID             string
	startTime         time.Time
	filesErased       int
	directoriesErased int
	bytesProcessed    int64
	ntfsVolumesPurged int
	failures          []model.Failure
}

// NewBuilder starts accumulating a report, timestamped at the call site
// and identified by a fresh random run ID.
func NewBuilder(startTime time.Time) *Builder {
	return &Builder{runID: uuid.NewString(), startTime: startTime}
}

// RecordShredResult folds one DriveEraser aggregate (as produced by
// Engine.EraseFiles) into the report being built.
func (b *Builder) RecordShredResult(result *driveeraser.ShredResult) {
	if result == nil {
		return
	}
	b.filesErased += result.FilesErased
	b.directoriesErased += result.DirectoriesErased
	b.bytesProcessed += result.BytesErased
	b.ntfsVolumesPurged += result.JournalsPurged
	b.failures = append(b.failures, result.Failures...)
}

// Finish produces the final Report bound to cfg's engine settings.
func (b *Builder) Finish(cfg *config.Config, endTime time.Time) *Report {
	return &Report{
		RunID:             b.runID,
		Timestamp:         b.startTime,
		Duration:          endTime.Sub(b.startTime).String(),
		FilesErased:       b.filesErased,
		DirectoriesErased: b.directoriesErased,
		BytesProcessed:    b.bytesProcessed,
		NTFSVolumesPurged: b.ntfsVolumesPurged,
		Failures:          b.failures,
		Config: ConfigSummary{
			ThreadNumber:       cfg.Engine.ThreadNumber,
			MultithreadedErase: cfg.Engine.MultithreadedErase,
			NTFSErase:          cfg.Engine.NTFSErase,
			Method:             cfg.Engine.Method,
		},
	}
}

// Save writes report as indented JSON under cfg.Reporting.LocalPath,
// doing nothing if reporting is disabled.
func Save(report *Report, cfg *config.Config) error {
	if !cfg.Reporting.Enabled {
		return nil
	}

	if err := os.MkdirAll(cfg.Reporting.LocalPath, 0o755); err != nil {
		return fmt.Errorf("reporting: create directory: %w", err)
	}

	name := fmt.Sprintf("erase_report_%s.json", report.Timestamp.Format("20060102_150405"))
	path := filepath.Join(cfg.Reporting.LocalPath, name)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("reporting: marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("reporting: write %s: %w", path, err)
	}
	return nil
}
