package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fileshredder_enterprise/internal/config"
	"fileshredder_enterprise/internal/driveeraser"
	"fileshredder_enterprise/internal/model"
)

func TestBuilderFinishTalliesCounts(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Second)

	b := NewBuilder(start)
	b.RecordShredResult(&driveeraser.ShredResult{
		FilesErased:       2,
		DirectoriesErased: 1,
		BytesErased:       300,
		JournalsPurged:    1,
		Failures: []model.Failure{
			{Path: `C:\LOCKED.TXT`, Kind: model.FailureOpen, Note: "access denied"},
		},
	})

	cfg := config.Default()
	cfg.Engine.ThreadNumber = 4
	cfg.Engine.Method = "smart"

	report := b.Finish(cfg, end)

	if report.FilesErased != 2 {
		t.Errorf("FilesErased = %d, want 2", report.FilesErased)
	}
	if report.BytesProcessed != 300 {
		t.Errorf("BytesProcessed = %d, want 300", report.BytesProcessed)
	}
	if report.DirectoriesErased != 1 {
		t.Errorf("DirectoriesErased = %d, want 1", report.DirectoriesErased)
	}
	if report.NTFSVolumesPurged != 1 {
		t.Errorf("NTFSVolumesPurged = %d, want 1", report.NTFSVolumesPurged)
	}
	if len(report.Failures) != 1 || report.Failures[0].Kind != model.FailureOpen {
		t.Errorf("Failures = %+v, want one FailureOpen entry", report.Failures)
	}
	if report.RunID == "" {
		t.Errorf("RunID is empty, want a generated identifier")
	}
	if report.Config.ThreadNumber != 4 || report.Config.Method != "smart" {
		t.Errorf("Config summary = %+v, want ThreadNumber=4 Method=smart", report.Config)
	}
}

func TestTwoBuildersProduceDistinctRunIDs(t *testing.T) {
	a := NewBuilder(time.Now())
	b := NewBuilder(time.Now())
	if a.runID == b.runID {
		t.Fatalf("two builders produced the same run ID: %q", a.runID)
	}
}

func TestSaveWritesJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.Reporting.Enabled = true
	cfg.Reporting.LocalPath = filepath.Join(t.TempDir(), "reports")

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewBuilder(start)
	b.RecordShredResult(&driveeraser.ShredResult{FilesErased: 1, BytesErased: 42})
	report := b.Finish(cfg, start.Add(time.Second))

	if err := Save(report, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(cfg.Reporting.LocalPath)
	if err != nil {
		t.Fatalf("read reporting directory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("reporting directory has %d entries, want 1", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(cfg.Reporting.LocalPath, entries[0].Name()))
	if err != nil {
		t.Fatalf("read report file: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal report file: %v", err)
	}
	if decoded.FilesErased != 1 || decoded.BytesProcessed != 42 {
		t.Fatalf("decoded report = %+v, want FilesErased=1 BytesProcessed=42", decoded)
	}
}

func TestSaveDisabledIsNoop(t *testing.T) {
	cfg := config.Default()
	cfg.Reporting.Enabled = false
	cfg.Reporting.LocalPath = filepath.Join(t.TempDir(), "reports")

	report := NewBuilder(time.Now()).Finish(cfg, time.Now())
	if err := Save(report, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(cfg.Reporting.LocalPath); !os.IsNotExist(err) {
		t.Fatalf("Save() with reporting disabled created %s", cfg.Reporting.LocalPath)
	}
}
