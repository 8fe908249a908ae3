package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("Validate(Default()) error = %v", err)
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine.Method != Default().Engine.Method {
		t.Fatalf("Load() on missing file did not return defaults")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Engine.ThreadNumber = 4
	cfg.Engine.Method = "full"
	cfg.Engine.MultithreadedErase = true

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Engine.ThreadNumber != 4 || loaded.Engine.Method != "full" || !loaded.Engine.MultithreadedErase {
		t.Fatalf("Load() after Save() = %+v, want round-tripped values", loaded.Engine)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative thread number", func(c *Config) { c.Engine.ThreadNumber = -1 }},
		{"unknown method", func(c *Config) { c.Engine.Method = "shred_everything" }},
		{"empty store path", func(c *Config) { c.Store.Path = "" }},
		{"negative busy timeout", func(c *Config) { c.Store.BusyTimeoutMs = -1 }},
		{"zero mask buffer", func(c *Config) { c.Mask.BufferSize = 0 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "VERBOSE" }},
		{"unknown reporting format", func(c *Config) { c.Reporting.Enabled = true; c.Reporting.Format = "xml" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Fatalf("Validate() accepted invalid config: %s", tc.name)
			}
		})
	}
}

func TestSaveRefusesInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.Engine.Method = "bogus"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(cfg, path); err == nil {
		t.Fatalf("Save() accepted invalid config")
	}
}
