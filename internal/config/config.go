package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the engine's full configuration surface.
type Config struct {
	Engine struct {
		ThreadNumber       int    `yaml:"thread_number"`
		MultithreadedErase bool   `yaml:"multithreaded_erase"`
		NTFSErase          bool   `yaml:"ntfs_erase"`
		Method             string `yaml:"method"`
	} `yaml:"engine"`

	Store struct {
		Path          string `yaml:"path"`
		BusyTimeoutMs int    `yaml:"busy_timeout_ms"`
	} `yaml:"store"`

	Mask struct {
		BufferSize int `yaml:"buffer_size"`
	} `yaml:"mask"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		Structured bool   `yaml:"structured"`
	} `yaml:"logging"`

	Reporting struct {
		Enabled   bool   `yaml:"enabled"`
		LocalPath string `yaml:"local_path"`
		Format    string `yaml:"format"`
	} `yaml:"reporting"`
}

// Default returns the configuration shipped when no file is supplied.
func Default() *Config {
	var c Config

	c.Engine.ThreadNumber = 0
	c.Engine.MultithreadedErase = false
	c.Engine.NTFSErase = true
	c.Engine.Method = "smart"

	c.Store.Path = "./eraser.db"
	c.Store.BusyTimeoutMs = 5000

	c.Mask.BufferSize = 65535

	c.Logging.Level = "INFO"
	c.Logging.File = ""
	c.Logging.Structured = true

	c.Reporting.Enabled = true
	c.Reporting.LocalPath = "./reports"
	c.Reporting.Format = "json"

	return &c
}

// Load reads path, falling back to Default on a missing file.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot act on.
func Validate(cfg *Config) error {
	if cfg.Engine.ThreadNumber < 0 {
		return fmt.Errorf("thread_number cannot be negative, got %d", cfg.Engine.ThreadNumber)
	}

	validMethods := map[string]bool{"smart": true, "full": true, "random": true, "begin_end": true}
	if !validMethods[cfg.Engine.Method] {
		return fmt.Errorf("invalid erasure method: %s", cfg.Engine.Method)
	}

	if cfg.Store.Path == "" {
		return fmt.Errorf("store path cannot be empty")
	}
	if cfg.Store.BusyTimeoutMs < 0 {
		return fmt.Errorf("busy_timeout_ms cannot be negative, got %d", cfg.Store.BusyTimeoutMs)
	}

	if cfg.Mask.BufferSize <= 0 {
		return fmt.Errorf("mask buffer_size must be positive, got %d", cfg.Mask.BufferSize)
	}

	validLevels := map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Reporting.Enabled && !validFormats[cfg.Reporting.Format] {
		return fmt.Errorf("invalid reporting format: %s", cfg.Reporting.Format)
	}

	return nil
}

// Save validates then writes cfg as YAML to path.
func Save(cfg *Config, path string) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config: refusing to save invalid config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// IsAdmin reports whether the process can open a raw physical drive
// handle, the cheapest available signal of elevated privilege on Windows.
// The journal purge (VolumeOps) needs this; the CLI's erase command warns
// when it is false.
func IsAdmin() bool {
	_, err := os.Open(`\\.\PHYSICALDRIVE0`)
	return err == nil
}
