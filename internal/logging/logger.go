// Package logging implements the structured Logger capability: leveled,
// field-annotated events written to a file sink with stdout mirroring for
// WARN and above.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fileshredder_enterprise/internal/config"
)

// EnterpriseLogger is the engine's default Logger implementation.
type EnterpriseLogger struct {
	level   string
	file    *os.File
	verbose bool
}

// NewEnterpriseLogger opens cfg's log file (if configured), falling back
// to stdout-only logging on any I/O failure rather than refusing to start.
func NewEnterpriseLogger(cfg *config.Config, verbose bool) (*EnterpriseLogger, error) {
	l := &EnterpriseLogger{
		level:   cfg.Logging.Level,
		verbose: verbose,
	}

	if cfg.Logging.File == "" {
		return l, nil
	}

	logDir := filepath.Dir(cfg.Logging.File)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		fmt.Printf("[WARN] could not create log directory %s: %v\n", logDir, err)
		fmt.Printf("[WARN] logging to stdout only\n")
		return l, nil
	}

	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Printf("[WARN] could not open log file %s: %v\n", cfg.Logging.File, err)
		fmt.Printf("[WARN] logging to stdout only\n")
		return l, nil
	}
	l.file = f

	return l, nil
}

// Log implements capability.Logger.
func (l *EnterpriseLogger) Log(level, message string, fields ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	entry := fmt.Sprintf("[%s] [%s] %s", timestamp, level, message)
	if len(fields) > 0 {
		entry += fmt.Sprintf(" %v", fields)
	}

	if l.file != nil {
		l.file.WriteString(entry + "\n")
		l.file.Sync()
	}

	if l.verbose || level == "ERROR" || level == "FATAL" || level == "WARN" {
		fmt.Println(entry)
	}
}

func (l *EnterpriseLogger) shouldLog(level string) bool {
	levels := map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3, "FATAL": 4}
	current, ok := levels[l.level]
	if !ok {
		current = 1
	}
	target, ok := levels[level]
	if !ok {
		target = 1
	}
	return target >= current
}

// Close releases the file sink, if one was opened.
func (l *EnterpriseLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
