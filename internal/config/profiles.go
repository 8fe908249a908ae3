package config

import (
	"fmt"
	"runtime"
)

// ApplyProfile scales thread_number/multithreaded_erase/method in place.
// There are no wipe "passes" in this domain: a file is erased once per
// its chosen strategy, so profiles tune concurrency instead.
func ApplyProfile(cfg *Config, profile string) error {
	switch profile {
	case "safe":
		cfg.Engine.ThreadNumber = 1
		cfg.Engine.MultithreadedErase = false
		cfg.Engine.Method = "full"
	case "balanced":
		cfg.Engine.ThreadNumber = runtime.NumCPU() / 2
		cfg.Engine.MultithreadedErase = false
		cfg.Engine.Method = "smart"
	case "aggressive":
		cfg.Engine.ThreadNumber = runtime.NumCPU()
		cfg.Engine.MultithreadedErase = true
		cfg.Engine.Method = "smart"
	case "fast":
		cfg.Engine.ThreadNumber = runtime.NumCPU()
		cfg.Engine.MultithreadedErase = true
		cfg.Engine.Method = "begin_end"
	case "sdelete":
		cfg.Engine.ThreadNumber = 1
		cfg.Engine.MultithreadedErase = false
		cfg.Engine.Method = "random"
	default:
		return fmt.Errorf("config: unknown profile %q", profile)
	}
	if cfg.Engine.ThreadNumber < 1 {
		cfg.Engine.ThreadNumber = 1
	}
	return nil
}
