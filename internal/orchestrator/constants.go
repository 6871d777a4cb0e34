package orchestrator

import (
	"os"
	"time"
)

var (
	// RollbackTimeout bounds the compensation run after a failed step or a rollback command
	RollbackTimeout = durationOrDefault("PRFLOW_ROLLBACK_TIMEOUT", 2*time.Minute)
)

// durationOrDefault reads a duration from envVar, falling back to def when unset or invalid
func durationOrDefault(envVar string, def time.Duration) time.Duration {
	if env := os.Getenv(envVar); env != "" {
		if duration, err := time.ParseDuration(env); err == nil && duration > 0 {
			return duration
		}
	}
	return def
}
