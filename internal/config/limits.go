package config

import (
	"fmt"
	"time"
)

// InspectLimits bounds the work a single CLI invocation may do.
type InspectLimits struct {
	MaxConcurrentTargets int `yaml:"max_concurrent_targets" json:"max_concurrent_targets"` // Parallel inspect targets
	SlowOperationMs      int `yaml:"slow_operation_ms" json:"slow_operation_ms"`           // Performance log threshold
}

// ValidateLimits checks that limits are within acceptable ranges.
func (c *Config) ValidateLimits() error {
	if c.Limits.MaxConcurrentTargets < 1 {
		return fmt.Errorf("max_concurrent_targets must be >= 1")
	}
	if c.Limits.SlowOperationMs < 0 {
		return fmt.Errorf("slow_operation_ms must be >= 0")
	}
	return nil
}

// SlowOperationThreshold returns the performance logging threshold.
func (c *Config) SlowOperationThreshold() time.Duration {
	return time.Duration(c.Limits.SlowOperationMs) * time.Millisecond
}
