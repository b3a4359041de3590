package config

import (
	"fmt"
	"strings"
	"time"
)

// ReviewConfig holds review-workflow configuration.
type ReviewConfig struct {
	// DefaultBranches is the branch list offered to tenants without settings.
	DefaultBranches []string
	// RotationMargin is the lead time before token expiry at which a
	// credential is proactively refreshed.
	RotationMargin time.Duration
}

// LoadReviewConfigFromEnv loads review-workflow configuration from environment variables.
func LoadReviewConfigFromEnv() ReviewConfig {
	branches := strings.Split(GetEnv("REVIEW_BRANCHES", "develop,release,master"), ",")
	for i := range branches {
		branches[i] = strings.TrimSpace(branches[i])
	}
	return ReviewConfig{
		DefaultBranches: branches,
		RotationMargin:  GetEnvDuration("TOKEN_ROTATION_MARGIN", 120*time.Minute),
	}
}

// Validate validates review-workflow configuration.
func (c ReviewConfig) Validate() error {
	if len(c.DefaultBranches) == 0 {
		return fmt.Errorf("DefaultBranches must not be empty")
	}
	for _, branch := range c.DefaultBranches {
		if branch == "" {
			return fmt.Errorf("DefaultBranches must not contain empty names")
		}
	}
	if c.RotationMargin <= 0 {
		return fmt.Errorf("RotationMargin must be greater than 0")
	}
	return nil
}
