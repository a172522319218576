package config

import (
	"os"
	"strconv"
)

const EnvReviewRequireSecondPass = "NOSHOW_REVIEW_REQUIRE_SECOND_PASS"

// ReviewConfig holds the review workflow policy.
type ReviewConfig struct {
	RequireSecondPass bool `toml:"require_second_pass"`
}

// Finalize applies environment variable overrides.
func (c *ReviewConfig) Finalize() error {
	c.loadEnv()
	return nil
}

// Merge enables the second pass when the overlay enables it. An overlay
// cannot switch it back off; use the environment variable for that.
func (c *ReviewConfig) Merge(overlay *ReviewConfig) {
	if overlay.RequireSecondPass {
		c.RequireSecondPass = true
	}
}

func (c *ReviewConfig) loadEnv() {
	if v := os.Getenv(EnvReviewRequireSecondPass); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.RequireSecondPass = b
		}
	}
}
