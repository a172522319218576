package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/noshow/internal/rules"
)

const (
	EnvClassifierDefaultCause    = "NOSHOW_CLASSIFIER_DEFAULT_CAUSE"
	EnvClassifierTriggers        = "NOSHOW_CLASSIFIER_TRIGGERS"
	EnvClassifierWorkers         = "NOSHOW_CLASSIFIER_WORKERS"
	EnvClassifierNarrativeColumn = "NOSHOW_CLASSIFIER_NARRATIVE_COLUMN"
	EnvClassifierTriggerColumn   = "NOSHOW_CLASSIFIER_TRIGGER_COLUMN"
	EnvClassifierKeyColumn       = "NOSHOW_CLASSIFIER_KEY_COLUMN"
)

// ClassifierConfig controls how uploaded rows are classified. The column
// names are defaults an upload may override.
type ClassifierConfig struct {
	DefaultCause    string   `toml:"default_cause"`
	Triggers        []string `toml:"triggers"`
	Workers         int      `toml:"workers"`
	NarrativeColumn string   `toml:"narrative_column"`
	TriggerColumn   string   `toml:"trigger_column"`
	KeyColumn       string   `toml:"key_column"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ClassifierConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ClassifierConfig) Merge(overlay *ClassifierConfig) {
	if overlay.DefaultCause != "" {
		c.DefaultCause = overlay.DefaultCause
	}
	if overlay.Triggers != nil {
		c.Triggers = overlay.Triggers
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.NarrativeColumn != "" {
		c.NarrativeColumn = overlay.NarrativeColumn
	}
	if overlay.TriggerColumn != "" {
		c.TriggerColumn = overlay.TriggerColumn
	}
	if overlay.KeyColumn != "" {
		c.KeyColumn = overlay.KeyColumn
	}
}

func (c *ClassifierConfig) loadDefaults() {
	if c.DefaultCause == "" {
		c.DefaultCause = rules.DefaultCause
	}
	if c.Triggers == nil {
		c.Triggers = []string{"michelin"}
	}
}

func (c *ClassifierConfig) loadEnv() {
	if v := os.Getenv(EnvClassifierDefaultCause); v != "" {
		c.DefaultCause = v
	}
	if v := os.Getenv(EnvClassifierTriggers); v != "" {
		c.Triggers = splitList(v)
	}
	if v := os.Getenv(EnvClassifierWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv(EnvClassifierNarrativeColumn); v != "" {
		c.NarrativeColumn = v
	}
	if v := os.Getenv(EnvClassifierTriggerColumn); v != "" {
		c.TriggerColumn = v
	}
	if v := os.Getenv(EnvClassifierKeyColumn); v != "" {
		c.KeyColumn = v
	}
}

func (c *ClassifierConfig) validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %d", c.Workers)
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
