package storage

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// Config selects the Azure Blob Storage account and container.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	// MaxRetries bounds retries per blob request. Zero keeps the SDK
	// default and a negative value disables retries.
	MaxRetries int `toml:"max_retries"`
}

// Env names the environment variables that override Config.
type Env struct {
	ContainerName    string
	ConnectionString string
	MaxRetries       string
}

var containerName = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9]|-[a-z0-9]){2,62}$`)

// Finalize defaults the container to "batches", applies env overrides,
// and checks the container name against Azure naming rules.
func (c *Config) Finalize(env *Env) error {
	if c.ContainerName == "" {
		c.ContainerName = "batches"
	}
	if env != nil {
		override(env.ContainerName, &c.ContainerName)
		override(env.ConnectionString, &c.ConnectionString)
		var retries string
		override(env.MaxRetries, &retries)
		if retries != "" {
			n, err := strconv.Atoi(retries)
			if err != nil {
				return fmt.Errorf("invalid max_retries %q", retries)
			}
			c.MaxRetries = n
		}
	}

	if c.ConnectionString == "" {
		return errors.New("connection_string required")
	}
	if !containerName.MatchString(c.ContainerName) {
		return fmt.Errorf("container_name %q must be 3-63 lowercase letters, digits, or single hyphens", c.ContainerName)
	}
	return nil
}

// Merge overwrites the fields overlay sets.
func (c *Config) Merge(overlay *Config) {
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
}

func override(name string, dst *string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
