package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "NOSHOW_SERVER_HOST"
	EnvServerPort              = "NOSHOW_SERVER_PORT"
	EnvServerReadTimeout       = "NOSHOW_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "NOSHOW_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "NOSHOW_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "NOSHOW_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "NOSHOW_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig configures the HTTP listener. Timeouts are Go duration
// strings. WriteTimeout is long because batch exports stream whole files.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration       { return duration(c.ReadTimeout) }
func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration { return duration(c.ReadHeaderTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration      { return duration(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration       { return duration(c.IdleTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration   { return duration(c.ShutdownTimeout) }

type timeoutField struct {
	name  string
	value *string
	def   string
	env   string
}

func (c *ServerConfig) timeouts() []timeoutField {
	return []timeoutField{
		{"read_timeout", &c.ReadTimeout, "1m", EnvServerReadTimeout},
		{"read_header_timeout", &c.ReadHeaderTimeout, "10s", EnvServerReadHeaderTimeout},
		{"write_timeout", &c.WriteTimeout, "15m", EnvServerWriteTimeout},
		{"idle_timeout", &c.IdleTimeout, "2m", EnvServerIdleTimeout},
		{"shutdown_timeout", &c.ShutdownTimeout, "30s", EnvServerShutdownTimeout},
	}
}

// Finalize fills defaults, applies NOSHOW_SERVER_* overrides, and
// validates the port and every timeout.
func (c *ServerConfig) Finalize() error {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}

	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if port, err := strconv.Atoi(os.Getenv(EnvServerPort)); err == nil {
		c.Port = port
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	for _, f := range c.timeouts() {
		if *f.value == "" {
			*f.value = f.def
		}
		if v := os.Getenv(f.env); v != "" {
			*f.value = v
		}
		if _, err := time.ParseDuration(*f.value); err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
	}
	return nil
}

// Merge overwrites the fields overlay sets.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}

	theirs := overlay.timeouts()
	for i, f := range c.timeouts() {
		if v := *theirs[i].value; v != "" {
			*f.value = v
		}
	}
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
