package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/noshow/pkg/formatting"
	"github.com/JaimeStill/noshow/pkg/middleware"
	"github.com/JaimeStill/noshow/pkg/openapi"
	"github.com/JaimeStill/noshow/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "NOSHOW_CORS_ENABLED",
	Origins:          "NOSHOW_CORS_ORIGINS",
	AllowedMethods:   "NOSHOW_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "NOSHOW_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "NOSHOW_CORS_EXPOSED_HEADERS",
	AllowCredentials: "NOSHOW_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "NOSHOW_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "NOSHOW_OPENAPI_TITLE",
	Description: "NOSHOW_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "NOSHOW_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "NOSHOW_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing settings and the configs nested under [api].
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes parses MaxUploadSize, falling back to 50MB.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 50 * 1024 * 1024 // 50MB fallback
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("NOSHOW_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("NOSHOW_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
}
