// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/JaimeStill/noshow/internal/config"
	"github.com/JaimeStill/noshow/internal/infrastructure"
	"github.com/JaimeStill/noshow/pkg/middleware"
	"github.com/JaimeStill/noshow/pkg/module"
)

const rebuildTimeout = 30 * time.Second

// NewModule creates the API module with all domain handlers and middleware.
// Persisted extra rules are merged into the active registry once every
// startup hook, including the database ping and migrations, has finished.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	runtime.Lifecycle.OnReady(func() {
		ctx, cancel := context.WithTimeout(runtime.Lifecycle.Context(), rebuildTimeout)
		defer cancel()

		if _, err := domain.ExtraRules.Rebuild(ctx); err != nil {
			runtime.Logger.Warn("extra rules not loaded, serving embedded catalog", "error", err)
		}
	})

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, err
	}
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))
	m.Use(middleware.Recover(runtime.Infrastructure.Logger))

	return m, nil
}
