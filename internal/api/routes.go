package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/noshow/internal/config"
	"github.com/JaimeStill/noshow/pkg/openapi"
	"github.com/JaimeStill/noshow/pkg/routes"
)

// SpecPath is the path of the OpenAPI document relative to the API base path.
const SpecPath = "/openapi.json"

// Groups returns the route groups of every domain system.
func Groups(domain *Domain, cfg *config.Config) []routes.Group {
	return []routes.Group{
		domain.ExtraRules.Handler().Routes(),
		domain.Batches.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Notes.Handler().Routes(),
		domain.Reviews.Handler().Routes(),
	}
}

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) error {
	groups := Groups(domain, cfg)
	routes.Register(mux, groups...)

	serve, err := NewSpec(cfg, groups...).Handler()
	if err != nil {
		return fmt.Errorf("render openapi spec: %w", err)
	}
	mux.HandleFunc("GET "+SpecPath, serve)

	return nil
}

// NewSpec describes groups as an OpenAPI document served under the API base path.
func NewSpec(cfg *config.Config, groups ...routes.Group) *openapi.Spec {
	spec := openapi.New(cfg.API.OpenAPI, cfg.Version)
	spec.AddServer(cfg.API.BasePath, "API module")
	routes.Describe(spec, groups...)
	return spec
}
