package main

import (
	"net/http"

	"github.com/JaimeStill/noshow/internal/api"
	"github.com/JaimeStill/noshow/internal/config"
	"github.com/JaimeStill/noshow/internal/infrastructure"
	"github.com/JaimeStill/noshow/pkg/handlers"
	"github.com/JaimeStill/noshow/pkg/module"
)

// Modules holds the HTTP modules mounted on the root router.
type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}
	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) error {
	return router.Mount(m.API)
}

type readiness struct {
	Status   string   `json:"status"`
	Database bool     `json:"database"`
	Storage  bool     `json:"storage"`
	Rules    int      `json:"rules"`
	Modules  []string `json:"modules"`
}

// buildRouter creates the root router with the liveness and readiness
// endpoints. /readyz answers 503 until every required subsystem is up.
func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		body := readiness{
			Status:   "ready",
			Database: infra.Database.Ready(),
			Storage:  infra.Storage.Ready(),
			Rules:    infra.Rules.Load().Len(),
			Modules:  router.Prefixes(),
		}
		status := http.StatusOK
		if !infra.Lifecycle.Ready() {
			body.Status = "not ready"
			status = http.StatusServiceUnavailable
		}
		handlers.RespondJSON(w, status, body)
	})

	return router
}
