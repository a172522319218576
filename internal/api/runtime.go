package api

import (
	"github.com/JaimeStill/noshow/internal/batches"
	"github.com/JaimeStill/noshow/internal/classify"
	"github.com/JaimeStill/noshow/internal/config"
	"github.com/JaimeStill/noshow/internal/infrastructure"
	"github.com/JaimeStill/noshow/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination        pagination.Config
	Settings          classify.Settings
	Columns           batches.Columns
	RequireSecondPass bool
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Rules:     infra.Rules,
		},
		Pagination: cfg.API.Pagination,
		Settings: classify.Settings{
			DefaultCause: cfg.Classifier.DefaultCause,
			Triggers:     cfg.Classifier.Triggers,
			Workers:      cfg.Classifier.Workers,
		},
		Columns: batches.Columns{
			Narrative: cfg.Classifier.NarrativeColumn,
			Trigger:   cfg.Classifier.TriggerColumn,
			Key:       cfg.Classifier.KeyColumn,
		},
		RequireSecondPass: cfg.Review.RequireSecondPass,
	}
}
