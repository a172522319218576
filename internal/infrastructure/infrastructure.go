// Package infrastructure assembles the dependencies every domain system
// shares: lifecycle coordination, logging, database, blob storage, and the
// active rule registry.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/noshow/internal/config"
	"github.com/JaimeStill/noshow/internal/rules"
	"github.com/JaimeStill/noshow/migrations"
	"github.com/JaimeStill/noshow/pkg/database"
	"github.com/JaimeStill/noshow/pkg/lifecycle"
	"github.com/JaimeStill/noshow/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Rules     *rules.Active
}

// New creates an Infrastructure from the application configuration. The
// rule registry starts from the embedded catalog; persisted extra rules are
// merged in when the extrarules system rebuilds it at startup.
// Systems are initialized but not started; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	reg, err := rules.BuildCatalog(nil)
	if err != nil {
		return nil, fmt.Errorf("rule catalog init failed: %w", err)
	}
	logger.Info("rule catalog loaded", "rules", reg.Len())

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Rules:     rules.NewActive(reg),
	}, nil
}

// Start registers the database and storage systems with the lifecycle
// coordinator. The coordinator reports ready only while both are.
func (i *Infrastructure) Start() error {
	i.Lifecycle.Require(i.Database, i.Storage)
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
