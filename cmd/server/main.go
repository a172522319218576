package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/noshow/internal/api"
	"github.com/JaimeStill/noshow/internal/config"
	"github.com/JaimeStill/noshow/internal/infrastructure"
)

func main() {
	specOut := flag.String("spec", "", "Write the OpenAPI document to this file and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed:", err)
	}

	if *specOut != "" {
		if err := writeSpec(cfg, *specOut); err != nil {
			log.Fatal("spec export failed:", err)
		}
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger.Info(
		"noshow starting",
		"version", cfg.Version,
		"addr", cfg.Server.Addr(),
		"env", cfg.Env(),
	)

	srv, err := NewServer(cfg)
	if err != nil {
		log.Fatal("server init failed:", err)
	}

	if err := srv.Start(); err != nil {
		log.Fatal("server start failed:", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("noshow stopped")
}

// writeSpec builds the domain without starting any subsystem and writes
// the OpenAPI document it describes.
func writeSpec(cfg *config.Config, filename string) error {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return err
	}
	defer infra.Database.Connection().Close()

	domain := api.NewDomain(api.NewRuntime(cfg, infra))
	return api.NewSpec(cfg, api.Groups(domain, cfg)...).WriteFile(filename)
}
