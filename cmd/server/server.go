package main

import (
	"time"

	"github.com/JaimeStill/noshow/internal/config"
	"github.com/JaimeStill/noshow/internal/infrastructure"
)

// Server owns the infrastructure, the mounted modules, and the listener.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

// NewServer wires every system without touching the network.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	if err := modules.Mount(router); err != nil {
		return nil, err
	}

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start launches the subsystems and the listener. Requests are accepted
// right away; /readyz turns ready once the database answers, the storage
// container exists, and the rule registry has been rebuilt.
func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		if s.infra.Lifecycle.Ready() {
			s.infra.Logger.Info("ready", "rules", s.infra.Rules.Load().Len())
			return
		}
		s.infra.Logger.Warn("startup finished with a subsystem unavailable")
	}()

	return nil
}

// Shutdown stops the listener and closes the subsystems within timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("shutting down", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
