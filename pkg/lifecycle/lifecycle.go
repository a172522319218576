// Package lifecycle coordinates startup and shutdown of the service's subsystems.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator runs startup hooks concurrently, then ready hooks in
// registration order, and finally cancels its context to drive shutdown hooks.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup

	mu       sync.RWMutex
	started  bool
	onReady  []func()
	requires []ReadinessChecker
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn in its own goroutine immediately. WaitForStartup
// blocks until every startup hook returns.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnReady registers fn to run once every startup hook has returned. Ready
// hooks run sequentially before the coordinator reports ready.
func (c *Coordinator) OnReady(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReady = append(c.onReady, fn)
}

// OnShutdown registers a function to run concurrently during shutdown.
// Shutdown hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// Require adds subsystems that must report ready for the coordinator to
// be ready.
func (c *Coordinator) Require(checkers ...ReadinessChecker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requires = append(c.requires, checkers...)
}

// Ready reports whether startup completed and every required subsystem is ready.
func (c *Coordinator) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return false
	}
	for _, r := range c.requires {
		if !r.Ready() {
			return false
		}
	}
	return true
}

// WaitForStartup blocks until all startup hooks have completed, runs the
// ready hooks, and marks startup complete.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()

	c.mu.RLock()
	hooks := c.onReady
	c.mu.RUnlock()

	for _, fn := range hooks {
		fn()
	}

	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
}

// Shutdown cancels the context and waits for shutdown hooks to complete
// within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
