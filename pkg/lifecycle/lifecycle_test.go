package lifecycle_test

import (
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/JaimeStill/noshow/pkg/lifecycle"
)

type checker struct{ ok atomic.Bool }

func (c *checker) Ready() bool { return c.ok.Load() }

func TestReady(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Error("ready before WaitForStartup")
	}

	lc.WaitForStartup()
	if !lc.Ready() {
		t.Error("not ready after WaitForStartup")
	}
}

func TestRequire(t *testing.T) {
	lc := lifecycle.New()
	db := &checker{}
	lc.Require(db)
	lc.WaitForStartup()

	if lc.Ready() {
		t.Error("ready while a required subsystem is not")
	}

	db.ok.Store(true)
	if !lc.Ready() {
		t.Error("not ready once every subsystem is")
	}
}

func TestHookOrder(t *testing.T) {
	defer goleak.VerifyNone(t)
	lc := lifecycle.New()

	var pinged atomic.Int32
	for range 3 {
		lc.OnStartup(func() {
			time.Sleep(10 * time.Millisecond)
			pinged.Add(1)
		})
	}

	var order []string
	var seenAtReady int32
	lc.OnReady(func() {
		seenAtReady = pinged.Load()
		order = append(order, "rebuild rules")
	})
	lc.OnReady(func() {
		if lc.Ready() {
			t.Error("ready before ready hooks finished")
		}
		order = append(order, "announce")
	})

	lc.WaitForStartup()

	if seenAtReady != 3 {
		t.Errorf("ready hook ran after %d of 3 startup hooks", seenAtReady)
	}
	if !slices.Equal(order, []string{"rebuild rules", "announce"}) {
		t.Errorf("ready hooks: got %v", order)
	}
}

func TestShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)
	lc := lifecycle.New()

	var closed atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		closed.Store(true)
	})
	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !closed.Load() {
		t.Error("shutdown hook did not run")
	}
	if lc.Context().Err() == nil {
		t.Error("context not cancelled")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})

	if err := lc.Shutdown(50 * time.Millisecond); err == nil {
		t.Error("expected timeout error")
	}
}
