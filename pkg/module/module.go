// Package module mounts self-contained HTTP surfaces under single-segment
// path prefixes of a root router.
package module

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JaimeStill/noshow/pkg/middleware"
)

// ErrInvalidPrefix is returned for a prefix that is not a single "/segment".
var ErrInvalidPrefix = errors.New("invalid module prefix")

// Module serves an inner router below a prefix. The prefix is removed from
// the request path before the inner router sees it, so handlers register
// patterns relative to the module root.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.Stack

	once    sync.Once
	handler http.Handler
}

// New creates a Module for prefix, e.g. "/api".
func New(prefix string, router http.Handler) (*Module, error) {
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}
	return &Module{
		prefix: prefix,
		router: router,
	}, nil
}

// Prefix returns the path segment the module is mounted at.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware. The stack is composed on the first request;
// middleware added afterwards is ignored.
func (m *Module) Use(mw middleware.Middleware) {
	m.middleware.Use(mw)
}

// Handler returns the inner router wrapped in the module middleware.
func (m *Module) Handler() http.Handler {
	m.once.Do(func() {
		m.handler = m.middleware.Apply(m.router)
	})
	return m.handler
}

// Serve dispatches req to the inner router with the prefix removed.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, strip(req, m.prefix))
}

func strip(req *http.Request, prefix string) *http.Request {
	r := req.Clone(req.Context())
	r.URL.Path = relative(req.URL.Path, prefix)
	if req.URL.RawPath != "" {
		r.URL.RawPath = relative(req.URL.RawPath, prefix)
	}
	return r
}

func relative(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" {
		return "/"
	}
	return rest
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("%w: empty", ErrInvalidPrefix)
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("%w: %q must start with /", ErrInvalidPrefix, prefix)
	case len(prefix) == 1 || strings.Contains(prefix[1:], "/"):
		return fmt.Errorf("%w: %q must be a single path segment", ErrInvalidPrefix, prefix)
	}
	return nil
}
