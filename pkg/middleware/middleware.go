// Package middleware holds the HTTP middleware the API module installs:
// cross-origin policy, request logging, and panic recovery.
package middleware

import "net/http"

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Stack is an ordered middleware list. The first middleware added is the
// outermost, so it sees each request first. The zero value is empty and
// ready to use.
type Stack struct {
	layers []Middleware
}

// Use appends mw to the stack.
func (s *Stack) Use(mw ...Middleware) {
	s.layers = append(s.layers, mw...)
}

// Len reports how many middleware are installed.
func (s *Stack) Len() int {
	return len(s.layers)
}

// Apply wraps h in every middleware of the stack.
func (s *Stack) Apply(h http.Handler) http.Handler {
	for i := len(s.layers) - 1; i >= 0; i-- {
		h = s.layers[i](h)
	}
	return h
}
