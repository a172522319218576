package extrarules

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/noshow/internal/rules"
)

// Domain errors for extra rule operations.
var (
	ErrNotFound    = errors.New("extra rule not found")
	ErrDuplicate   = errors.New("a rule for this cause and reason already exists")
	ErrEmptyImport = errors.New("import block is empty")
)

// MapHTTPStatus maps extra rule domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, rules.ErrInvalidRule), errors.Is(err, ErrEmptyImport):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
