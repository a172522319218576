package batches

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/noshow/pkg/storage"
)

// Domain errors for batch operations.
var (
	ErrNotFound      = errors.New("batch not found")
	ErrDuplicate     = errors.New("batch already exists")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
	ErrInvalidFile   = errors.New("invalid file")
	ErrEmptyFile     = errors.New("file has no data rows")
	ErrInvalidColumn = errors.New("column not found in header")
)

// MapHTTPStatus maps batch domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidFile) ||
		errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrInvalidColumn) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
