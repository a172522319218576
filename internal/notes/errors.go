package notes

import (
	"errors"
	"net/http"
)

// Domain errors for note operations.
var (
	ErrNotFound  = errors.New("note not found")
	ErrDuplicate = errors.New("note already exists for this batch row")
)

// MapHTTPStatus maps note domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
