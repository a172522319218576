package reviews

import (
	"errors"
	"net/http"
)

// Domain errors for review operations.
var (
	ErrNotFound      = errors.New("review not found")
	ErrDuplicate     = errors.New("pass already submitted by another reviewer")
	ErrNoteNotFound  = errors.New("note not found")
	ErrBatchNotFound = errors.New("batch not found")
	ErrInvalidReview = errors.New("invalid review")
)

// MapHTTPStatus maps review domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNoteNotFound) ||
		errors.Is(err, ErrBatchNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidReview) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
