package spaces

import (
	"errors"
	"net/http"
)

// Domain errors for policy space operations.
var (
	ErrNotFound     = errors.New("policy space not found")
	ErrDuplicate    = errors.New("policy space already exists")
	ErrInvalidSpace = errors.New("invalid policy space")
)

// MapHTTPStatus maps policy space domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidSpace) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
