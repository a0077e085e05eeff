package rules

import (
	"errors"
	"net/http"
)

// Domain errors for rule operations.
var (
	ErrNotFound    = errors.New("rule not found")
	ErrDuplicate   = errors.New("rule already exists")
	ErrInvalidRule = errors.New("invalid rule")
)

// MapHTTPStatus maps rule domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidRule) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
