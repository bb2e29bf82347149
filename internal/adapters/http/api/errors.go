package api

import (
	"errors"
	"net/http"

	service "github.com/okian/kiosk-analytics/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Error codes carried in the JSON error body.
const (
	codeBadRequest  = "bad_request"
	codeNotFound    = "not_found"
	codeNoData      = "no_data"
	codeTimeout     = "timeout"
	codeRateLimited = "rate_limited"
	codeInternal    = "internal_error"
)

// classify maps a service error to an HTTP status and error code. No-data
// wins over not-found so an unknown kiosk with no files reads as no_data.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrBadQuery):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, service.ErrQueryTimeout):
		return http.StatusServiceUnavailable, codeTimeout
	case errors.Is(err, service.ErrNoDataFound):
		return http.StatusNotFound, codeNoData
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
