package api

import "github.com/okian/kiosk-analytics/pkg/logger"

// Option configures a Server.
type Option func(*Server)

// WithMaxTopN caps the top= query parameter.
func WithMaxTopN(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxTopN = n
		}
	}
}

// WithRateLimit enables per-client rate limiting on the JSON API. A
// non-positive rps disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rateRPS, s.rateBurst = rps, burst
	}
}

// WithLogger sets a custom logger for request logging.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCORS allows cross-origin reads from origins; "*" allows any origin.
// No origins leaves CORS disabled.
func WithCORS(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithTrustedProxy keys rate limiting on the first X-Forwarded-For hop (or
// X-Real-IP) instead of the connection address.
func WithTrustedProxy(trusted bool) Option {
	return func(s *Server) {
		s.trustProxy = trusted
	}
}
