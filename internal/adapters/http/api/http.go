// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	service "github.com/okian/kiosk-analytics/internal/app"
	"github.com/okian/kiosk-analytics/pkg/logger"
)

const defaultMaxTopN = 500

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the query service.
type Dependencies interface {
	Kiosks(ctx context.Context) ([]string, error)
	Dates(ctx context.Context, kiosk string) ([]civil.Date, error)
	KioskDay(ctx context.Context, kiosk string, date civil.Date) (*service.KioskDayReport, error)
	KioskHistory(ctx context.Context, kiosk string) (*service.KioskReport, error)
	Fleet(ctx context.Context) (*service.FleetReport, error)
	Analyze(ctx context.Context, q service.Query) (*service.AnalysisReport, error)
	Files(ctx context.Context) ([]service.FileEntry, error)
	Health(ctx context.Context) service.Health
	StatsProvider
}

// Server wires HTTP routes for the analytics API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	kioskHandler     *KioskHandler
	analyticsHandler *AnalyticsHandler
	dashboardHandler *dashboardHandler

	maxTopN     int
	rateRPS     float64
	rateBurst   int
	trustProxy  bool
	corsOrigins []string
	logger      logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{maxTopN: defaultMaxTopN}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(deps)
	s.kioskHandler = NewKioskHandler(deps)
	s.analyticsHandler = NewAnalyticsHandler(deps, s.maxTopN)
	s.dashboardHandler = newDashboardHandler()
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	limit := newRateLimiter(s.rateRPS, s.rateBurst, s.trustProxy)
	crossOrigin := newCORS(s.corsOrigins)
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		h = MetricsMiddleware(h, endpoint)
		if endpoint != "healthz" && endpoint != "metrics" {
			h = limit.Middleware(h)
		}
		mux.HandleFunc(pattern, RequestIDMiddleware(s.logger, crossOrigin.Middleware(h)))
	}
	if crossOrigin != nil {
		mux.HandleFunc("OPTIONS /api/", crossOrigin.HandlePreflight)
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	route("GET /metrics", "metrics", s.healthHandler.HandleMetrics)
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	route("GET /api/kiosks", "kiosks", s.kioskHandler.HandleKiosks)
	route("GET /api/kiosks/{kiosk}/dates", "kiosk_dates", s.kioskHandler.HandleDates)
	route("GET /api/kiosks/{kiosk}/dates/{date}", "kiosk_day", s.kioskHandler.HandleKioskDay)
	route("GET /api/kiosks/{kiosk}/summary", "kiosk_summary", s.kioskHandler.HandleKioskSummary)
	route("GET /api/fleet/trends", "fleet_trends", s.analyticsHandler.HandleFleetTrends)
	route("GET /api/analytics/analyze", "analyze", s.analyticsHandler.HandleAnalyze)
	route("GET /api/analytics/export.xlsx", "export", s.analyticsHandler.HandleExport)
	route("GET /api/analytics/files", "files", s.analyticsHandler.HandleFiles)

	mux.HandleFunc("GET /dashboard", s.dashboardHandler.HandleDashboard)
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with {code, message, request_id}.
func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, RequestID: RequestID(r.Context())})
}

// writeServiceError translates err into the matching status and code.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	writeError(w, r, status, code, err)
}

// parseDate accepts an ISO calendar date.
func parseDate(raw string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(raw))
	if err != nil || !d.IsValid() {
		return civil.Date{}, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", ErrBadRequest, raw)
	}
	return d, nil
}

// multiValue collects a repeatable, comma separated query parameter.
func multiValue(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// parseTop reads top=N; absent means zero (service default).
func parseTop(r *http.Request, maxTopN int) (int, error) {
	raw := r.URL.Query().Get("top")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: top must be a positive integer", ErrBadRequest)
	}
	if n > maxTopN {
		return 0, fmt.Errorf("%w: top exceeds %d", ErrBadRequest, maxTopN)
	}
	return n, nil
}
