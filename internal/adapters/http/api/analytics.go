package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/okian/kiosk-analytics/internal/adapters/export"
	service "github.com/okian/kiosk-analytics/internal/app"
)

const exportFilename = "kiosk-analysis.xlsx"

// AnalyticsDependencies defines the fleet-wide queries.
type AnalyticsDependencies interface {
	Fleet(ctx context.Context) (*service.FleetReport, error)
	Analyze(ctx context.Context, q service.Query) (*service.AnalysisReport, error)
	Files(ctx context.Context) ([]service.FileEntry, error)
}

// AnalyticsHandler handles fleet trends, dashboard analysis and export.
type AnalyticsHandler struct {
	deps    AnalyticsDependencies
	maxTopN int
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps AnalyticsDependencies, maxTopN int) *AnalyticsHandler {
	if maxTopN <= 0 {
		maxTopN = defaultMaxTopN
	}
	return &AnalyticsHandler{deps: deps, maxTopN: maxTopN}
}

// HandleFleetTrends handles GET /api/fleet/trends.
func (h *AnalyticsHandler) HandleFleetTrends(w http.ResponseWriter, r *http.Request) {
	rep, err := h.deps.Fleet(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleAnalyze handles GET /api/analytics/analyze?kiosk=&date=&top=.
func (h *AnalyticsHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	rep, err := h.analyze(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleExport handles GET /api/analytics/export.xlsx with the same
// parameters as analyze.
func (h *AnalyticsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.analyze(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, rep); err != nil {
		writeError(w, r, http.StatusInternalServerError, codeInternal, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleFiles handles GET /api/analytics/files.
func (h *AnalyticsHandler) HandleFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.deps.Files(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if files == nil {
		files = []service.FileEntry{}
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *AnalyticsHandler) analyze(r *http.Request) (*service.AnalysisReport, error) {
	q, err := h.parseQuery(r)
	if err != nil {
		return nil, err
	}
	return h.deps.Analyze(r.Context(), q)
}

func (h *AnalyticsHandler) parseQuery(r *http.Request) (service.Query, error) {
	var q service.Query
	top, err := parseTop(r, h.maxTopN)
	if err != nil {
		return q, err
	}
	q.TopN = top
	q.Kiosks = multiValue(r, "kiosk")
	for _, raw := range multiValue(r, "date") {
		d, err := parseDate(raw)
		if err != nil {
			return q, err
		}
		q.Dates = append(q.Dates, d)
	}
	return q, nil
}
