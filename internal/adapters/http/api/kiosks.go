package api

import (
	"context"
	"net/http"

	"cloud.google.com/go/civil"
	service "github.com/okian/kiosk-analytics/internal/app"
)

// KioskDependencies defines the per-kiosk queries.
type KioskDependencies interface {
	Kiosks(ctx context.Context) ([]string, error)
	Dates(ctx context.Context, kiosk string) ([]civil.Date, error)
	KioskDay(ctx context.Context, kiosk string, date civil.Date) (*service.KioskDayReport, error)
	KioskHistory(ctx context.Context, kiosk string) (*service.KioskReport, error)
}

// KioskHandler handles kiosk listing and per-kiosk reports.
type KioskHandler struct {
	deps KioskDependencies
}

// NewKioskHandler creates a new kiosk handler.
func NewKioskHandler(deps KioskDependencies) *KioskHandler {
	return &KioskHandler{deps: deps}
}

type kiosksResponse struct {
	Kiosks []string `json:"kiosks"`
}

type datesResponse struct {
	KioskID string       `json:"kiosk_id"`
	Dates   []civil.Date `json:"dates"`
}

// HandleKiosks handles GET /api/kiosks.
func (h *KioskHandler) HandleKiosks(w http.ResponseWriter, r *http.Request) {
	ids, err := h.deps.Kiosks(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, kiosksResponse{Kiosks: ids})
}

// HandleDates handles GET /api/kiosks/{kiosk}/dates.
func (h *KioskHandler) HandleDates(w http.ResponseWriter, r *http.Request) {
	kiosk := r.PathValue("kiosk")
	dates, err := h.deps.Dates(r.Context(), kiosk)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if dates == nil {
		dates = []civil.Date{}
	}
	writeJSON(w, http.StatusOK, datesResponse{KioskID: kiosk, Dates: dates})
}

// HandleKioskDay handles GET /api/kiosks/{kiosk}/dates/{date}.
func (h *KioskHandler) HandleKioskDay(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.PathValue("date"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, err)
		return
	}
	rep, err := h.deps.KioskDay(r.Context(), r.PathValue("kiosk"), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleKioskSummary handles GET /api/kiosks/{kiosk}/summary.
func (h *KioskHandler) HandleKioskSummary(w http.ResponseWriter, r *http.Request) {
	rep, err := h.deps.KioskHistory(r.Context(), r.PathValue("kiosk"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
