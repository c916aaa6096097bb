package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/service"
	"portfolio-api/pkg/logger"
)

// Query parameter bounds for the analytics endpoint
const (
	DefaultSubmissionLimit = 50
	MaxSubmissionLimit     = 100
	DefaultAnalyticsDays   = 30
	MaxAnalyticsDays       = 365
)

// AnalyticsHandler serves the admin analytics views
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	logger           *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, logger *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// PaginationInfo describes the page of a submissions listing
type PaginationInfo struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// DateRange describes the window of an analytics listing
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Get handles GET /api/analytics. The type query parameter selects the view:
// submissions, analytics, or summary (the default).
func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("type") {
	case "submissions":
		h.submissions(w, r)
	case "analytics":
		h.analytics(w, r)
	default:
		h.summary(w, r)
	}
}

func (h *AnalyticsHandler) submissions(w http.ResponseWriter, r *http.Request) {
	limit := clampQueryInt(r, "limit", DefaultSubmissionLimit, 1, MaxSubmissionLimit)
	offset := clampQueryInt(r, "offset", 0, 0, 1<<31-1)

	submissions, total, err := h.analyticsService.ListSubmissions(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": submissions,
		"pagination": PaginationInfo{
			Total:  total,
			Limit:  limit,
			Offset: offset,
		},
	}, h.logger)
}

func (h *AnalyticsHandler) analytics(w http.ResponseWriter, r *http.Request) {
	days := clampQueryInt(r, "days", DefaultAnalyticsDays, 1, MaxAnalyticsDays)

	rows, err := h.analyticsService.GetAnalytics(r.Context(), days)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	end := time.Now()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": rows,
		"dateRange": DateRange{
			StartDate: end.AddDate(0, 0, -days).Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		},
	}, h.logger)
}

func (h *AnalyticsHandler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analyticsService.GetSummary(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, summary, h.logger)
}

// clampQueryInt parses an integer query parameter, falling back to def and
// clamping into [min, max]. Unparseable values fall back rather than erroring.
func clampQueryInt(r *http.Request, name string, def, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// RegisterRoutes registers analytics handler routes with the router
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/analytics", h.Get)
}
