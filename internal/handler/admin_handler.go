package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
)

// AdminHandler handles moderation operations on stored submissions
type AdminHandler struct {
	analyticsService *service.AnalyticsService
	retentionDays    int
	logger           *logger.Logger
}

// NewAdminHandler creates a new admin handler. retentionDays is the cleanup
// default when a request does not specify its own window.
func NewAdminHandler(analyticsService *service.AnalyticsService, retentionDays int, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		analyticsService: analyticsService,
		retentionDays:    retentionDays,
		logger:           logger,
	}
}

// UpdateStatus handles PATCH /api/submissions/{id}/status
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errors.NewValidationError("Invalid request body"), h.logger)
		return
	}

	if err := h.analyticsService.UpdateStatus(r.Context(), id, domain.SubmissionStatus(body.Status)); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Status updated",
	}, h.logger)
}

// AddNotes handles PATCH /api/submissions/{id}/notes
func (h *AdminHandler) AddNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errors.NewValidationError("Invalid request body"), h.logger)
		return
	}

	if err := h.analyticsService.AddNotes(r.Context(), id, body.Notes); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Notes saved",
	}, h.logger)
}

// Cleanup handles POST /api/submissions/cleanup
func (h *AdminHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	daysOld := h.retentionDays

	// The body is optional; an empty body keeps the configured default.
	var body struct {
		DaysOld *int `json:"days_old"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.DaysOld != nil {
		daysOld = *body.DaysOld
	}

	deleted, err := h.analyticsService.Cleanup(r.Context(), daysOld)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	}, h.logger)
}

// RegisterRoutes registers admin handler routes with the router
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/submissions", func(r chi.Router) {
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Patch("/{id}/notes", h.AddNotes)
		r.Post("/cleanup", h.Cleanup)
	})
}
