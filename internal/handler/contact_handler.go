package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/contact"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
)

// ContactHandler handles contact form submission requests
type ContactHandler struct {
	contactService service.ContactPipeline
	logger         *logger.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService service.ContactPipeline, logger *logger.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// SendResponse represents the response for a contact submission. The stored
// submission id stays out of the body: its presence would reveal whether the
// message was actually persisted or silently dropped.
type SendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendMessage handles POST /api/send-telegram
func (h *ContactHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var input contact.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, errors.NewValidationError("Invalid request body"), h.logger)
		return
	}

	result, err := h.contactService.Submit(r.Context(), input, clientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if result.SubmissionID != "" {
		h.logger.WithField("submission_id", result.SubmissionID).Info("Contact submission stored")
	}

	// A honeypot catch gets the identical success body so bots cannot tell
	// they were filtered.
	writeJSON(w, http.StatusOK, SendResponse{
		Success: true,
		Message: "Message sent successfully",
	}, h.logger)
}

// RegisterRoutes registers contact handler routes with the router
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Post("/send-telegram", h.SendMessage)
}
