package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/service"
	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
)

// AssistantHandler handles the AI assistant endpoints
type AssistantHandler struct {
	assistantService service.Assistant
	logger           *logger.Logger
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(assistantService service.Assistant, logger *logger.Logger) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
		logger:           logger,
	}
}

// Chat handles POST /api/assistant/chat
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errors.NewValidationError("Invalid request body"), h.logger)
		return
	}

	reply, err := h.assistantService.Chat(r.Context(), body.Message)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"response": reply.Response,
		"sources":  reply.Sources,
		"cached":   reply.Cached,
	}, h.logger)
}

// GenerateImage handles POST /api/assistant/image
func (h *AssistantHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt      string `json:"prompt"`
		Style       string `json:"style"`
		AspectRatio string `json:"aspectRatio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errors.NewValidationError("Invalid request body"), h.logger)
		return
	}

	image, err := h.assistantService.GenerateImage(r.Context(), body.Prompt, body.Style, body.AspectRatio)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"image":   image.Data,
		"cached":  image.Cached,
	}, h.logger)
}

// RegisterRoutes registers assistant handler routes with the router
func (h *AssistantHandler) RegisterRoutes(r chi.Router) {
	r.Route("/assistant", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Post("/image", h.GenerateImage)
	})
}
