package handler

import (
	"encoding/json"
	"net"
	"net/http"

	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, payload interface{}, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps an error to the standard error envelope. Unknown error
// values are reported as internal errors without leaking detail.
func writeError(w http.ResponseWriter, err error, log *logger.Logger) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		log.WithError(err).Error("Unclassified handler error")
		appErr = errors.NewInternalError("Internal server error", err)
	}

	response := map[string]interface{}{
		"success": false,
		"error": ErrorResponse{
			Type:    string(appErr.Type),
			Message: appErr.Message,
		},
	}

	writeJSON(w, appErr.StatusCode, response, log)
}

// clientIP extracts the real client IP address from the request
func clientIP(r *http.Request) string {
	// Check for IP in various headers (in order of preference)
	headers := []string{
		"CF-Connecting-IP", // Cloudflare
		"X-Forwarded-For",  // Standard proxy header
		"X-Real-IP",        // Nginx proxy
	}

	for _, header := range headers {
		if ip := r.Header.Get(header); ip != "" {
			// X-Forwarded-For can contain multiple IPs, take the first one
			if header == "X-Forwarded-For" {
				if firstIP := getFirstIP(ip); firstIP != "" {
					return firstIP
				}
			} else {
				return ip
			}
		}
	}

	// Fall back to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// getFirstIP extracts the first IP from a comma-separated list
func getFirstIP(ips string) string {
	for i, char := range ips {
		if char == ',' || char == ' ' {
			return ips[:i]
		}
	}
	return ips
}
