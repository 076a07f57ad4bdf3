package common

import (
	"encoding/json"
	"log"
	"net/http"
)

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger *log.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Printf("JSON エンコードに失敗: %v", err)
	}
}

// WriteError writes a single-message error payload.
func WriteError(logger *log.Logger, w http.ResponseWriter, status int, message string) {
	WriteJSON(logger, w, status, map[string]string{"error": message})
}

// FieldErrorPayload is one entry of a validation error response.
type FieldErrorPayload struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// WriteValidationError writes a 400 with the per-field failure list.
func WriteValidationError(logger *log.Logger, w http.ResponseWriter, fields []FieldErrorPayload) {
	WriteJSON(logger, w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}
