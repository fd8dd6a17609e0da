package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON envelope for error responses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the payload inside ErrorResponse.
type ErrorBody struct {
	Code          string         `json:"code"`
	Message       string         `json:"message"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// WriteJSON writes v as JSON with the provided status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError copies the error's output headers and writes the JSON envelope.
func WriteError(w http.ResponseWriter, he *HTTPError) {
	for name, values := range he.Headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	status := he.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	WriteJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:          he.Code,
		Message:       he.Message,
		CorrelationID: he.CorrelationID,
		Details:       he.Details,
	}})
}
