package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON serializes data to JSON and writes it with the given status code
// and an "application/json" content type. If marshaling fails, it responds
// with 500 Internal Server Error and returns a wrapped error.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"traceId,omitempty"`
}

// WriteJSONError writes an ErrorResponse carrying msg and the trace id of r.
func WriteJSONError(w http.ResponseWriter, r *http.Request, msg string, statusCode int) {
	resp := ErrorResponse{Error: msg}
	if traceID, ok := GetTraceIDFromContext(r.Context()); ok {
		resp.TraceID = traceID
	}
	_, _ = WriteJSON(w, resp, statusCode)
}
