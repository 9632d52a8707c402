package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/cobjpanel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
}

// RecordResponse is the JSON representation of a CRM object record.
type RecordResponse struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  string            `json:"created_at,omitempty"`
	UpdatedAt  string            `json:"updated_at,omitempty"`
	Archived   bool              `json:"archived"`
}

// RecordListResponse is the JSON body of the list endpoint.
type RecordListResponse struct {
	ObjectType string           `json:"object_type"`
	Properties []string         `json:"properties"`
	Records    []RecordResponse `json:"records"`
}

// CreateRecordRequest is the JSON body for the create endpoint. Keys outside
// the configured property list are dropped.
type CreateRecordRequest struct {
	Properties map[string]string `json:"properties"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status          string `json:"status"`
	Time            string `json:"time"`
	ObjectType      string `json:"object_type"`
	TokenConfigured bool   `json:"token_configured"`
}

// toRecordResponse converts a domain Record to its JSON response representation.
// Only the configured properties are exposed.
func toRecordResponse(rec model.Record, properties []string) RecordResponse {
	props := make(map[string]string, len(properties))
	for _, name := range properties {
		if v, ok := rec.Properties[name]; ok {
			props[name] = v
		}
	}

	return RecordResponse{
		ID:         rec.ID,
		Properties: props,
		CreatedAt:  formatTime(rec.CreatedAt),
		UpdatedAt:  formatTime(rec.UpdatedAt),
		Archived:   rec.Archived,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
