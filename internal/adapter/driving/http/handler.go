// Package httphandler implements the JSON API driving adapter.
package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/cobjpanel/internal/application"
	"github.com/ericfisherdev/cobjpanel/internal/domain/model"
)

// maxRequestBody caps the size of JSON request bodies.
const maxRequestBody = 1 << 20

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	records         *application.RecordService
	tokenConfigured bool
	logger          *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(records *application.RecordService, tokenConfigured bool, logger *slog.Logger) *Handler {
	return &Handler{
		records:         records,
		tokenConfigured: tokenConfigured,
		logger:          logger,
	}
}

// RegisterAPIRoutes registers the JSON API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/records", h.ListRecords)
	mux.HandleFunc("POST /api/v1/records", h.CreateRecord)
}

// ApplyMiddleware wraps next with request IDs, access logging and panic
// recovery. Recovery sits innermost so the access log sees the 500.
func ApplyMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	return withRequestID(accessLog(logger, recoverPanics(logger, next)))
}

// Health reports liveness. It never calls the remote store.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:          "ok",
		Time:            time.Now().UTC().Format(time.RFC3339),
		ObjectType:      h.records.ObjectType(),
		TokenConfigured: h.tokenConfigured,
	})
}

// ListRecords returns one page of records with the configured properties.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.ListRecords(r.Context())
	if err != nil {
		h.logger.Error("failed to list records", "object_type", h.records.ObjectType(), "error", err)
		writeRemoteError(w, err)
		return
	}

	properties := h.records.Properties()
	resp := RecordListResponse{
		ObjectType: h.records.ObjectType(),
		Properties: properties,
		Records:    make([]RecordResponse, 0, len(records)),
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, toRecordResponse(rec, properties))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateRecord creates a record from a JSON body of string properties.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req CreateRecordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.records.CreateRecord(r.Context(), model.Submission(req.Properties))
	if err != nil {
		h.logger.Error("failed to create record", "object_type", h.records.ObjectType(), "error", err)
		writeRemoteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecordResponse(record, h.records.Properties()))
}

// writeRemoteError maps an adapter failure to 502 Bad Gateway, passing the
// remote store's message and category through when present.
func writeRemoteError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: model.UserMessage(err)}
	if remote := model.RemoteOf(err); remote != nil {
		resp.Category = remote.Category
	}
	writeJSON(w, http.StatusBadGateway, resp)
}
