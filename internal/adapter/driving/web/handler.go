// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/cobjpanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/cobjpanel/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/cobjpanel/internal/application"
	"github.com/ericfisherdev/cobjpanel/internal/domain/model"
)

const (
	homeTitle = "Homepage | Integrating With HubSpot I Practicum"
	formTitle = "Update Custom Object Form | Integrating With HubSpot I Practicum"

	csrfFailedMessage = "Your form session expired. Please submit the form again."
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	records *application.RecordService
	rich    map[string]bool
	logger  *slog.Logger
}

// NewHandler creates a Handler. richProperties names the properties whose
// values are rendered as markdown and edited in a textarea.
func NewHandler(records *application.RecordService, richProperties []string, logger *slog.Logger) *Handler {
	rich := make(map[string]bool, len(richProperties))
	for _, name := range richProperties {
		rich[name] = true
	}

	return &Handler{
		records: records,
		rich:    rich,
		logger:  logger,
	}
}

// Home renders the record table. A failed fetch still renders the page, with
// an empty table and the error banner.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	var errMsg string

	records, err := h.records.ListRecords(r.Context())
	if err != nil {
		h.logger.Error("failed to list records", h.errorAttrs(err)...)
		status = http.StatusInternalServerError
		errMsg = model.UserMessage(err)
		records = model.RecordList{}
	}

	m := toHomeViewModel(h.records.ObjectType(), h.records.Properties(), h.rich, records, errMsg)
	h.render(w, r, status, templates.Layout(homeTitle, pages.Home(m)))
}

// RecordForm renders an empty create form.
func (h *Handler) RecordForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, nil, "")
}

// CreateRecord handles the form post. On success it redirects to the table;
// on failure it re-renders the form with the submitted values and the error.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	sub := submissionFromForm(r)

	if !validateCSRF(r) {
		h.logger.Warn("rejected form post with invalid CSRF token", "path", r.URL.Path)
		h.renderForm(w, r, http.StatusForbidden, sub, csrfFailedMessage)
		return
	}

	record, err := h.records.CreateRecord(r.Context(), sub)
	if err != nil {
		h.logger.Error("failed to create record", h.errorAttrs(err)...)
		h.renderForm(w, r, http.StatusBadRequest, sub, model.UserMessage(err))
		return
	}

	h.logger.Info("record created", "object_type", h.records.ObjectType(), "id", record.ID)
	http.Redirect(w, r, homePath, http.StatusSeeOther)
}

// renderForm renders the create form pre-filled with values, carrying a CSRF
// token that matches the browser's cookie.
func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, values model.Submission, errMsg string) {
	token := csrfToken(w, r)
	m := toFormViewModel(h.records.ObjectType(), h.records.Properties(), h.rich, values, token, errMsg)
	h.render(w, r, status, templates.Layout(formTitle, pages.RecordForm(m)))
}

// render buffers the component so a render failure can still produce a clean 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// errorAttrs returns slog key/value pairs describing an adapter failure,
// including the remote store's error payload when there is one.
func (h *Handler) errorAttrs(err error) []any {
	attrs := []any{"object_type", h.records.ObjectType(), "error", err}
	if remote := model.RemoteOf(err); remote != nil {
		attrs = append(attrs,
			"remote_status", remote.StatusCode,
			"remote_category", remote.Category,
			"remote_message", remote.Message,
			"correlation_id", remote.CorrelationID,
		)
	}
	return attrs
}

// submissionFromForm flattens the posted form body, leaving out the CSRF
// field. For repeated keys the first value wins.
func submissionFromForm(r *http.Request) model.Submission {
	sub := make(model.Submission, len(r.PostForm))
	for key, values := range r.PostForm {
		if key == csrfFormField {
			continue
		}
		if len(values) > 0 {
			sub[key] = values[0]
		}
	}
	return sub
}
