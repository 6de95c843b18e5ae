package http

import (
	"net/http"

	"github.com/openlease/openlease/internal/domain/application"
	"github.com/openlease/openlease/internal/middleware"
)

// SubmitApplication handles POST /api/v1/applications
func (h *Handlers) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[application.CreateRequest](w, r)
	if !ok {
		return
	}

	app, err := h.Lifecycle.SubmitApplication(r.Context(), req, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "property not found")
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// AdvanceApplication handles POST /api/v1/applications/{id}/advance
func (h *Handlers) AdvanceApplication(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[struct {
		Status application.Status `json:"status"`
	}](w, r)
	if !ok {
		return
	}

	app, err := h.Lifecycle.Advance(r.Context(), urlParam(r, "id"), req.Status, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "application not found")
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// ListApplications handles GET /api/v1/applications. Landlords filter by the
// property query parameter; tenants always see their own.
func (h *Handlers) ListApplications(w http.ResponseWriter, r *http.Request) {
	propertyID := r.URL.Query().Get("property")
	apps, err := h.Lifecycle.ListApplications(r.Context(), propertyID, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "applications not found")
		return
	}
	writeJSON(w, http.StatusOK, apps)
}
