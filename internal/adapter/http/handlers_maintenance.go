package http

import (
	"net/http"

	"github.com/openlease/openlease/internal/domain/maintenance"
	"github.com/openlease/openlease/internal/middleware"
)

// ReportMaintenance handles POST /api/v1/maintenance
func (h *Handlers) ReportMaintenance(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[maintenance.CreateRequest](w, r)
	if !ok {
		return
	}

	m, err := h.Lifecycle.ReportMaintenance(r.Context(), req, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "property not found")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// AssignContractor handles POST /api/v1/maintenance/{id}/assign
func (h *Handlers) AssignContractor(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[maintenance.Contractor](w, r)
	if !ok {
		return
	}

	m, err := h.Lifecycle.AssignContractor(r.Context(), urlParam(r, "id"), req, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "maintenance request not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CompleteMaintenance handles POST /api/v1/maintenance/{id}/complete
func (h *Handlers) CompleteMaintenance(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[struct {
		ActualCost float64 `json:"actual_cost"`
	}](w, r)
	if !ok {
		return
	}

	m, err := h.Lifecycle.Complete(r.Context(), urlParam(r, "id"), req.ActualCost, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "maintenance request not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CancelMaintenance handles POST /api/v1/maintenance/{id}/cancel
func (h *Handlers) CancelMaintenance(w http.ResponseWriter, r *http.Request) {
	m, err := h.Lifecycle.Cancel(r.Context(), urlParam(r, "id"), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "maintenance request not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ListMaintenance handles GET /api/v1/maintenance
func (h *Handlers) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Lifecycle.ListMaintenance(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "maintenance requests not found")
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}
