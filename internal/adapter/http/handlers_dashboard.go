package http

import (
	"net/http"

	"github.com/openlease/openlease/internal/middleware"
)

// LandlordDashboard handles GET /api/v1/dashboard/landlord
func (h *Handlers) LandlordDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Dashboard.Landlord(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "dashboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// TenantDashboard handles GET /api/v1/dashboard/tenant
func (h *Handlers) TenantDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Dashboard.Tenant(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "dashboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, d)
}
