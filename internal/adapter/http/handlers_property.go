package http

import (
	"net/http"

	"github.com/openlease/openlease/internal/domain/property"
	"github.com/openlease/openlease/internal/middleware"
)

// CreateProperty handles POST /api/v1/properties
func (h *Handlers) CreateProperty(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[property.CreateRequest](w, r)
	if !ok {
		return
	}

	p, err := h.Property.Create(r.Context(), req, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "property not found")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetProperty handles GET /api/v1/properties/{id}
func (h *Handlers) GetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.Property.Get(r.Context(), urlParam(r, "id"), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "property not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProperty handles PUT /api/v1/properties/{id}
func (h *Handlers) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[property.UpdateRequest](w, r)
	if !ok {
		return
	}

	p, err := h.Property.Update(r.Context(), urlParam(r, "id"), req, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "property not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListOwnProperties handles GET /api/v1/properties
func (h *Handlers) ListOwnProperties(w http.ResponseWriter, r *http.Request) {
	props, err := h.Property.ListOwn(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "properties not found")
		return
	}
	writeJSON(w, http.StatusOK, props)
}

// ListAvailableProperties handles GET /api/v1/properties/available
func (h *Handlers) ListAvailableProperties(w http.ResponseWriter, r *http.Request) {
	props, err := h.Property.ListAvailable(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "properties not found")
		return
	}
	writeJSON(w, http.StatusOK, props)
}
