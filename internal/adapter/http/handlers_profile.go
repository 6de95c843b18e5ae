package http

import (
	"io"
	"net/http"

	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/middleware"
)

// GetProfile handles GET /api/v1/profile
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	a, err := h.Profile.Get(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// UpdateProfile handles PUT /api/v1/profile
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[actor.UpdateRequest](w, r)
	if !ok {
		return
	}

	a, err := h.Profile.Update(r.Context(), req, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// UploadProfileImage handles PUT /api/v1/profile/image. The body is the raw
// image; Content-Type declares the format.
func (h *Handlers) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.Profile.SetImage(r.Context(), data, contentType, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// DeleteProfileImage handles DELETE /api/v1/profile/image
func (h *Handlers) DeleteProfileImage(w http.ResponseWriter, r *http.Request) {
	if err := h.Profile.RemoveImage(r.Context(), middleware.ActorFromContext(r.Context())); err != nil {
		writeDomainError(w, err, "profile not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeDocument handles GET /api/v1/documents/{actorID}/{slot}
func (h *Handlers) ServeDocument(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.Documents.Fetch(r.Context(), urlParam(r, "actorID"), urlParam(r, "slot"))
	if err != nil {
		writeDomainError(w, err, "document not found")
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
