package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/middleware"
)

const refreshCookieName = "openlease_refresh"

func setRefreshCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/api/v1/auth",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}

// RegisterActor handles POST /api/v1/auth/register
func (h *Handlers) RegisterActor(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[actor.CreateRequest](w, r)
	if !ok {
		return
	}

	a, err := h.Sessions.Register(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Login handles POST /api/v1/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[actor.LoginRequest](w, r)
	if !ok {
		return
	}

	resp, rawRefresh, err := h.Sessions.Login(r.Context(), req)
	if err != nil {
		slog.Debug("login failed", "email", req.Email, "error", err)
		writeDomainError(w, err, "invalid credentials")
		return
	}

	setRefreshCookie(w, rawRefresh, int(30*24*time.Hour/time.Second))
	writeJSON(w, http.StatusOK, resp)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "no refresh token")
		return
	}

	resp, newRawRefresh, err := h.Sessions.Refresh(r.Context(), cookie.Value)
	if err != nil {
		slog.Debug("token refresh failed", "error", err)
		setRefreshCookie(w, "", -1)
		writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	setRefreshCookie(w, newRawRefresh, int(30*24*time.Hour/time.Second))
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /api/v1/auth/logout
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	a := middleware.ActorFromContext(r.Context())
	if a == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var jti string
	var tokenExpiry time.Time
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		jti = claims.JTI
		tokenExpiry = time.Unix(claims.Expiry, 0)
	}

	if err := h.Sessions.Logout(r.Context(), a.ID, jti, tokenExpiry); err != nil {
		writeDomainError(w, err, "logout failed")
		return
	}

	setRefreshCookie(w, "", -1)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// GetCurrentActor handles GET /api/v1/auth/me
func (h *Handlers) GetCurrentActor(w http.ResponseWriter, r *http.Request) {
	a := middleware.ActorFromContext(r.Context())
	if a == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, a)
}
