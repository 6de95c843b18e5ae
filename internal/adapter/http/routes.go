package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router. authLimit is
// applied to the credential endpoints only; nil disables it.
func MountRoutes(r chi.Router, h *Handlers, authLimit func(http.Handler) http.Handler) {
	if authLimit == nil {
		authLimit = func(next http.Handler) http.Handler { return next }
	}
	r.Get("/health", h.Health)
	r.Get("/health/ready", h.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Auth (public routes handled by middleware exemption)
		r.With(authLimit).Post("/auth/register", h.RegisterActor)
		r.With(authLimit).Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.Refresh)

		// Auth (authenticated)
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.GetCurrentActor)

		// Properties
		r.Get("/properties/available", h.ListAvailableProperties)
		r.Get("/properties/{id}", h.GetProperty)
		r.With(middleware.RequireRole(actor.RoleLandlord)).Get("/properties", h.ListOwnProperties)
		r.With(middleware.RequireRole(actor.RoleLandlord)).Post("/properties", h.CreateProperty)
		r.With(middleware.RequireRole(actor.RoleLandlord)).Put("/properties/{id}", h.UpdateProperty)

		// Rental applications
		r.With(middleware.RequireRole(actor.RoleTenant)).Post("/applications", h.SubmitApplication)
		r.With(middleware.RequireRole(actor.RoleLandlord)).Post("/applications/{id}/advance", h.AdvanceApplication)
		r.Get("/applications", h.ListApplications)

		// Maintenance requests
		r.Post("/maintenance", h.ReportMaintenance)
		r.Get("/maintenance", h.ListMaintenance)
		r.With(middleware.RequireRole(actor.RoleLandlord)).Post("/maintenance/{id}/assign", h.AssignContractor)
		r.With(middleware.RequireRole(actor.RoleLandlord)).Post("/maintenance/{id}/complete", h.CompleteMaintenance)
		r.Post("/maintenance/{id}/cancel", h.CancelMaintenance)

		// Dashboards
		r.With(middleware.RequireRole(actor.RoleLandlord)).Get("/dashboard/landlord", h.LandlordDashboard)
		r.With(middleware.RequireRole(actor.RoleTenant)).Get("/dashboard/tenant", h.TenantDashboard)

		// Profile and documents
		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
		r.Put("/profile/image", h.UploadProfileImage)
		r.Delete("/profile/image", h.DeleteProfileImage)
		r.Get("/documents/{actorID}/{slot}", h.ServeDocument)
	})
}
