package http

import (
	"context"

	"github.com/openlease/openlease/internal/service"
)

// DocumentFetcher serves stored document bytes. Implemented by the postgres
// blob store.
type DocumentFetcher interface {
	Fetch(ctx context.Context, actorID, slot string) ([]byte, string, error)
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Sessions  *service.SessionService
	Lifecycle *service.LifecycleService
	Property  *service.PropertyService
	Profile   *service.ProfileService
	Dashboard *service.DashboardService
	Documents DocumentFetcher

	// ReadyCheck reports whether downstream dependencies are reachable.
	// Used by the readiness probe; nil means always ready.
	ReadyCheck func(ctx context.Context) error
}
