// Package blobstore defines the port for per-actor document slots.
package blobstore

import "context"

// Store is a key-value blob store keyed by actor ID and a fixed slot name
// (for example "profile-image"). Put returns a URL the UI shell can render.
type Store interface {
	Put(ctx context.Context, actorID, slot string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, actorID, slot string) (string, bool, error)
	Delete(ctx context.Context, actorID, slot string) error
}
