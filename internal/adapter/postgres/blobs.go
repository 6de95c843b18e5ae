package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/openlease/openlease/internal/domain"
)

// Blobs implements blobstore.Store on top of the actor_documents table.
// Returned URLs point at the document-serving endpoint of the HTTP shell.
type Blobs struct {
	store   *Store
	baseURL string
}

// NewBlobs creates a blob store. baseURL is the public prefix under which
// documents are served, e.g. "/api/v1/documents".
func NewBlobs(store *Store, baseURL string) *Blobs {
	return &Blobs{store: store, baseURL: baseURL}
}

func (b *Blobs) Put(ctx context.Context, actorID, slot string, data []byte, contentType string) (string, error) {
	_, err := b.store.pool.Exec(ctx,
		`INSERT INTO actor_documents (actor_id, slot, data, content_type)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (actor_id, slot)
		 DO UPDATE SET data = EXCLUDED.data, content_type = EXCLUDED.content_type, updated_at = now()`,
		actorID, slot, data, contentType)
	if err != nil {
		return "", fmt.Errorf("put document %s/%s: %w", actorID, slot, err)
	}
	return b.url(actorID, slot), nil
}

func (b *Blobs) Get(ctx context.Context, actorID, slot string) (string, bool, error) {
	var exists bool
	err := b.store.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM actor_documents WHERE actor_id = $1 AND slot = $2)`,
		actorID, slot).Scan(&exists)
	if err != nil {
		return "", false, fmt.Errorf("get document %s/%s: %w", actorID, slot, err)
	}
	if !exists {
		return "", false, nil
	}
	return b.url(actorID, slot), true, nil
}

func (b *Blobs) Delete(ctx context.Context, actorID, slot string) error {
	_, err := b.store.pool.Exec(ctx,
		`DELETE FROM actor_documents WHERE actor_id = $1 AND slot = $2`, actorID, slot)
	if err != nil {
		return fmt.Errorf("delete document %s/%s: %w", actorID, slot, err)
	}
	return nil
}

// Fetch returns the raw bytes and content type for serving.
func (b *Blobs) Fetch(ctx context.Context, actorID, slot string) ([]byte, string, error) {
	var data []byte
	var contentType string
	err := b.store.pool.QueryRow(ctx,
		`SELECT data, content_type FROM actor_documents WHERE actor_id = $1 AND slot = $2`,
		actorID, slot).Scan(&data, &contentType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", fmt.Errorf("fetch document %s/%s: %w", actorID, slot, domain.ErrNotFound)
		}
		return nil, "", fmt.Errorf("fetch document %s/%s: %w", actorID, slot, err)
	}
	return data, contentType, nil
}

func (b *Blobs) url(actorID, slot string) string {
	return b.baseURL + "/" + actorID + "/" + slot
}
