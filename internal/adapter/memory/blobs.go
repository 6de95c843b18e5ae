package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/openlease/openlease/internal/domain"
)

type blob struct {
	data        []byte
	contentType string
}

// Blobs is an in-memory implementation of blobstore.Store.
type Blobs struct {
	mu      sync.Mutex
	blobs   map[string]blob
	baseURL string
}

// NewBlobs creates an empty in-memory blob store.
func NewBlobs(baseURL string) *Blobs {
	return &Blobs{blobs: make(map[string]blob), baseURL: baseURL}
}

func (b *Blobs) Put(_ context.Context, actorID, slot string, data []byte, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	b.blobs[actorID+"/"+slot] = blob{data: cp, contentType: contentType}
	return b.url(actorID, slot), nil
}

func (b *Blobs) Get(_ context.Context, actorID, slot string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blobs[actorID+"/"+slot]; !ok {
		return "", false, nil
	}
	return b.url(actorID, slot), true, nil
}

func (b *Blobs) Delete(_ context.Context, actorID, slot string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, actorID+"/"+slot)
	return nil
}

// Fetch returns the raw bytes and content type for serving.
func (b *Blobs) Fetch(_ context.Context, actorID, slot string) ([]byte, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bl, ok := b.blobs[actorID+"/"+slot]
	if !ok {
		return nil, "", fmt.Errorf("fetch document %s/%s: %w", actorID, slot, domain.ErrNotFound)
	}
	return bl.data, bl.contentType, nil
}

func (b *Blobs) url(actorID, slot string) string {
	return b.baseURL + "/" + actorID + "/" + slot
}
