package service

import (
	"context"
	"fmt"
	"time"

	"github.com/openlease/openlease/internal/domain"
	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/port/blobstore"
	"github.com/openlease/openlease/internal/port/cache"
	"github.com/openlease/openlease/internal/port/database"
)

// ProfileImageSlot is the blob slot holding an actor's profile image.
const ProfileImageSlot = "profile-image"

const imageURLCacheTTL = 5 * time.Minute

// ProfileService manages actor profile data and profile images.
type ProfileService struct {
	store database.Store
	blobs blobstore.Store
	cache cache.Cache
}

// NewProfileService creates a new profile service. cache may be nil.
func NewProfileService(store database.Store, blobs blobstore.Store, c cache.Cache) *ProfileService {
	return &ProfileService{store: store, blobs: blobs, cache: c}
}

// Get returns the acting actor's own profile.
func (s *ProfileService) Get(ctx context.Context, acting *actor.Actor) (*actor.Actor, error) {
	if acting == nil {
		return nil, domain.ErrUnauthorized
	}
	a, err := s.store.GetActor(ctx, acting.ID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return a, nil
}

// Update merge-updates the acting actor's profile. Empty fields are left
// unchanged. Email and role are read-only.
func (s *ProfileService) Update(ctx context.Context, req actor.UpdateRequest, acting *actor.Actor) (*actor.Actor, error) {
	if acting == nil {
		return nil, domain.ErrUnauthorized
	}

	a, err := s.store.GetActor(ctx, acting.ID)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if req.DisplayName != "" {
		a.DisplayName = req.DisplayName
	}
	if req.Phone != "" {
		a.Phone = req.Phone
	}
	if req.Bio != "" {
		a.Bio = req.Bio
	}

	if err := s.store.UpdateActor(ctx, a); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return a, nil
}

// SetImage stores the acting actor's profile image and returns its URL.
func (s *ProfileService) SetImage(ctx context.Context, data []byte, contentType string, acting *actor.Actor) (string, error) {
	if acting == nil {
		return "", domain.ErrUnauthorized
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image data is required: %w", domain.ErrValidation)
	}

	url, err := s.blobs.Put(ctx, acting.ID, ProfileImageSlot, data, contentType)
	if err != nil {
		return "", fmt.Errorf("store profile image: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, imageURLCacheKey(acting.ID), []byte(url), imageURLCacheTTL)
	}
	return url, nil
}

// ImageURL returns the URL of an actor's profile image, or ok=false when none
// has been uploaded. URLs are cached briefly since the dashboard renders them
// on every page.
func (s *ProfileService) ImageURL(ctx context.Context, actorID string) (string, bool, error) {
	if s.cache != nil {
		if v, ok, err := s.cache.Get(ctx, imageURLCacheKey(actorID)); err == nil && ok {
			return string(v), true, nil
		}
	}

	url, ok, err := s.blobs.Get(ctx, actorID, ProfileImageSlot)
	if err != nil {
		return "", false, fmt.Errorf("get profile image: %w", err)
	}
	if ok && s.cache != nil {
		_ = s.cache.Set(ctx, imageURLCacheKey(actorID), []byte(url), imageURLCacheTTL)
	}
	return url, ok, nil
}

// RemoveImage deletes the acting actor's profile image. Idempotent.
func (s *ProfileService) RemoveImage(ctx context.Context, acting *actor.Actor) error {
	if acting == nil {
		return domain.ErrUnauthorized
	}
	if err := s.blobs.Delete(ctx, acting.ID, ProfileImageSlot); err != nil {
		return fmt.Errorf("remove profile image: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, imageURLCacheKey(acting.ID))
	}
	return nil
}

func imageURLCacheKey(actorID string) string {
	return "profile-image:" + actorID
}
