package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	models "github.com/satyam-kanaujiya/watchtube/internal/media"
	"github.com/satyam-kanaujiya/watchtube/internal/repository"
	"github.com/satyam-kanaujiya/watchtube/internal/storage"
	utils "github.com/satyam-kanaujiya/watchtube/internal/utis"
)

// Cache holds short-lived presigned URLs. Optional; a nil Cache
// disables caching.
type Cache interface {
	Set(ctx context.Context, key string, val string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

type MediaService struct {
	repo       repository.VideoRepository
	store      storage.ObjectStore
	cache      Cache
	presignTTL time.Duration
	log        *zap.SugaredLogger
}

func NewMediaService(repo repository.VideoRepository, store storage.ObjectStore, cache Cache, presignTTL time.Duration, log *zap.SugaredLogger) *MediaService {
	return &MediaService{repo: repo, store: store, cache: cache, presignTTL: presignTTL, log: log}
}

func (s *MediaService) GetVideo(ctx context.Context, id string) (*models.Media, error) {
	return s.repo.FindByID(ctx, id)
}

// IncrementViews delegates to the repository's atomic increment.
// Concurrent calls never lose an update; there is no read-modify-write
// here.
func (s *MediaService) IncrementViews(ctx context.Context, id string) (*models.Media, error) {
	return s.repo.IncrementField(ctx, id, "views", 1)
}

// UpdateMedia applies a validated partial update on behalf of the
// record owner. Concurrent owner updates are last-write-wins.
func (s *MediaService) UpdateMedia(ctx context.Context, id, requesterID string, patch models.MediaPatch) (*models.Media, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.OwnerID != requesterID {
		return nil, utils.ErrForbidden
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, &utils.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return nil, &utils.ValidationError{Field: "description", Reason: "must not be empty"}
	}
	return s.repo.UpdateByID(ctx, id, patch)
}

// GetSignedURL returns a presigned playback URL for the video asset,
// cached a bit under the presign TTL so a cached URL is never expired.
func (s *MediaService) GetSignedURL(ctx context.Context, id string) (string, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	key := "surl:" + m.VideoAsset.StorageID
	if s.cache != nil {
		if u, err := s.cache.Get(ctx, key); err == nil && u != "" {
			return u, nil
		}
	}
	u, err := s.store.PresignURL(ctx, m.VideoAsset.StorageID, s.presignTTL)
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		ttl := s.presignTTL - 30*time.Second
		if ttl > 0 {
			if err := s.cache.Set(ctx, key, u, ttl); err != nil {
				s.log.Warnw("signed url cache set failed", "key", key, "error", err)
			}
		}
	}
	return u, nil
}
