package service

import (
	"context"

	models "github.com/satyam-kanaujiya/watchtube/internal/media"
	"github.com/satyam-kanaujiya/watchtube/internal/repository"
	utils "github.com/satyam-kanaujiya/watchtube/internal/utis"
)

const (
	trendingLimit = 10
	randomSample  = 40
	byTagsLimit   = 10
)

// DiscoveryService serves the read-only listing queries. It holds no
// state beyond the repository handle.
type DiscoveryService struct {
	repo repository.VideoRepository
}

func NewDiscoveryService(repo repository.VideoRepository) *DiscoveryService {
	return &DiscoveryService{repo: repo}
}

// Trending returns the top records by view count. An empty repository
// is NoContent, not an error in the lookup sense.
func (s *DiscoveryService) Trending(ctx context.Context) ([]models.Media, error) {
	vids, err := s.repo.Find(ctx, repository.Filter{}, &repository.Sort{Field: "views", Desc: true}, trendingLimit)
	if err != nil {
		return nil, err
	}
	if len(vids) == 0 {
		return nil, utils.ErrNoContent
	}
	return vids, nil
}

// Random samples up to randomSample records without replacement.
func (s *DiscoveryService) Random(ctx context.Context) ([]models.Media, error) {
	vids, err := s.repo.Sample(ctx, randomSample)
	if err != nil {
		return nil, err
	}
	if len(vids) == 0 {
		return nil, utils.ErrNotFound
	}
	return vids, nil
}

// ByTags returns records whose tag set intersects the requested tags.
func (s *DiscoveryService) ByTags(ctx context.Context, tags []string) ([]models.Media, error) {
	return s.repo.Find(ctx, repository.Filter{TagsAny: tags}, nil, byTagsLimit)
}

// Search matches the query case-insensitively against titles.
func (s *DiscoveryService) Search(ctx context.Context, q string) ([]models.Media, error) {
	vids, err := s.repo.Find(ctx, repository.Filter{TitleSubstring: q}, nil, 0)
	if err != nil {
		return nil, err
	}
	if len(vids) == 0 {
		return nil, utils.ErrNotFound
	}
	return vids, nil
}

// SubscribedFeed merges the records of every followed channel, newest
// first. The follower's channel list is resolved upstream.
func (s *DiscoveryService) SubscribedFeed(ctx context.Context, channelIDs []string) ([]models.Media, error) {
	if len(channelIDs) == 0 {
		return []models.Media{}, nil
	}
	return s.repo.Find(ctx, repository.Filter{OwnerIDs: channelIDs}, &repository.Sort{Field: "created_at", Desc: true}, 0)
}
