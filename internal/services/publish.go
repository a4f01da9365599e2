package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satyam-kanaujiya/watchtube/internal/events"
	models "github.com/satyam-kanaujiya/watchtube/internal/media"
	"github.com/satyam-kanaujiya/watchtube/internal/repository"
	"github.com/satyam-kanaujiya/watchtube/internal/staging"
	"github.com/satyam-kanaujiya/watchtube/internal/storage"
	utils "github.com/satyam-kanaujiya/watchtube/internal/utis"
)

// publishStage enumerates the states one PublishMedia call moves
// through, so partial-failure transitions are explicit.
type publishStage int

const (
	stageUploadingImage publishStage = iota
	stageUploadingVideo
	stagePersisting
	stageCompensating
	stageDone
)

func (s publishStage) String() string {
	switch s {
	case stageUploadingImage:
		return "uploading_image"
	case stageUploadingVideo:
		return "uploading_video"
	case stagePersisting:
		return "persisting"
	case stageCompensating:
		return "compensating"
	case stageDone:
		return "done"
	}
	return "unknown"
}

// ProgressFunc reports transfer progress for one asset kind.
type ProgressFunc func(kind models.AssetKind, bytesSent, totalBytes int64)

// PublishInput carries everything one publish needs. Image and Video
// are exclusively owned by this call and are released before it
// returns, on every path.
type PublishInput struct {
	OwnerID     string
	Title       string
	Description string
	Tags        []string
	Image       *staging.StagedFile
	Video       *staging.StagedFile
	Progress    ProgressFunc // optional
}

// PublishService sequences the two remote uploads and the metadata
// write, and compensates on partial failure. It is the only component
// allowed to delete remote objects it just created.
type PublishService struct {
	repo      repository.VideoRepository
	store     storage.ObjectStore
	publisher *events.Publisher
	log       *zap.SugaredLogger

	compensateTimeout time.Duration
}

func NewPublishService(repo repository.VideoRepository, store storage.ObjectStore, publisher *events.Publisher, log *zap.SugaredLogger) *PublishService {
	return &PublishService{
		repo:              repo,
		store:             store,
		publisher:         publisher,
		log:               log,
		compensateTimeout: 30 * time.Second,
	}
}

// PublishMedia uploads the staged image, then the staged video, then
// creates the Media record. A record never exists without both remote
// objects; a failed step deletes whatever remote objects this call
// already created (best effort, log-and-ignore).
func (s *PublishService) PublishMedia(ctx context.Context, in PublishInput) (*models.Media, error) {
	// backstop; Release is idempotent so the eager releases below win
	defer s.release(in.Image)
	defer s.release(in.Video)

	if err := validatePublishInput(in); err != nil {
		return nil, err
	}
	if err := normalizeThumbnail(in.Image); err != nil {
		return nil, err
	}

	stage := stageUploadingImage
	s.log.Debugw("publish", "stage", stage.String(), "owner", in.OwnerID)
	imgAsset, err := s.store.Upload(ctx, in.Image.Path, models.AssetKindImage, s.progressFor(in, models.AssetKindImage))
	if err != nil {
		s.release(in.Image)
		s.release(in.Video)
		return nil, &utils.AssetUploadError{Kind: models.AssetKindImage, Err: err}
	}

	stage = stageUploadingVideo
	s.log.Debugw("publish", "stage", stage.String(), "owner", in.OwnerID)
	vidAsset, err := s.store.Upload(ctx, in.Video.Path, models.AssetKindVideo, s.progressFor(in, models.AssetKindVideo))
	if err != nil {
		s.release(in.Image)
		s.release(in.Video)
		s.compensate(ctx, imgAsset)
		return nil, &utils.AssetUploadError{Kind: models.AssetKindVideo, Err: err}
	}

	// bytes are durably remote; the staged copies are done either way
	s.release(in.Image)
	s.release(in.Video)

	stage = stagePersisting
	s.log.Debugw("publish", "stage", stage.String(), "owner", in.OwnerID)
	m := &models.Media{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Title:       in.Title,
		Description: in.Description,
		Tags:        in.Tags,
		ImageAsset:  imgAsset,
		VideoAsset:  vidAsset,
		Views:       0,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		s.compensate(ctx, imgAsset, vidAsset)
		return nil, fmt.Errorf("%w: %v", utils.ErrRecordCreation, err)
	}

	stage = stageDone
	s.log.Infow("publish", "stage", stage.String(), "media_id", m.ID, "owner", in.OwnerID)
	if err := s.publisher.PublishMediaPublished(ctx, m); err != nil {
		s.log.Warnw("media.published event dropped", "media_id", m.ID, "error", err)
	}
	return m, nil
}

func validatePublishInput(in PublishInput) error {
	if strings.TrimSpace(in.OwnerID) == "" {
		return &utils.ValidationError{Field: "owner", Reason: "required"}
	}
	if strings.TrimSpace(in.Title) == "" {
		return &utils.ValidationError{Field: "title", Reason: "required"}
	}
	if strings.TrimSpace(in.Description) == "" {
		return &utils.ValidationError{Field: "description", Reason: "required"}
	}
	if in.Image == nil || in.Image.Size == 0 {
		return &utils.ValidationError{Field: "img", Reason: "staged image missing or empty"}
	}
	if in.Video == nil || in.Video.Size == 0 {
		return &utils.ValidationError{Field: "video", Reason: "staged video missing or empty"}
	}
	return nil
}

// compensate deletes remote objects this call created. Deletes are
// attempted independently and failures are logged, never surfaced: a
// lost delete leaves a bounded orphan object, while failing the request
// over it would turn a recoverable orphan into a stuck request. Runs on
// a detached context so a cancelled request still cleans up.
func (s *PublishService) compensate(ctx context.Context, assets ...models.Asset) {
	s.log.Debugw("publish", "stage", stageCompensating.String())
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.compensateTimeout)
	defer cancel()
	for _, a := range assets {
		if err := s.store.Delete(dctx, a.StorageID); err != nil {
			s.log.Warnw("compensating delete failed", "storage_id", a.StorageID, "error", err)
		} else {
			s.log.Infow("compensating delete", "storage_id", a.StorageID)
		}
	}
}

func (s *PublishService) release(f *staging.StagedFile) {
	if f == nil || f.Released() {
		return
	}
	if err := f.Release(); err != nil {
		s.log.Warnw("staged file release failed", "path", f.Path, "error", err)
	}
}

func (s *PublishService) progressFor(in PublishInput, kind models.AssetKind) storage.ProgressFunc {
	if in.Progress == nil {
		return nil
	}
	return func(sent, total int64) {
		in.Progress(kind, sent, total)
	}
}
