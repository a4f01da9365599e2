package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	models "github.com/satyam-kanaujiya/watchtube/internal/media"
)

// ObjectStore is the contract the orchestrator requires of remote binary
// storage: at-least-once, possibly slow, possibly failing.
type ObjectStore interface {
	Upload(ctx context.Context, localPath string, kind models.AssetKind, progress ProgressFunc) (models.Asset, error)
	Delete(ctx context.Context, storageID string) error
	PresignURL(ctx context.Context, storageID string, ttl time.Duration) (string, error)
}

type S3Store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	presigner  *s3.PresignClient
	bucket     string
	region     string
	endpoint   string
	publicRead bool
}

func NewS3Store(ctx context.Context, region, bucket, endpoint string, publicRead bool) (*S3Store, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// custom endpoint (MinIO) needs path-style addressing
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{
		client:     client,
		uploader:   manager.NewUploader(client),
		presigner:  s3.NewPresignClient(client),
		bucket:     bucket,
		region:     region,
		endpoint:   endpoint,
		publicRead: publicRead,
	}, nil
}

// Upload streams a staged file into the bucket under a kind-prefixed
// key and returns the storage id plus a retrieval URL.
func (s *S3Store) Upload(ctx context.Context, localPath string, kind models.AssetKind, progress ProgressFunc) (models.Asset, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return models.Asset{}, fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return models.Asset{}, fmt.Errorf("stat staged file: %w", err)
	}

	ext := filepath.Ext(localPath)
	key := string(kind) + "s/" + uuid.NewString() + ext
	ct := mime.TypeByExtension(ext)
	if ct == "" {
		ct = "application/octet-stream"
	}

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        newProgressReader(f, info.Size(), progress),
		ContentType: aws.String(ct),
	})
	if err != nil {
		return models.Asset{}, fmt.Errorf("upload %s: %w", key, err)
	}
	return models.Asset{StorageID: key, URL: s.objectURL(key)}, nil
}

func (s *S3Store) Delete(ctx context.Context, storageID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageID),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", storageID, err)
	}
	return nil
}

func (s *S3Store) PresignURL(ctx context.Context, storageID string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageID),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// objectURL builds the canonical retrieval URL. Keys are generated
// here from UUIDs, so no escaping is needed.
func (s *S3Store) objectURL(key string) string {
	if s.endpoint != "" {
		return strings.TrimSuffix(s.endpoint, "/") + "/" + s.bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
