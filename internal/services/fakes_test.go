package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	models "github.com/satyam-kanaujiya/watchtube/internal/media"
	"github.com/satyam-kanaujiya/watchtube/internal/repository"
	"github.com/satyam-kanaujiya/watchtube/internal/staging"
	"github.com/satyam-kanaujiya/watchtube/internal/storage"
	utils "github.com/satyam-kanaujiya/watchtube/internal/utis"
)

// fakeStore is an in-memory ObjectStore with scriptable failures.
type fakeStore struct {
	mu      sync.Mutex
	nextID  map[models.AssetKind]string
	objects map[string]bool
	deletes []string

	failKind     models.AssetKind
	deleteErr    error
	presignCalls int
	onUpload     func(kind models.AssetKind)
	deleteCtxErr []error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID: map[models.AssetKind]string{
			models.AssetKindImage: "img1",
			models.AssetKindVideo: "vid1",
		},
		objects: map[string]bool{},
	}
}

func (f *fakeStore) Upload(ctx context.Context, localPath string, kind models.AssetKind, progress storage.ProgressFunc) (models.Asset, error) {
	f.mu.Lock()
	hook := f.onUpload
	f.mu.Unlock()
	if hook != nil {
		hook(kind)
	}
	if f.failKind == kind {
		return models.Asset{}, errUploadTimeout
	}
	info, err := os.Stat(localPath)
	if err != nil {
		return models.Asset{}, err
	}
	if progress != nil {
		progress(info.Size()/2, info.Size())
		progress(info.Size(), info.Size())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID[kind]
	f.objects[id] = true
	return models.Asset{StorageID: id, URL: "https://cdn.example.com/" + id}, nil
}

func (f *fakeStore) Delete(ctx context.Context, storageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, storageID)
	f.deleteCtxErr = append(f.deleteCtxErr, ctx.Err())
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, storageID)
	return nil
}

func (f *fakeStore) PresignURL(ctx context.Context, storageID string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presignCalls++
	return "https://signed.example.com/" + storageID, nil
}

// fakeRepo is an in-memory VideoRepository. IncrementField is atomic
// under the mutex, matching the contract of the mongo $inc.
type fakeRepo struct {
	mu        sync.Mutex
	items     map[string]models.Media
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[string]models.Media{}}
}

func (r *fakeRepo) Create(ctx context.Context, m *models.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.items[m.ID] = *m
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id string) (*models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &m, nil
}

func (r *fakeRepo) UpdateByID(ctx context.Context, id string, patch models.MediaPatch) (*models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.Description != nil {
		m.Description = *patch.Description
	}
	if patch.Tags != nil {
		m.Tags = *patch.Tags
	}
	r.items[id] = m
	return &m, nil
}

func (r *fakeRepo) IncrementField(ctx context.Context, id, field string, delta int64) (*models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if field == "views" {
		m.Views += delta
	}
	r.items[id] = m
	return &m, nil
}

func (r *fakeRepo) Find(ctx context.Context, f repository.Filter, s *repository.Sort, limit int64) ([]models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Media{}
	for _, m := range r.items {
		if len(f.OwnerIDs) > 0 && !contains(f.OwnerIDs, m.OwnerID) {
			continue
		}
		if len(f.TagsAny) > 0 && !intersects(f.TagsAny, m.Tags) {
			continue
		}
		if f.TitleSubstring != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(f.TitleSubstring)) {
			continue
		}
		out = append(out, m)
	}
	if s != nil {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if s.Desc {
				a, b = b, a
			}
			switch s.Field {
			case "views":
				return a.Views < b.Views
			case "created_at":
				return a.CreatedAt.Before(b.CreatedAt)
			default:
				return a.ID < b.ID
			}
		})
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) Sample(ctx context.Context, n int64) ([]models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Media{}
	for _, m := range r.items {
		if int64(len(out)) >= n {
			break
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if contains(b, x) {
			return true
		}
	}
	return false
}

func assertReleased(t *testing.T, in PublishInput) {
	t.Helper()
	if in.Image != nil && !in.Image.Released() {
		t.Error("staged image was not released")
	}
	if in.Video != nil && !in.Video.Released() {
		t.Error("staged video was not released")
	}
}

func stageImage(t *testing.T) *staging.StagedFile {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return stageBytes(t, "poster.png", models.AssetKindImage, buf.Bytes())
}

func stageVideo(t *testing.T) *staging.StagedFile {
	t.Helper()
	return stageBytes(t, "clip.mp4", models.AssetKindVideo, []byte("not really mp4 but bytes"))
}

func stageBytes(t *testing.T, name string, kind models.AssetKind, data []byte) *staging.StagedFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return &staging.StagedFile{Path: path, Kind: kind, Size: int64(len(data))}
}
