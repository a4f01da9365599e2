package staging

import (
	"bytes"
	"mime/multipart"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/satyam-kanaujiya/watchtube/internal/media"
)

func formFile(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := multipart.NewReader(&body, w.Boundary())
	form, err := r.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestStageCopiesBytes(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	data := []byte("some video bytes")
	f, err := store.Stage(formFile(t, "clip.mp4", data), models.AssetKindVideo)
	require.NoError(t, err)

	assert.Equal(t, models.AssetKindVideo, f.Kind)
	assert.EqualValues(t, len(data), f.Size)

	got, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestReleaseRemovesFileOnce(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	f, err := store.Stage(formFile(t, "poster.png", []byte("img")), models.AssetKindImage)
	require.NoError(t, err)
	assert.False(t, f.Released())

	require.NoError(t, f.Release())
	assert.True(t, f.Released())
	_, statErr := os.Stat(f.Path)
	assert.True(t, os.IsNotExist(statErr))

	// second release is a no-op even though the file is gone
	assert.NoError(t, f.Release())
}

func TestReleaseNilStagedFile(t *testing.T) {
	var f *StagedFile
	assert.NoError(t, f.Release())
	assert.False(t, f.Released())
}
