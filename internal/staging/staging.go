package staging

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync/atomic"

	models "github.com/satyam-kanaujiya/watchtube/internal/media"
)

// Store spools uploaded bytes to a local directory until they have been
// moved to remote storage.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Stage copies one multipart part into the staging directory. The
// returned file is exclusively owned by the caller until released.
func (s *Store) Stage(fh *multipart.FileHeader, kind models.AssetKind) (*StagedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open multipart file: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.dir, string(kind)+"-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return nil, fmt.Errorf("spool %s: %w", fh.Filename, err)
	}
	return &StagedFile{Path: dst.Name(), Kind: kind, Size: n}, nil
}

// StagedFile is an ephemeral local copy of one uploaded asset.
type StagedFile struct {
	Path string
	Kind models.AssetKind
	Size int64

	released atomic.Bool
}

// Release removes the staged bytes. Safe to call more than once; only
// the first call deletes.
func (f *StagedFile) Release() error {
	if f == nil || !f.released.CompareAndSwap(false, true) {
		return nil
	}
	return os.Remove(f.Path)
}

// Released reports whether Release has been called.
func (f *StagedFile) Released() bool {
	return f != nil && f.released.Load()
}
