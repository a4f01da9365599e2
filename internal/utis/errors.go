package utils

import (
	"errors"
	"fmt"

	models "github.com/satyam-kanaujiya/watchtube/internal/media"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrNoContent      = errors.New("no content")
	ErrRecordCreation = errors.New("record creation failed")
)

// ValidationError is the caller's fault; nothing remote was touched and
// no compensation is needed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AssetUploadError means the object store rejected or timed out on one
// asset. Kind names the asset that failed, not the ones that succeeded.
type AssetUploadError struct {
	Kind models.AssetKind
	Err  error
}

func (e *AssetUploadError) Error() string {
	return fmt.Sprintf("%s upload failed: %v", e.Kind, e.Err)
}

func (e *AssetUploadError) Unwrap() error { return e.Err }
