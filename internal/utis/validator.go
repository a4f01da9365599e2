package utils

import (
	"mime/multipart"
	"strings"

	models "github.com/satyam-kanaujiya/watchtube/internal/media"
)

const (
	MaxImageSize = 10 * 1024 * 1024
	MaxVideoSize = 500 * 1024 * 1024
)

var allowedTypes = map[models.AssetKind]map[string]bool{
	models.AssetKindImage: {
		"image/png":  true,
		"image/jpeg": true,
		"image/jpg":  true,
	},
	models.AssetKindVideo: {
		"video/mp4":       true,
		"video/webm":      true,
		"video/quicktime": true,
	},
}

// ValidateFileHeader checks size and declared content type of one
// multipart part before it is staged.
func ValidateFileHeader(h *multipart.FileHeader, kind models.AssetKind) error {
	max := int64(MaxImageSize)
	if kind == models.AssetKindVideo {
		max = MaxVideoSize
	}
	if h.Size == 0 {
		return &ValidationError{Field: string(kind), Reason: "file is empty"}
	}
	if h.Size > max {
		return &ValidationError{Field: string(kind), Reason: "file too large"}
	}
	ct := h.Header.Get("Content-Type")
	if !allowedTypes[kind][ct] {
		return &ValidationError{Field: string(kind), Reason: "content type not allowed"}
	}
	return nil
}

// ParseTags splits a comma-delimited tag string into a deduplicated
// slice, preserving first-occurrence order. An empty input is a valid
// empty set.
func ParseTags(csv string) []string {
	tags := []string{}
	seen := map[string]bool{}
	for _, t := range strings.Split(csv, ",") {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}
