package service

import (
	"os"

	"github.com/disintegration/imaging"

	"github.com/satyam-kanaujiya/watchtube/internal/staging"
	utils "github.com/satyam-kanaujiya/watchtube/internal/utis"
)

const maxThumbWidth = 1280

// normalizeThumbnail decodes the staged poster image and downscales it
// in place when it is wider than maxThumbWidth. Decoding doubles as the
// "staged image is a real image" check.
func normalizeThumbnail(f *staging.StagedFile) error {
	img, err := imaging.Open(f.Path)
	if err != nil {
		return &utils.ValidationError{Field: "img", Reason: "not a decodable image"}
	}
	if img.Bounds().Dx() <= maxThumbWidth {
		return nil
	}
	resized := imaging.Resize(img, maxThumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(resized, f.Path, imaging.JPEGQuality(85)); err != nil {
		return &utils.ValidationError{Field: "img", Reason: "cannot re-encode image"}
	}
	if info, err := os.Stat(f.Path); err == nil {
		f.Size = info.Size()
	}
	return nil
}
