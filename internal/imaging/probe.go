// Package imaging reads what the workflow needs from encoded photos.
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	apperrors "go-tree-inspector/internal/errors"
	"go-tree-inspector/pkg/models"
)

// Probe reads the image header and returns its dimensions without decoding pixels.
// Empty, truncated or unrecognised data yields an invalid_image error.
func Probe(data []byte) (models.CapturedImage, error) {
	if len(data) == 0 {
		return models.CapturedImage{}, apperrors.NewInvalidImageError("image is empty", nil)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.CapturedImage{}, apperrors.NewInvalidImageError("cannot determine image dimensions", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return models.CapturedImage{}, apperrors.NewInvalidImageError("image reports no dimensions", nil)
	}

	return models.CapturedImage{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}, nil
}
