package repository

import (
	"context"
	"fmt"

	apperrors "go-tree-inspector/internal/errors"
	"go-tree-inspector/internal/imaging"
	"go-tree-inspector/internal/storage"
)

// SourceRepository implements CaptureRepository over any storage.ImageSource
type SourceRepository struct{}

// NewSourceRepository creates a new capture repository
func NewSourceRepository() CaptureRepository {
	return &SourceRepository{}
}

// Load acquires bytes from the source and decodes only the image header
func (r *SourceRepository) Load(ctx context.Context, source storage.ImageSource) (*Photo, error) {
	if source == nil {
		return nil, apperrors.NewValidationError("capture failed", ErrNoSource)
	}

	data, err := source.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, apperrors.NewInvalidImageError(
			fmt.Sprintf("capture from %s failed", source.Describe()), ErrEmptyPhoto)
	}

	img, err := imaging.Probe(data)
	if err != nil {
		return nil, err
	}

	return &Photo{
		Source: source.Describe(),
		Data:   data,
		Image:  img,
	}, nil
}
