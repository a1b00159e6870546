package repository

import (
	"context"

	"go-tree-inspector/internal/storage"
	"go-tree-inspector/pkg/models"
)

// CaptureRepository turns an image source into a probed photo
type CaptureRepository interface {
	// Load acquires the encoded photo and reads its dimensions
	Load(ctx context.Context, source storage.ImageSource) (*Photo, error)
}

// Photo is an acquired photo together with its header metadata
type Photo struct {
	Source string
	Data   []byte
	Image  models.CapturedImage
}
