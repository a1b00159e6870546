//go:build !gocv

package storage

import (
	"context"
	"fmt"

	apperrors "go-tree-inspector/internal/errors"
)

// CameraSource is unavailable without the gocv build tag
type CameraSource struct {
	device int
}

// NewCameraSource returns a source whose Acquire always fails; build with -tags gocv for camera support
func NewCameraSource(device int) ImageSource {
	return &CameraSource{device: device}
}

func (s *CameraSource) Acquire(ctx context.Context) ([]byte, error) {
	return nil, apperrors.NewUnavailableError("camera capture requires a build with -tags gocv", nil)
}

func (s *CameraSource) Describe() string {
	return fmt.Sprintf("camera:%d", s.device)
}

// CameraAvailable reports whether this binary was built with camera support
func CameraAvailable() bool { return false }
