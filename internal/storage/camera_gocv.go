//go:build gocv

package storage

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	apperrors "go-tree-inspector/internal/errors"
)

// warmupFrames are discarded so auto-exposure settles before the capture
const warmupFrames = 5

// CameraSource grabs a single frame from a local video device and encodes it as PNG
type CameraSource struct {
	device int
}

// NewCameraSource opens nothing until Acquire is called
func NewCameraSource(device int) ImageSource {
	return &CameraSource{device: device}
}

func (s *CameraSource) Acquire(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	webcam, err := gocv.OpenVideoCapture(s.device)
	if err != nil {
		return nil, apperrors.NewUnavailableError("unable to access the camera", err)
	}
	defer webcam.Close()

	if !webcam.IsOpened() {
		return nil, apperrors.NewUnavailableError(fmt.Sprintf("camera %d is not open", s.device), nil)
	}

	frame := gocv.NewMat()
	defer frame.Close()

	for i := 0; i <= warmupFrames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ok := webcam.Read(&frame); !ok {
			return nil, apperrors.NewProcessingError("failed to grab frame", nil)
		}
	}
	if frame.Empty() {
		return nil, apperrors.NewProcessingError("camera returned an empty frame", nil)
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, frame)
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to encode frame", err)
	}
	defer buf.Close()

	// GetBytes aliases C memory released by Close
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

func (s *CameraSource) Describe() string {
	return fmt.Sprintf("camera:%d", s.device)
}

// CameraAvailable reports whether this binary was built with camera support
func CameraAvailable() bool { return true }
