//go:build !gocv

package storage

import (
	"context"
	"testing"

	apperrors "go-tree-inspector/internal/errors"
)

func TestCameraSource_UnavailableWithoutGoCV(t *testing.T) {
	if CameraAvailable() {
		t.Fatal("Expected camera to be unavailable in a build without gocv")
	}
	src := NewCameraSource(0)
	_, err := src.Acquire(context.Background())
	if !apperrors.IsType(err, apperrors.ErrorTypeUnavailable) {
		t.Errorf("Expected unavailable error, got %v", err)
	}
	if src.Describe() != "camera:0" {
		t.Errorf("Unexpected description %s", src.Describe())
	}
}
