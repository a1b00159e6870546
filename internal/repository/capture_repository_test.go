package repository

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	apperrors "go-tree-inspector/internal/errors"
	"go-tree-inspector/internal/storage"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSourceRepository_Load(t *testing.T) {
	repo := NewSourceRepository()

	photo, err := repo.Load(context.Background(), storage.NewBytesSource("oak.png", encodePNG(t, 40, 60)))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if photo.Image.Width != 40 || photo.Image.Height != 60 {
		t.Errorf("Expected 40x60, got %dx%d", photo.Image.Width, photo.Image.Height)
	}
	if photo.Image.Format != "png" {
		t.Errorf("Expected png, got %s", photo.Image.Format)
	}
	if photo.Source != "upload:oak.png" {
		t.Errorf("Unexpected source %s", photo.Source)
	}
}

func TestSourceRepository_LoadErrors(t *testing.T) {
	repo := NewSourceRepository()
	ctx := context.Background()

	if _, err := repo.Load(ctx, nil); !errors.Is(err, ErrNoSource) {
		t.Errorf("Expected ErrNoSource, got %v", err)
	}

	_, err := repo.Load(ctx, storage.NewBytesSource("empty", nil))
	if !errors.Is(err, ErrEmptyPhoto) || !apperrors.IsType(err, apperrors.ErrorTypeInvalidImage) {
		t.Errorf("Expected invalid image error for empty photo, got %v", err)
	}

	_, err = repo.Load(ctx, storage.NewBytesSource("junk", []byte("not an image")))
	if !apperrors.IsType(err, apperrors.ErrorTypeInvalidImage) {
		t.Errorf("Expected invalid image error for junk, got %v", err)
	}
}
