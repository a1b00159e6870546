package storage

import (
	"context"
	"fmt"
	"os"

	apperrors "go-tree-inspector/internal/errors"
)

// ImageSource supplies one encoded photo. Each capture variant (upload,
// remote URL, blob, file, camera) is an ImageSource.
type ImageSource interface {
	Acquire(ctx context.Context) ([]byte, error)
	Describe() string
}

// BytesSource wraps an already-received upload
type BytesSource struct {
	name string
	data []byte
}

// NewBytesSource creates a source over uploaded bytes
func NewBytesSource(name string, data []byte) ImageSource {
	return &BytesSource{name: name, data: data}
}

func (s *BytesSource) Acquire(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.data, nil
}

func (s *BytesSource) Describe() string {
	return "upload:" + s.name
}

// FileSource reads a photo from the local filesystem
type FileSource struct {
	path    string
	maxSize int64
}

// NewFileSource creates a file source; files larger than maxSize are refused
func NewFileSource(path string, maxSize int64) ImageSource {
	return &FileSource{path: path, maxSize: maxSize}
}

func (s *FileSource) Acquire(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("image file %s not found", s.path), err)
		}
		return nil, apperrors.NewInternalError("cannot stat image file", err)
	}
	if s.maxSize > 0 && info.Size() > s.maxSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("image file is %d bytes, limit is %d", info.Size(), s.maxSize), nil)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apperrors.NewInternalError("cannot read image file", err)
	}
	return data, nil
}

func (s *FileSource) Describe() string {
	return "file:" + s.path
}
