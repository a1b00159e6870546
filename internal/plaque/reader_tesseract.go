//go:build tesseract

package plaque

import (
	"context"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	apperrors "go-tree-inspector/internal/errors"
)

// TesseractReader runs OCR through libtesseract
type TesseractReader struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewReader creates a tesseract-backed reader for the given language (e.g. "eng")
func NewReader(language string) (Reader, error) {
	client := gosseract.NewClient()
	if language != "" {
		if err := client.SetLanguage(language); err != nil {
			client.Close()
			return nil, apperrors.NewInternalError("cannot set OCR language", err)
		}
	}
	return &TesseractReader{client: client}, nil
}

// Read is serialised; a gosseract client is not safe for concurrent use
func (r *TesseractReader) Read(ctx context.Context, photo []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.SetImageFromBytes(photo); err != nil {
		return "", apperrors.NewProcessingError("cannot load image for OCR", err)
	}
	text, err := r.client.Text()
	if err != nil {
		return "", apperrors.NewProcessingError("OCR failed", err)
	}
	return strings.TrimSpace(text), nil
}

func (r *TesseractReader) Close() error {
	return r.client.Close()
}

// Available reports whether OCR was compiled in
func Available() bool { return true }
