//go:build !tesseract

package plaque

import (
	apperrors "go-tree-inspector/internal/errors"
)

// NewReader fails without the tesseract build tag
func NewReader(language string) (Reader, error) {
	return nil, apperrors.NewUnavailableError("plaque OCR requires a build with -tags tesseract", nil)
}

// Available reports whether OCR was compiled in
func Available() bool { return false }
