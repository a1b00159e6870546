package repository

import "errors"

var (
	// ErrEmptyPhoto indicates the source returned zero bytes
	ErrEmptyPhoto = errors.New("source returned an empty photo")

	// ErrNoSource indicates Load was called without a source
	ErrNoSource = errors.New("no image source given")
)
