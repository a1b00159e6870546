// Package plaque reads label plaques that arboretum and park trees often carry
// and checks them against the identified species name.
package plaque

import "context"

// Reader extracts printed text from a photo
type Reader interface {
	Read(ctx context.Context, photo []byte) (string, error)
	Close() error
}
