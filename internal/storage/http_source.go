package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "go-tree-inspector/internal/errors"
)

// HTTPImageFetcher downloads photos from remote URLs. It makes a single
// attempt; a failed download ends the capture and the user retries.
type HTTPImageFetcher struct {
	client  *http.Client
	maxSize int64
}

// NewHTTPImageFetcher creates a fetcher that refuses bodies larger than maxSize
func NewHTTPImageFetcher(client *http.Client, maxSize int64) *HTTPImageFetcher {
	return &HTTPImageFetcher{client: client, maxSize: maxSize}
}

// Fetch returns the raw bytes at imageURL
func (h *HTTPImageFetcher) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid image URL", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "Go-Tree-Inspector/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("image fetch timeout", err)
		}
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NewNotFoundError("image not found", nil)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, apperrors.NewNetworkError(fmt.Sprintf("client error: status code %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, apperrors.NewNetworkError(fmt.Sprintf("server error: status code %d", resp.StatusCode), nil)
	}

	return readLimited(resp.Body, h.maxSize)
}

// readLimited reads at most limit bytes and fails if the body is longer
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, apperrors.NewNetworkError("failed to read image body", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to read image body", err)
	}
	if int64(len(data)) > limit {
		return nil, apperrors.NewValidationError(fmt.Sprintf("image exceeds %d bytes", limit), nil)
	}
	return data, nil
}

// URLSource acquires a photo from a remote URL
type URLSource struct {
	fetcher *HTTPImageFetcher
	url     string
}

// NewURLSource creates a URL-backed source
func NewURLSource(fetcher *HTTPImageFetcher, imageURL string) ImageSource {
	return &URLSource{fetcher: fetcher, url: imageURL}
}

func (s *URLSource) Acquire(ctx context.Context) ([]byte, error) {
	return s.fetcher.Fetch(ctx, s.url)
}

func (s *URLSource) Describe() string {
	return "url:" + s.url
}
