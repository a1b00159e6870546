// Package reference fetches a species reference page and cuts a short excerpt from it.
package reference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"

	apperrors "go-tree-inspector/internal/errors"
	"go-tree-inspector/pkg/models"
	"go-tree-inspector/pkg/validation"
)

// Mode selects how the page body is turned into text
type Mode string

const (
	// ModeRaw keeps the first characters of the document as served
	ModeRaw Mode = "raw"
	// ModeMarkdown sanitises the HTML and renders it as markdown before cutting
	ModeMarkdown Mode = "markdown"
)

// maxPageBytes bounds how much of a reference page is read
const maxPageBytes = 4 << 20

// Fetcher produces reference excerpts
type Fetcher struct {
	client    *http.Client
	validator *validation.URLValidator
	policy    *bluemonday.Policy
	md        *converter.Converter
	mode      Mode
	limit     int
}

// NewFetcher creates a fetcher that keeps at most limit characters
func NewFetcher(client *http.Client, mode Mode, limit int) *Fetcher {
	return &Fetcher{
		client:    client,
		validator: validation.NewURLValidator(),
		policy:    bluemonday.UGCPolicy(),
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
		mode:  mode,
		limit: limit,
	}
}

// Fetch returns an empty excerpt for an empty URL, so an identification
// without a reference page still renders.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (models.ReferenceExcerpt, error) {
	if strings.TrimSpace(pageURL) == "" {
		return models.ReferenceExcerpt{}, nil
	}
	if err := f.validator.ValidateURL(pageURL); err != nil {
		return models.ReferenceExcerpt{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return models.ReferenceExcerpt{}, apperrors.NewValidationError("invalid reference URL", err)
	}
	req.Header.Set("User-Agent", "Go-Tree-Inspector/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.ReferenceExcerpt{}, apperrors.NewTimeoutError("reference fetch timed out", err)
		}
		return models.ReferenceExcerpt{}, apperrors.NewNetworkError("failed to fetch reference page", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ReferenceExcerpt{}, apperrors.NewNetworkError(
			fmt.Sprintf("failed to fetch reference page: status code %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return models.ReferenceExcerpt{}, apperrors.NewNetworkError("failed to read reference page", err)
	}

	text := string(body)
	if f.mode == ModeMarkdown {
		text = f.render(text, pageURL)
	}

	excerpt, truncated := Truncate(text, f.limit)
	return models.ReferenceExcerpt{
		URL:       pageURL,
		Text:      excerpt,
		Truncated: truncated,
	}, nil
}

// render falls back to the raw text when conversion fails or comes out empty
func (f *Fetcher) render(html, pageURL string) string {
	clean := f.policy.Sanitize(html)
	out, err := f.md.ConvertString(clean, converter.WithDomain(pageURL))
	if err != nil || strings.TrimSpace(out) == "" {
		return html
	}
	return strings.TrimSpace(out)
}

// Truncate keeps the first limit characters (runes, not bytes)
func Truncate(text string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, false
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i], true
		}
		n++
	}
	return text, false
}
