package validation

import (
	"net/url"
	"strings"

	apperrors "go-tree-inspector/internal/errors"
)

// URLValidator checks remote image URLs and reference-page URLs before they are fetched
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator allows http and https on any host
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
	}
}

// NewURLValidatorWithOptions restricts schemes and hosts. A host entry also
// admits its subdomains, so "wikipedia.org" admits "en.wikipedia.org".
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateURL returns a validation AppError describing the first problem found
func (v *URLValidator) ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(raw)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Hostname() == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if !v.isHostAllowed(parsedURL.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	return nil
}

func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	scheme = strings.ToLower(scheme)
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, allowed := range v.allowedHosts {
		allowed = strings.ToLower(allowed)
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
