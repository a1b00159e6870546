package validation

import (
	"fmt"

	apperrors "go-tree-inspector/internal/errors"
	"go-tree-inspector/pkg/models"
)

// MinAcceptedHeight is the smallest image height, in pixels, the gate accepts.
// It is a fixed policy: callers that need an adaptive threshold wrap the gate.
const MinAcceptedHeight = 500

// Outcome is the gate verdict
type Outcome string

const (
	Accepted Outcome = "accepted"
	Rejected Outcome = "rejected"
)

// Decision is the result of evaluating one captured image
type Decision struct {
	Outcome Outcome              `json:"outcome"`
	Reason  string               `json:"reason,omitempty"`
	Image   models.CapturedImage `json:"image"`
}

// Accepted reports whether the image may proceed to identification
func (d Decision) Accepted() bool {
	return d.Outcome == Accepted
}

// Report is the human-readable dimension line shown next to a capture
func (d Decision) Report() string {
	return fmt.Sprintf("Image dimensions: %dx%d pixels", d.Image.Width, d.Image.Height)
}

// AcceptanceGate decides whether a captured image is usable
type AcceptanceGate struct{}

// NewAcceptanceGate creates the gate
func NewAcceptanceGate() *AcceptanceGate {
	return &AcceptanceGate{}
}

// Evaluate applies the resolution policy. A too-small image is a Rejected
// decision, not an error; non-positive dimensions are a caller error.
func (g *AcceptanceGate) Evaluate(img models.CapturedImage) (Decision, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return Decision{}, apperrors.NewValidationError(
			fmt.Sprintf("image dimensions must be positive (got %dx%d)", img.Width, img.Height), nil)
	}

	if img.Height < MinAcceptedHeight {
		return Decision{
			Outcome: Rejected,
			Reason: fmt.Sprintf("image height %dpx is below the %dpx minimum; please capture a closer or higher resolution photo",
				img.Height, MinAcceptedHeight),
			Image: img,
		}, nil
	}

	return Decision{Outcome: Accepted, Image: img}, nil
}
