package models

import "time"

// CapturedImage is the part of a photo the acceptance gate looks at.
// Pixel data stays with the caller.
type CapturedImage struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format,omitempty"`
}

// HeightMeasurementInput is one user submission of the measurement form.
// AngleOrSlope is labelled "angle in degrees" on the form; how it is used
// depends on the configured formula.
type HeightMeasurementInput struct {
	Distance     float64 `json:"distance"`
	AngleOrSlope float64 `json:"angle"`
}

// HeightEstimate is derived, never stored
type HeightEstimate struct {
	HeightUnits float64 `json:"height_units"`
	Formula     string  `json:"formula"`
}

// Identification is the best species guess returned by the identification service
type Identification struct {
	Name         string  `json:"name"`
	ReferenceURL string  `json:"reference_url,omitempty"`
	Probability  float64 `json:"probability,omitempty"`
}

// ReferenceExcerpt is the truncated reference page shown to the user
type ReferenceExcerpt struct {
	URL       string `json:"url"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"`
}

// PlaqueReading holds text read from a label plaque in the photo and how
// well it agrees with the identified name.
type PlaqueReading struct {
	Text            string  `json:"text"`
	Similarity      float64 `json:"similarity"`
	WordErrorRate   float64 `json:"word_error_rate"`
	Corroborates    bool    `json:"corroborates"`
	Skipped         bool    `json:"skipped,omitempty"`
	UnavailableNote string  `json:"note,omitempty"`
}

// IdentificationResult is what an identified session carries
type IdentificationResult struct {
	Identification *Identification   `json:"identification,omitempty"`
	FailureReason  string            `json:"failure_reason,omitempty"`
	Excerpt        *ReferenceExcerpt `json:"excerpt,omitempty"`
	Plaque         *PlaqueReading    `json:"plaque,omitempty"`
}

// Identified reports whether the service returned a species
func (r IdentificationResult) Identified() bool {
	return r.Identification != nil
}

// Stage is the position of a session in the capture workflow
type Stage string

const (
	StageUncaptured Stage = "uncaptured"
	StageCaptured   Stage = "captured"
	StageIdentified Stage = "identified"
)

// Session is the explicit workflow state handed from one step to the next.
// It is a value: each step returns a new Session and never mutates the one
// it was given.
type Session struct {
	ID         string                `json:"id"`
	Stage      Stage                 `json:"stage"`
	Image      *CapturedImage        `json:"image,omitempty"`
	CapturedAt time.Time             `json:"captured_at,omitempty"`
	Result     *IdentificationResult `json:"result,omitempty"`

	photo []byte
}

// NewSession starts a session with nothing captured
func NewSession(id string) Session {
	return Session{ID: id, Stage: StageUncaptured}
}

// Captured moves an uncaptured session to the captured stage
func (s Session) Captured(img CapturedImage, photo []byte, at time.Time) Session {
	imgCopy := img
	return Session{
		ID:         s.ID,
		Stage:      StageCaptured,
		Image:      &imgCopy,
		CapturedAt: at,
		photo:      photo,
	}
}

// Identified moves a captured session to the identified stage
func (s Session) Identified(result IdentificationResult) Session {
	next := s
	next.Stage = StageIdentified
	next.Result = &result
	return next
}

// Photo returns the encoded image bytes kept for the identification step
func (s Session) Photo() []byte {
	return s.photo
}
