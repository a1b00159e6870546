package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "go-tree-inspector/internal/errors"
	"go-tree-inspector/internal/height"
	"go-tree-inspector/internal/identify"
	"go-tree-inspector/internal/logger"
	"go-tree-inspector/internal/observer"
	"go-tree-inspector/internal/plaque"
	"go-tree-inspector/internal/repository"
	"go-tree-inspector/internal/storage"
	"go-tree-inspector/pkg/models"
	"go-tree-inspector/pkg/validation"
)

const (
	// ReasonNoMatch is shown when the service had no suggestion for the photo
	ReasonNoMatch = "No matching tree found"
	// ReasonServiceError is shown when the identification call itself failed
	ReasonServiceError = "Identification service unavailable"
)

// ReferenceFetcher produces the excerpt shown next to an identification
type ReferenceFetcher interface {
	Fetch(ctx context.Context, pageURL string) (models.ReferenceExcerpt, error)
}

// SharpnessChecker gives advisory blur feedback on an accepted photo
type SharpnessChecker interface {
	Check(data []byte) (*models.SharpnessAdvice, error)
}

// TreeInspectionService runs the capture, measure and identify workflow
type TreeInspectionService interface {
	// Capture acquires a photo and runs it through the acceptance gate.
	// A rejected photo leaves the session uncaptured and is not an error.
	Capture(ctx context.Context, source storage.ImageSource) (models.Session, validation.Decision, error)

	// EstimateHeight validates a measurement and estimates the tree height
	EstimateHeight(input models.HeightMeasurementInput) (models.HeightEstimate, error)

	// Identify sends a captured photo for identification
	Identify(ctx context.Context, session models.Session) (models.Session, error)

	// Inspect runs every step for one photo
	Inspect(ctx context.Context, req InspectRequest) (*models.InspectionResponse, error)
}

// InspectRequest is one end-to-end run. A nil Measurement skips the height step.
type InspectRequest struct {
	Source       storage.ImageSource
	Measurement  *models.HeightMeasurementInput
	SkipIdentify bool
}

// Dependencies are the collaborators of the workflow. Sharpness and Plaque
// are optional.
type Dependencies struct {
	Repository      repository.CaptureRepository
	Gate            *validation.AcceptanceGate
	Estimator       *height.Estimator
	Identifier      identify.Identifier
	References      ReferenceFetcher
	Sharpness       SharpnessChecker
	Plaque          plaque.Reader
	Publisher       observer.Subject
	IdentifyTimeout time.Duration
}

type treeInspectionService struct {
	deps  Dependencies
	now   func() time.Time
	newID func() string
}

// NewTreeInspectionService creates a new inspection service
func NewTreeInspectionService(deps Dependencies) TreeInspectionService {
	if deps.Publisher == nil {
		deps.Publisher = observer.NewEventPublisher()
	}
	return &treeInspectionService{
		deps:  deps,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *treeInspectionService) Capture(ctx context.Context, source storage.ImageSource) (models.Session, validation.Decision, error) {
	start := time.Now()
	session := models.NewSession(s.newID())

	describe := ""
	if source != nil {
		describe = source.Describe()
	}

	photo, err := s.deps.Repository.Load(ctx, source)
	if err != nil {
		s.publish(ctx, observer.InspectionEvent{
			EventType:      observer.CaptureFailed,
			SessionID:      session.ID,
			Source:         describe,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return session, validation.Decision{}, err
	}

	decision, err := s.deps.Gate.Evaluate(photo.Image)
	if err != nil {
		return session, validation.Decision{}, err
	}

	event := observer.InspectionEvent{
		SessionID:      session.ID,
		Source:         photo.Source,
		ProcessingTime: time.Since(start),
		Metadata: map[string]interface{}{
			"width":  photo.Image.Width,
			"height": photo.Image.Height,
		},
	}
	if !decision.Accepted() {
		event.EventType = observer.CaptureRejected
		event.Metadata["reason"] = decision.Reason
		s.publish(ctx, event)
		return session, decision, nil
	}

	event.EventType = observer.CaptureAccepted
	s.publish(ctx, event)
	return session.Captured(photo.Image, photo.Data, s.now()), decision, nil
}

// EstimateHeight is the standalone measurement; its event carries no session.
func (s *treeInspectionService) EstimateHeight(input models.HeightMeasurementInput) (models.HeightEstimate, error) {
	return s.estimateHeight(context.Background(), "", input)
}

func (s *treeInspectionService) estimateHeight(ctx context.Context, sessionID string, input models.HeightMeasurementInput) (models.HeightEstimate, error) {
	estimate, err := s.deps.Estimator.Measure(input)
	if err != nil {
		return models.HeightEstimate{}, err
	}

	s.publish(ctx, observer.InspectionEvent{
		EventType: observer.HeightEstimated,
		SessionID: sessionID,
		Metadata: map[string]interface{}{
			"formula":      estimate.Formula,
			"height_units": estimate.HeightUnits,
		},
	})
	return estimate, nil
}

// Identify never fails because the service found nothing or could not be
// reached; those outcomes are recorded as the result's failure reason.
func (s *treeInspectionService) Identify(ctx context.Context, session models.Session) (models.Session, error) {
	if session.Stage != models.StageCaptured {
		return session, apperrors.NewValidationError(
			fmt.Sprintf("session %s is %s; capture a photo before identifying", session.ID, session.Stage), nil)
	}

	start := time.Now()
	identifyCtx := ctx
	if s.deps.IdentifyTimeout > 0 {
		var cancel context.CancelFunc
		identifyCtx, cancel = context.WithTimeout(ctx, s.deps.IdentifyTimeout)
		defer cancel()
	}

	filename := "capture.png"
	if session.Image != nil && session.Image.Format != "" {
		filename = "capture." + session.Image.Format
	}
	match, err := s.deps.Identifier.Identify(identifyCtx, session.Photo(), filename)
	if err != nil {
		reason := ReasonServiceError
		if errors.Is(err, identify.ErrNoMatch) {
			reason = ReasonNoMatch
		}
		s.publish(ctx, observer.InspectionEvent{
			EventType:      observer.IdentificationFailed,
			SessionID:      session.ID,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return session.Identified(models.IdentificationResult{FailureReason: reason}), nil
	}

	s.publish(ctx, observer.InspectionEvent{
		EventType:      observer.IdentificationSucceeded,
		SessionID:      session.ID,
		ProcessingTime: time.Since(start),
		Metadata: map[string]interface{}{
			"name":        match.Name,
			"probability": match.Probability,
		},
	})

	result := models.IdentificationResult{Identification: match}
	result.Plaque = s.readPlaque(ctx, session, match.Name)
	result.Excerpt = s.fetchExcerpt(ctx, session.ID, match.ReferenceURL)

	return session.Identified(result), nil
}

func (s *treeInspectionService) readPlaque(ctx context.Context, session models.Session, name string) *models.PlaqueReading {
	if s.deps.Plaque == nil {
		return nil
	}
	text, err := s.deps.Plaque.Read(ctx, session.Photo())
	if err != nil {
		logger.WithFields(logrus.Fields{
			"session_id": session.ID,
			"error":      err.Error(),
		}).Warn("Plaque reading skipped")
		return &models.PlaqueReading{Skipped: true, UnavailableNote: err.Error()}
	}
	reading := plaque.Corroborate(text, name)
	return &reading
}

// fetchExcerpt drops the excerpt when the page cannot be fetched; the
// identification itself still stands.
func (s *treeInspectionService) fetchExcerpt(ctx context.Context, sessionID, pageURL string) *models.ReferenceExcerpt {
	if s.deps.References == nil || pageURL == "" {
		return nil
	}

	start := time.Now()
	excerpt, err := s.deps.References.Fetch(ctx, pageURL)
	event := observer.InspectionEvent{
		EventType:      observer.ReferenceFetched,
		SessionID:      sessionID,
		ProcessingTime: time.Since(start),
		Metadata:       map[string]interface{}{"url": pageURL},
	}
	if err != nil {
		event.EventType = observer.ReferenceFailed
		event.ErrorMessage = err.Error()
		s.publish(ctx, event)
		return nil
	}
	s.publish(ctx, event)
	return &excerpt
}

func (s *treeInspectionService) Inspect(ctx context.Context, req InspectRequest) (*models.InspectionResponse, error) {
	start := time.Now()

	// Measurement problems are caller errors and are reported before any
	// photo is acquired. The estimate itself waits for an accepted photo.
	if req.Measurement != nil {
		if err := s.deps.Estimator.Validate(*req.Measurement); err != nil {
			return nil, err
		}
	}

	session, decision, err := s.Capture(ctx, req.Source)
	if err != nil {
		return nil, err
	}

	response := &models.InspectionResponse{
		SessionID: session.ID,
		Gate: models.GateResponse{
			Accepted: decision.Accepted(),
			Reason:   decision.Reason,
			Report:   decision.Report(),
			Image:    decision.Image,
		},
	}

	if decision.Accepted() {
		response.Sharpness = s.checkSharpness(session)
		if req.Measurement != nil {
			estimate, err := s.estimateHeight(ctx, session.ID, *req.Measurement)
			if err != nil {
				return nil, err
			}
			response.Height = &estimate
		}
		if !req.SkipIdentify {
			session, err = s.Identify(ctx, session)
			if err != nil {
				return nil, err
			}
		}
	}

	response.Stage = session.Stage
	response.Result = session.Result
	response.Timestamp = s.now().UTC().Format(time.RFC3339)
	response.ProcessingTimeSec = time.Since(start).Seconds()
	return response, nil
}

func (s *treeInspectionService) checkSharpness(session models.Session) *models.SharpnessAdvice {
	if s.deps.Sharpness == nil {
		return nil
	}
	advice, err := s.deps.Sharpness.Check(session.Photo())
	if err != nil {
		logger.WithError(err).WithField("session_id", session.ID).Debug("Sharpness check skipped")
		return nil
	}
	return advice
}

func (s *treeInspectionService) publish(ctx context.Context, event observer.InspectionEvent) {
	s.deps.Publisher.NotifyObservers(ctx, event)
}
