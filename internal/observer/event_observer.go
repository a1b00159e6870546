package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-tree-inspector/internal/logger"
)

// InspectionEvent is one step outcome of the capture workflow
type InspectionEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	SessionID      string                 `json:"session_id"`
	Source         string                 `json:"source,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of workflow event
type EventType string

const (
	CaptureAccepted         EventType = "capture_accepted"
	CaptureRejected         EventType = "capture_rejected"
	CaptureFailed           EventType = "capture_failed"
	HeightEstimated         EventType = "height_estimated"
	IdentificationSucceeded EventType = "identification_succeeded"
	IdentificationFailed    EventType = "identification_failed"
	ReferenceFetched        EventType = "reference_fetched"
	ReferenceFailed         EventType = "reference_failed"
)

// Observer receives workflow events
type Observer interface {
	OnEvent(ctx context.Context, event InspectionEvent)
	GetObserverName() string
}

// Subject publishes workflow events
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event InspectionEvent)
}

// LoggingObserver writes each event as a structured log line
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

func (o *LoggingObserver) OnEvent(ctx context.Context, event InspectionEvent) {
	fields := logrus.Fields{
		"event_type":         event.EventType,
		"session_id":         event.SessionID,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
	}
	if event.Source != "" {
		fields["source"] = event.Source
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case CaptureAccepted:
		entry.Info("Capture accepted")
	case CaptureRejected:
		entry.Info("Capture rejected")
	case CaptureFailed:
		entry.Error("Capture failed")
	case HeightEstimated:
		entry.Debug("Height estimated")
	case IdentificationSucceeded:
		entry.Info("Tree identified")
	case IdentificationFailed:
		entry.Warn("Tree identification failed")
	case ReferenceFetched:
		entry.Debug("Reference page fetched")
	case ReferenceFailed:
		entry.Warn("Reference page fetch failed")
	default:
		entry.Info("Inspection event occurred")
	}
}

func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsSnapshot is a point-in-time copy of the counters
type MetricsSnapshot struct {
	Captures               int64   `json:"captures"`
	Accepted               int64   `json:"accepted"`
	Rejected               int64   `json:"rejected"`
	CaptureFailures        int64   `json:"capture_failures"`
	HeightEstimates        int64   `json:"height_estimates"`
	Identified             int64   `json:"identified"`
	IdentificationFailures int64   `json:"identification_failures"`
	ReferenceFailures      int64   `json:"reference_failures"`
	AvgIdentifyTimeMs      float64 `json:"avg_identify_time_ms"`
}

// MetricsObserver counts workflow outcomes
type MetricsObserver struct {
	mu           sync.RWMutex
	snapshot     MetricsSnapshot
	identifyTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

func (o *MetricsObserver) OnEvent(ctx context.Context, event InspectionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case CaptureAccepted:
		o.snapshot.Captures++
		o.snapshot.Accepted++
	case CaptureRejected:
		o.snapshot.Captures++
		o.snapshot.Rejected++
	case CaptureFailed:
		o.snapshot.Captures++
		o.snapshot.CaptureFailures++
	case HeightEstimated:
		o.snapshot.HeightEstimates++
	case IdentificationSucceeded:
		o.snapshot.Identified++
		o.identifyTime += event.ProcessingTime
	case IdentificationFailed:
		o.snapshot.IdentificationFailures++
	case ReferenceFailed:
		o.snapshot.ReferenceFailures++
	}
}

func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current counters
func (o *MetricsObserver) GetMetrics() MetricsSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	snap := o.snapshot
	if snap.Identified > 0 {
		avg := o.identifyTime / time.Duration(snap.Identified)
		snap.AvgIdentifyTimeMs = float64(avg.Microseconds()) / 1000
	}
	return snap
}

// EventPublisher implements Subject. Observers run synchronously on the
// caller's goroutine, in subscription order.
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{}
}

func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers stamps the event and delivers it; a panicking observer is
// logged and skipped.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event InspectionEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, obs := range observers {
		notify(ctx, obs, event)
	}
}

func notify(ctx context.Context, obs Observer, event InspectionEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("observer", obs.GetObserverName()).
				WithField("panic", r).
				Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
