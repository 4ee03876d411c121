package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// GradingEvent represents one event in a grading run's lifecycle.
type GradingEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	StudentName    string                 `json:"student_name"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of grading event.
type EventType string

const (
	// GradingStarted when a grading run begins
	GradingStarted EventType = "grading_started"
	// GradingCompleted when a grading run finishes successfully
	GradingCompleted EventType = "grading_completed"
	// GradingFailed when a grading run fails
	GradingFailed EventType = "grading_failed"
	// SheetLoaded when a sheet is decoded and preprocessed
	SheetLoaded EventType = "sheet_loaded"
	// SheetLoadFailed when a sheet cannot be loaded
	SheetLoadFailed EventType = "sheet_load_failed"
)

// Observer defines the interface for event observers.
type Observer interface {
	OnEvent(ctx context.Context, event GradingEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers.
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event GradingEvent)
}

// LoggingObserver logs grading events.
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer.
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent handles grading events by logging them.
func (o *LoggingObserver) OnEvent(ctx context.Context, event GradingEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"student_name":    event.StudentName,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case GradingStarted:
		o.logger.WithFields(fields).Info("Grading started")
	case GradingCompleted:
		o.logger.WithFields(fields).Info("Grading completed")
	case GradingFailed:
		o.logger.WithFields(fields).Error("Grading failed")
	case SheetLoaded:
		o.logger.WithFields(fields).Debug("Sheet loaded")
	case SheetLoadFailed:
		o.logger.WithFields(fields).Error("Sheet load failed")
	default:
		o.logger.WithFields(fields).Info("Grading event occurred")
	}
}

// GetObserverName returns the observer name.
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from grading events.
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalRuns           int64
	successfulRuns      int64
	failedRuns          int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles grading events by updating counters.
func (o *MetricsObserver) OnEvent(ctx context.Context, event GradingEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case GradingStarted:
		o.totalRuns++
	case GradingCompleted:
		o.successfulRuns++
		o.totalProcessingTime += event.ProcessingTime
	case GradingFailed:
		o.failedRuns++
	}
}

// GetObserverName returns the observer name.
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current counters.
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulRuns > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulRuns)
	}

	return map[string]interface{}{
		"total_runs":            o.totalRuns,
		"successful_runs":       o.successfulRuns,
		"failed_runs":           o.failedRuns,
		"total_processing_time": o.totalProcessingTime,
		"avg_processing_time":   avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface.
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher.
func NewEventPublisher() Subject {
	return &EventPublisher{observers: make([]Observer, 0)}
}

// Subscribe adds an observer.
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer.
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

// NotifyObservers notifies all observers of an event.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event GradingEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
