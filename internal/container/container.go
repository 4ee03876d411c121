package container

import (
	"fmt"
	"net/http"

	"go-omr-grader/internal/config"
	"go-omr-grader/internal/factory"
	"go-omr-grader/internal/grading"
	"go-omr-grader/internal/loader"
	"go-omr-grader/internal/logger"
	"go-omr-grader/internal/observer"
	"go-omr-grader/internal/ocr"
	"go-omr-grader/internal/renderer"
	"go-omr-grader/internal/service"
	"go-omr-grader/internal/storage"
	"go-omr-grader/internal/strategy"
	"go-omr-grader/internal/transport"
	"go-omr-grader/pkg/validation"
)

// Container holds all application dependencies.
type Container struct {
	config         *config.Config
	gradingService service.GradingService
	metrics        *observer.MetricsObserver
	pool           *service.WorkerPool
	handler        http.Handler
}

// NewContainer creates a new dependency injection container.
func NewContainer(cfg *config.Config) (*Container, error) {
	// Build dependency graph
	components := factory.NewComponentFactory(cfg)

	bubbleDetector, err := components.DetectorFactory.CreateDetector()
	if err != nil {
		return nil, fmt.Errorf("failed to create detector: %w", err)
	}

	reportStore, err := components.ReportStoreFactory.CreateReportStore(factory.BackendType(cfg.ReportBackend))
	if err != nil {
		return nil, fmt.Errorf("failed to create report store: %w", err)
	}

	uploadStore, err := storage.NewUploadStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload store: %w", err)
	}

	emptyPolicy, err := strategy.ForName(cfg.EmptySheetPolicy)
	if err != nil {
		return nil, err
	}

	colors, err := renderer.ParseColors(cfg.CorrectColor, cfg.WrongColor)
	if err != nil {
		return nil, err
	}
	reportRenderer, err := renderer.New(colors)
	if err != nil {
		return nil, err
	}

	var headerOCR ocr.HeaderReader
	if cfg.HeaderOCREnabled {
		headerOCR = ocr.New()
	}

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	pool := service.NewWorkerPool(0)
	gradingService := service.NewGradingService(
		loader.New(),
		bubbleDetector,
		grading.NewEngine(emptyPolicy),
		reportRenderer,
		headerOCR,
		reportStore,
		pool,
		events,
	)

	validator := validation.NewUploadValidator(cfg.MaxUploadSize)
	handler := transport.NewHandler(gradingService, uploadStore, validator, cfg)

	return &Container{
		config:         cfg,
		gradingService: gradingService,
		metrics:        metrics,
		pool:           pool,
		handler:        handler,
	}, nil
}

// Handler returns the HTTP handler.
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Metrics returns the grading run counters.
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Close shuts down the worker pool.
func (c *Container) Close() {
	c.pool.Close()
}
