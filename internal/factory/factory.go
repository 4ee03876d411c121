package factory

import (
	"fmt"

	"go-omr-grader/internal/config"
	"go-omr-grader/internal/detector"
	"go-omr-grader/internal/storage"
)

// BackendType represents the report storage backends.
type BackendType string

const (
	// LocalBackend writes reports to the local report directory.
	LocalBackend BackendType = "local"
	// AzureBackend uploads reports to an Azure blob container.
	AzureBackend BackendType = "azure"
)

// ReportStoreFactory creates report store implementations.
type ReportStoreFactory interface {
	CreateReportStore(backend BackendType) (storage.ReportStore, error)
}

// DetectorFactory creates bubble detectors from configured thresholds.
type DetectorFactory interface {
	CreateDetector() (detector.Detector, error)
}

type reportStoreFactory struct {
	cfg *config.Config
}

// NewReportStoreFactory creates a report store factory bound to the config's
// directories and credentials.
func NewReportStoreFactory(cfg *config.Config) ReportStoreFactory {
	return &reportStoreFactory{cfg: cfg}
}

func (f *reportStoreFactory) CreateReportStore(backend BackendType) (storage.ReportStore, error) {
	switch backend {
	case LocalBackend:
		return storage.NewLocalReportStore(f.cfg.ReportDir)
	case AzureBackend:
		return storage.NewAzureReportStore(f.cfg.AzureAccountName, f.cfg.AzureAccountKey, f.cfg.AzureContainer)
	default:
		return nil, fmt.Errorf("unsupported report backend: %s", backend)
	}
}

type detectorFactory struct {
	cfg *config.Config
}

// NewDetectorFactory creates a detector factory bound to the configured
// thresholds.
func NewDetectorFactory(cfg *config.Config) DetectorFactory {
	return &detectorFactory{cfg: cfg}
}

func (f *detectorFactory) CreateDetector() (detector.Detector, error) {
	return detector.New(detector.Config{
		MinArea:       f.cfg.MinBubbleArea,
		MaxArea:       f.cfg.MaxBubbleArea,
		MinAspect:     f.cfg.MinAspect,
		MaxAspect:     f.cfg.MaxAspect,
		RowTolerance:  f.cfg.RowTolerance,
		FillThreshold: f.cfg.FillThreshold,
	})
}

// ComponentFactory combines all factories.
type ComponentFactory struct {
	ReportStoreFactory ReportStoreFactory
	DetectorFactory    DetectorFactory
}

// NewComponentFactory creates a new component factory.
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		ReportStoreFactory: NewReportStoreFactory(cfg),
		DetectorFactory:    NewDetectorFactory(cfg),
	}
}
