package storage

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// ReportStore persists a rendered report image and returns the location a
// client can retrieve it from.
type ReportStore interface {
	Save(ctx context.Context, name string, report image.Image) (string, error)
}

// localReportStore writes reports as PNG files under a directory served by
// the GET /reports route.
type localReportStore struct {
	dir string
}

// NewLocalReportStore creates the report directory if missing.
func NewLocalReportStore(dir string) (ReportStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &localReportStore{dir: dir}, nil
}

func (s *localReportStore) Save(ctx context.Context, name string, report image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, report); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return "/reports/" + name, nil
}
