package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UploadStore persists incoming multipart sheet uploads to the local upload
// directory so the loader can read them by path.
type UploadStore interface {
	// SaveUpload writes one upload under a collision-free name and returns
	// its path. kind tags the file's role ("student", "correct").
	SaveUpload(file *multipart.FileHeader, kind string) (string, error)
	// Remove deletes a previously saved upload. Missing files are not an
	// error; cleanup runs after both success and failure paths.
	Remove(path string) error
}

type uploadStore struct {
	dir string
}

// NewUploadStore creates the upload directory if missing.
func NewUploadStore(dir string) (UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &uploadStore{dir: dir}, nil
}

func (s *uploadStore) SaveUpload(file *multipart.FileHeader, kind string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%s_%d_%s", kind, time.Now().UnixNano(), sanitizeFilename(file.Filename))
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return path, nil
}

func (s *uploadStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// sanitizeFilename strips path separators and keeps only a safe character
// set, so client-supplied names cannot escape the upload directory.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	// Base maps an empty name to ".", which would survive the filter below.
	if base == "." {
		return "upload"
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
