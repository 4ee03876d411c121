package validation

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	apperrors "go-omr-grader/internal/errors"
)

// UploadValidator handles sheet upload validation logic.
type UploadValidator struct {
	allowedExtensions []string
	maxSize           int64
}

// NewUploadValidator creates an upload validator with default settings.
func NewUploadValidator(maxSize int64) *UploadValidator {
	return &UploadValidator{
		allowedExtensions: []string{".png", ".jpg", ".jpeg", ".pdf"},
		maxSize:           maxSize,
	}
}

// NewUploadValidatorWithOptions creates an upload validator with a custom
// extension allowlist.
func NewUploadValidatorWithOptions(extensions []string, maxSize int64) *UploadValidator {
	return &UploadValidator{
		allowedExtensions: extensions,
		maxSize:           maxSize,
	}
}

// ValidateSheetUpload validates one uploaded sheet file. field names the
// multipart field for error messages.
func (v *UploadValidator) ValidateSheetUpload(file *multipart.FileHeader, field string) error {
	if file == nil {
		return apperrors.NewValidationError(field+" file is required", nil)
	}
	if strings.TrimSpace(file.Filename) == "" {
		return apperrors.NewValidationError(field+" filename cannot be empty", nil)
	}
	if !v.isExtensionAllowed(file.Filename) {
		return apperrors.NewValidationError(field+" has an unsupported file type", nil)
	}
	if v.maxSize > 0 && file.Size > v.maxSize {
		return apperrors.NewValidationError(field+" exceeds the maximum upload size", nil)
	}
	return nil
}

// ValidateStudentName validates the submitted student name.
func (v *UploadValidator) ValidateStudentName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("student_name cannot be empty", nil)
	}
	return nil
}

// isExtensionAllowed checks the filename extension against the allowlist.
func (v *UploadValidator) isExtensionAllowed(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range v.allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
