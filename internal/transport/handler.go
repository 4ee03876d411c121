package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-omr-grader/internal/config"
	apperrors "go-omr-grader/internal/errors"
	"go-omr-grader/internal/logger"
	"go-omr-grader/internal/service"
	"go-omr-grader/internal/storage"
	"go-omr-grader/pkg/validation"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func NewHandler(
	gradingService service.GradingService,
	uploads storage.UploadStore,
	validator *validation.UploadValidator,
	cfg *config.Config,
) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxUploadSize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.POST("/grade", gradeSheets(gradingService, uploads, validator, cfg))
	r.GET("/reports/:filename", serveReport(cfg))

	return r
}

func gradeSheets(
	svc service.GradingService,
	uploads storage.UploadStore,
	validator *validation.UploadValidator,
	cfg *config.Config,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		// Log request start
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing grading request")

		studentName := c.PostForm("student_name")
		if err := validator.ValidateStudentName(studentName); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid student name", err)
			return
		}

		studentFile, err := c.FormFile("student_sheet")
		if err != nil {
			respondError(c, http.StatusBadRequest, "student_sheet file is required", err)
			return
		}
		correctFile, err := c.FormFile("correct_sheet")
		if err != nil {
			respondError(c, http.StatusBadRequest, "correct_sheet file is required", err)
			return
		}

		if err := validator.ValidateSheetUpload(studentFile, "student_sheet"); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid student sheet", err)
			return
		}
		if err := validator.ValidateSheetUpload(correctFile, "correct_sheet"); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid correct sheet", err)
			return
		}

		studentPath, err := uploads.SaveUpload(studentFile, "student")
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to store upload", err)
			return
		}
		defer uploads.Remove(studentPath)

		correctPath, err := uploads.SaveUpload(correctFile, "correct")
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to store upload", err)
			return
		}
		defer uploads.Remove(correctPath)

		response, err := svc.GradeSheets(ctx, service.GradeRequest{
			StudentSheetPath: studentPath,
			CorrectSheetPath: correctPath,
			StudentName:      studentName,
		})
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = apperrors.NewTimeoutError("grading timed out", err)
			}
			logger.WithError(err).WithFields(logrus.Fields{
				"student_name": studentName,
				"ip":           c.ClientIP(),
			}).Error("Grading failed")
			respondError(c, apperrors.GetStatusCode(err), "grading failed", err)
			return
		}

		// Log successful completion
		duration := time.Since(startTime)
		logger.WithFields(logrus.Fields{
			"student_name":       studentName,
			"score":              response.Score,
			"total_questions":    response.TotalQuestions,
			"processing_time_ms": duration.Milliseconds(),
		}).Info("Grading completed successfully")

		c.JSON(http.StatusOK, response)
	}
}

// serveReport returns locally stored report files. Azure-backed reports are
// served from blob URLs instead and never hit this route.
func serveReport(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Base() strips any path traversal from the client-supplied name.
		filename := filepath.Base(c.Param("filename"))
		if filename == "." || filename == string(filepath.Separator) {
			respondError(c, http.StatusBadRequest, "invalid report name", nil)
			return
		}
		c.File(filepath.Join(cfg.ReportDir, filename))
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			// Last() returns the gin wrapper; status mapping needs the
			// underlying error.
			err := c.Errors.Last().Err
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
