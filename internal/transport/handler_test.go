package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-omr-grader/internal/config"
	apperrors "go-omr-grader/internal/errors"
	"go-omr-grader/internal/service"
	"go-omr-grader/internal/storage"
	"go-omr-grader/pkg/models"
	"go-omr-grader/pkg/validation"
)

type fakeGradingService struct {
	response *models.GradeResponse
	err      error
	lastReq  service.GradeRequest
}

func (f *fakeGradingService) GradeSheets(ctx context.Context, req service.GradeRequest) (*models.GradeResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func newTestHandler(t *testing.T, svc service.GradingService) (http.Handler, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		RequestTimeout: 5 * time.Second,
		MaxUploadSize:  1 << 20,
		UploadDir:      t.TempDir(),
		ReportDir:      t.TempDir(),
	}
	uploads, err := storage.NewUploadStore(cfg.UploadDir)
	if err != nil {
		t.Fatalf("NewUploadStore: %v", err)
	}
	validator := validation.NewUploadValidator(cfg.MaxUploadSize)
	return NewHandler(svc, uploads, validator, cfg), cfg
}

func gradeRequest(t *testing.T, studentName, studentFile, correctFile string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if studentName != "" {
		if err := w.WriteField("student_name", studentName); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	for field, name := range map[string]string{"student_sheet": studentFile, "correct_sheet": correctFile} {
		if name == "" {
			continue
		}
		part, err := w.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write([]byte("sheet-bytes"))
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/grade", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestGradeEndpoint(t *testing.T) {
	svc := &fakeGradingService{
		response: &models.GradeResponse{
			StudentName:    "Jordan Lee",
			Score:          8,
			TotalQuestions: 10,
			Percentage:     80,
			ReportURL:      "/reports/report_1.png",
		},
	}
	handler, _ := newTestHandler(t, svc)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, gradeRequest(t, "Jordan Lee", "student.png", "key.png"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp models.GradeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Score != 8 || resp.TotalQuestions != 10 {
		t.Errorf("score = %d/%d, want 8/10", resp.Score, resp.TotalQuestions)
	}
	if resp.ReportURL != "/reports/report_1.png" {
		t.Errorf("report url = %q", resp.ReportURL)
	}
	if svc.lastReq.StudentName != "Jordan Lee" {
		t.Errorf("service saw student name %q", svc.lastReq.StudentName)
	}
	if svc.lastReq.StudentSheetPath == "" || svc.lastReq.CorrectSheetPath == "" {
		t.Error("service did not receive saved upload paths")
	}
}

func TestGradeEndpointValidation(t *testing.T) {
	tests := []struct {
		name        string
		studentName string
		studentFile string
		correctFile string
	}{
		{"missing student name", "", "student.png", "key.png"},
		{"missing student sheet", "Jordan", "", "key.png"},
		{"missing correct sheet", "Jordan", "student.png", ""},
		{"unsupported extension", "Jordan", "student.bmp", "key.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t, &fakeGradingService{response: &models.GradeResponse{}})

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, gradeRequest(t, tt.studentName, tt.studentFile, tt.correctFile))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGradeEndpointMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"load error", apperrors.NewLoadError("bad sheet", nil), http.StatusUnprocessableEntity},
		{"config error", apperrors.NewConfigError("empty key", nil), http.StatusUnprocessableEntity},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"internal", os.ErrClosed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t, &fakeGradingService{err: tt.err})

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, gradeRequest(t, "Jordan", "student.png", "key.png"))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestErrorHandlerMapsDeferredAppErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(errorHandler())
	r.GET("/boom", func(c *gin.Context) {
		c.Error(apperrors.NewLoadError("bad sheet", nil))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 from the deferred app error", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t, &fakeGradingService{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "available" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestReportsEndpoint(t *testing.T) {
	handler, cfg := newTestHandler(t, &fakeGradingService{})

	content := []byte("png-bytes")
	if err := os.WriteFile(filepath.Join(cfg.ReportDir, "report_1.png"), content, 0o644); err != nil {
		t.Fatalf("write report: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/report_1.png", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Error("report body does not match stored file")
	}
}

func TestReportsEndpointStripsTraversal(t *testing.T) {
	handler, cfg := newTestHandler(t, &fakeGradingService{})

	secret := filepath.Join(filepath.Dir(cfg.ReportDir), "secret.txt")
	if err := os.WriteFile(secret, []byte("secret"), 0o644); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/..%2Fsecret.txt", nil))

	if bytes.Contains(rec.Body.Bytes(), []byte("secret")) {
		t.Error("path traversal leaked a file outside the report directory")
	}
}
