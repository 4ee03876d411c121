package service

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"go-omr-grader/internal/detector"
	"go-omr-grader/internal/grading"
	"go-omr-grader/internal/loader"
	"go-omr-grader/internal/logger"
	"go-omr-grader/internal/observer"
	"go-omr-grader/internal/ocr"
	"go-omr-grader/internal/renderer"
	"go-omr-grader/internal/storage"
	"go-omr-grader/pkg/models"
)

// GradeRequest carries the saved upload paths and submitted metadata of one
// grading run.
type GradeRequest struct {
	StudentSheetPath string
	CorrectSheetPath string
	StudentName      string
}

// GradingService orchestrates the full pipeline: load both sheets, detect
// their bubble grids, grade, render the annotated report and store it.
type GradingService interface {
	GradeSheets(ctx context.Context, req GradeRequest) (*models.GradeResponse, error)
}

type gradingService struct {
	loader      loader.SheetLoader
	detector    detector.Detector
	engine      *grading.Engine
	renderer    renderer.ReportRenderer
	headerOCR   ocr.HeaderReader // nil disables the header cross-check
	reportStore storage.ReportStore
	pool        *WorkerPool
	events      observer.Subject
}

// NewGradingService wires the pipeline stages together. headerOCR may be nil.
func NewGradingService(
	sheetLoader loader.SheetLoader,
	bubbleDetector detector.Detector,
	engine *grading.Engine,
	reportRenderer renderer.ReportRenderer,
	headerOCR ocr.HeaderReader,
	reportStore storage.ReportStore,
	pool *WorkerPool,
	events observer.Subject,
) GradingService {
	pool.Start()
	return &gradingService{
		loader:      sheetLoader,
		detector:    bubbleDetector,
		engine:      engine,
		renderer:    reportRenderer,
		headerOCR:   headerOCR,
		reportStore: reportStore,
		pool:        pool,
		events:      events,
	}
}

// sheetScan is the load+detect outcome for one sheet. Each sheet's pipeline
// is synchronous; the two sheets run as independent pool jobs.
type sheetScan struct {
	result detector.Result
	raster image.Image
	err    error
}

func (s *gradingService) GradeSheets(ctx context.Context, req GradeRequest) (*models.GradeResponse, error) {
	startTime := time.Now()
	s.events.NotifyObservers(ctx, observer.GradingEvent{
		EventType:   observer.GradingStarted,
		Timestamp:   startTime,
		StudentName: req.StudentName,
	})

	studentScan := s.scanAsync(ctx, req.StudentSheetPath, "student")
	correctScan := s.scanAsync(ctx, req.CorrectSheetPath, "correct")
	student := <-studentScan
	correct := <-correctScan

	if correct.err != nil {
		return nil, s.fail(ctx, req, startTime, correct.err)
	}
	if student.err != nil {
		return nil, s.fail(ctx, req, startTime, student.err)
	}

	result, err := s.engine.Grade(student.result, correct.result, req.StudentName)
	if err != nil {
		return nil, s.fail(ctx, req, startTime, err)
	}

	response := &models.GradeResponse{
		StudentName:     result.StudentName,
		Score:           result.Score,
		TotalQuestions:  result.TotalQuestions,
		Percentage:      result.Percentage,
		CorrectCount:    result.CorrectCount,
		IncorrectCount:  result.IncorrectCount,
		UnansweredCount: result.UnansweredCount,
		StudentAnswers:  result.StudentAnswers,
		CorrectAnswers:  result.CorrectAnswers,
		Verdicts:        result.Verdicts,
	}

	if s.headerOCR != nil {
		if ocrResult, ocrErr := s.headerOCR.ReadHeader(student.raster, req.StudentName); ocrErr != nil {
			logger.WithError(ocrErr).WithFields(logrus.Fields{
				"student_name": req.StudentName,
			}).Warn("Header OCR failed, continuing without it")
		} else {
			response.HeaderOCR = ocrResult
		}
	}

	report, err := s.renderer.Render(student.raster, result, student.result.Coords)
	if err != nil {
		return nil, s.fail(ctx, req, startTime, err)
	}

	reportName := fmt.Sprintf("report_%d.png", time.Now().UnixNano())
	location, err := s.reportStore.Save(ctx, reportName, report)
	if err != nil {
		return nil, s.fail(ctx, req, startTime, err)
	}
	response.ReportURL = location

	s.events.NotifyObservers(ctx, observer.GradingEvent{
		EventType:      observer.GradingCompleted,
		Timestamp:      time.Now(),
		StudentName:    req.StudentName,
		ProcessingTime: time.Since(startTime),
		Success:        true,
		Metadata: map[string]interface{}{
			"score":           result.Score,
			"total_questions": result.TotalQuestions,
			"report":          location,
		},
	})
	return response, nil
}

// scanAsync submits one sheet's load+detect to the pool and returns the
// channel its outcome arrives on.
func (s *gradingService) scanAsync(ctx context.Context, path, kind string) <-chan sheetScan {
	out := make(chan sheetScan, 1)
	s.pool.Submit(func() {
		defer close(out)
		if err := ctx.Err(); err != nil {
			out <- sheetScan{err: err}
			return
		}

		mask, raster, err := s.loader.Load(path)
		if err != nil {
			s.events.NotifyObservers(ctx, observer.GradingEvent{
				EventType:    observer.SheetLoadFailed,
				Timestamp:    time.Now(),
				ErrorMessage: err.Error(),
				Metadata:     map[string]interface{}{"sheet": kind},
			})
			out <- sheetScan{err: err}
			return
		}

		s.events.NotifyObservers(ctx, observer.GradingEvent{
			EventType: observer.SheetLoaded,
			Timestamp: time.Now(),
			Success:   true,
			Metadata:  map[string]interface{}{"sheet": kind},
		})
		out <- sheetScan{result: s.detector.Detect(mask), raster: raster}
	})
	return out
}

func (s *gradingService) fail(ctx context.Context, req GradeRequest, startTime time.Time, err error) error {
	s.events.NotifyObservers(ctx, observer.GradingEvent{
		EventType:      observer.GradingFailed,
		Timestamp:      time.Now(),
		StudentName:    req.StudentName,
		ProcessingTime: time.Since(startTime),
		ErrorMessage:   err.Error(),
	})
	return err
}
