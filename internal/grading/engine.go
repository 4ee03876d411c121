package grading

import (
	"math"

	"go-omr-grader/internal/detector"
	apperrors "go-omr-grader/internal/errors"
	"go-omr-grader/internal/strategy"
	"go-omr-grader/pkg/models"
)

// Engine compares a student sheet's detected answers against the answer key
// sheet's. Comparison is by option letter only: mismatched choice counts per
// row between the two sheets are tolerated.
type Engine struct {
	emptyPolicy strategy.EmptySheetPolicy
}

// NewEngine creates a grading engine with the given empty-sheet policy.
func NewEngine(policy strategy.EmptySheetPolicy) *Engine {
	return &Engine{emptyPolicy: policy}
}

// Grade scores the student result against the key result. The key defines
// the question count; a key with zero detected questions cannot be graded
// and fails with a config error. A question absent from the student's
// detected set grades as incorrect, not unanswered, unless the detector
// explicitly recorded it as Unanswered.
func (e *Engine) Grade(student, key detector.Result, studentName string) (*models.GradingResult, error) {
	if key.Questions == 0 {
		return nil, apperrors.NewConfigError("answer key sheet yielded no detected questions", nil)
	}
	if student.Empty() {
		if err := e.emptyPolicy.OnEmptySheet(); err != nil {
			return nil, err
		}
	}

	result := &models.GradingResult{
		StudentName:    studentName,
		StudentAnswers: student.Answers,
		CorrectAnswers: key.Answers,
		TotalQuestions: key.Questions,
		Verdicts:       make([]models.Verdict, 0, key.Questions),
	}

	for q := 1; q <= key.Questions; q++ {
		studentAns := student.Answers[q]
		correctAns := key.Answers[q]

		verdict := models.Verdict{
			Question:      q,
			StudentAnswer: studentAns,
			CorrectAnswer: correctAns,
		}
		switch {
		case studentAns == correctAns:
			result.Score++
			result.CorrectCount++
			verdict.Outcome = models.OutcomeCorrect
		case studentAns == models.Unanswered:
			result.UnansweredCount++
			verdict.Outcome = models.OutcomeUnanswered
		default:
			result.IncorrectCount++
			verdict.Outcome = models.OutcomeIncorrect
		}
		result.Verdicts = append(result.Verdicts, verdict)
	}

	result.Percentage = round2(float64(result.Score) / float64(key.Questions) * 100)
	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
