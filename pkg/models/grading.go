package models

// Unanswered is the sentinel recorded when no bubble in a question row is
// filled past the detection threshold.
const Unanswered = "Unanswered"

// AnswerKey maps a 1-based question index to the chosen option letter
// ("A", "B", ...) or Unanswered. One instance per sheet.
type AnswerKey map[int]string

// Bounds is a bubble bounding box in pixel coordinates.
// (X1, Y1) is the top-left corner, (X2, Y2) the bottom-right.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// CoordinateMap maps question index -> option letter -> bounding box.
// It exists only so the report renderer can place its annotations.
type CoordinateMap map[int]map[string]Bounds

// Verdict outcome values.
const (
	OutcomeCorrect    = "correct"
	OutcomeIncorrect  = "incorrect"
	OutcomeUnanswered = "unanswered"
)

// Verdict records how a single question graded.
type Verdict struct {
	Question      int    `json:"question"`
	StudentAnswer string `json:"student_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Outcome       string `json:"outcome"`
}

// GradingResult aggregates both answer sets, per-question verdicts and the
// summary counters for one grading run. It is immutable after construction.
type GradingResult struct {
	StudentName     string    `json:"student_name"`
	StudentAnswers  AnswerKey `json:"student_answers"`
	CorrectAnswers  AnswerKey `json:"correct_answers"`
	TotalQuestions  int       `json:"total_questions"`
	Score           int       `json:"score"`
	CorrectCount    int       `json:"correct_count"`
	IncorrectCount  int       `json:"incorrect_count"`
	UnansweredCount int       `json:"unanswered_count"`
	Percentage      float64   `json:"percentage"`
	Verdicts        []Verdict `json:"verdicts"`
}

// HeaderOCRResult is the optional result of reading the printed header band of
// the student sheet and fuzzy-matching it against the submitted name.
type HeaderOCRResult struct {
	ExtractedText string  `json:"extracted_text"`
	ExpectedName  string  `json:"expected_name"`
	MatchScore    float64 `json:"match_score"`
}

// GradeResponse is the transport payload for a completed grading request.
type GradeResponse struct {
	StudentName     string           `json:"student_name"`
	Score           int              `json:"score"`
	TotalQuestions  int              `json:"total_questions"`
	Percentage      float64          `json:"percentage"`
	CorrectCount    int              `json:"correct_count"`
	IncorrectCount  int              `json:"incorrect_count"`
	UnansweredCount int              `json:"unanswered_count"`
	StudentAnswers  AnswerKey        `json:"student_answers"`
	CorrectAnswers  AnswerKey        `json:"correct_answers"`
	Verdicts        []Verdict        `json:"verdicts"`
	ReportURL       string           `json:"report_url"`
	HeaderOCR       *HeaderOCRResult `json:"header_ocr,omitempty"`
}
