package renderer

import (
	"image"
	"image/color"
	"testing"

	"go-omr-grader/pkg/models"
)

func whiteSheet(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	return ar == br && ag == bg && ab == bb
}

func testResult() (*models.GradingResult, models.CoordinateMap) {
	result := &models.GradingResult{
		StudentName:    "Sam",
		TotalQuestions: 2,
		Score:          1,
		Percentage:     50,
		Verdicts: []models.Verdict{
			{Question: 1, StudentAnswer: "A", CorrectAnswer: "A", Outcome: models.OutcomeCorrect},
			{Question: 2, StudentAnswer: "A", CorrectAnswer: "B", Outcome: models.OutcomeIncorrect},
		},
	}
	coords := models.CoordinateMap{
		1: {
			"A": {X1: 100, Y1: 200, X2: 130, Y2: 230},
			"B": {X1: 150, Y1: 200, X2: 180, Y2: 230},
		},
		2: {
			"A": {X1: 100, Y1: 300, X2: 130, Y2: 330},
			"B": {X1: 150, Y1: 300, X2: 180, Y2: 330},
		},
	}
	return result, coords
}

func TestRenderAnnotates(t *testing.T) {
	r, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	base := whiteSheet(400, 400)
	result, coords := testResult()

	out, err := r.Render(base, result, coords)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	green := color.RGBA{G: 0x80, A: 0xff}
	red := color.RGBA{R: 0xff, A: 0xff}

	// Question 1: the correct pick outlined green.
	if !sameColor(out.At(100, 200), green) {
		t.Error("correct answer outline missing at question 1")
	}
	// Question 2: correct option green, student's wrong pick red.
	if !sameColor(out.At(150, 300), green) {
		t.Error("correct option outline missing at question 2")
	}
	if !sameColor(out.At(100, 300), red) {
		t.Error("wrong answer outline missing at question 2")
	}
	// The cross runs through the wrong bubble's center.
	if !sameColor(out.At(115, 315), red) {
		t.Error("wrong answer cross missing at question 2")
	}
}

func TestRenderDoesNotMutateBase(t *testing.T) {
	r, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	base := whiteSheet(400, 400)
	result, coords := testResult()

	if _, err := r.Render(base, result, coords); err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, p := range []image.Point{{100, 200}, {150, 300}, {115, 315}, {30, 30}} {
		if !sameColor(base.At(p.X, p.Y), color.White) {
			t.Fatalf("base image mutated at %v", p)
		}
	}
}

func TestRenderOutlinesKeyOnUnansweredRow(t *testing.T) {
	r, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result := &models.GradingResult{
		StudentName:    "Sam",
		TotalQuestions: 1,
		Verdicts: []models.Verdict{
			{Question: 1, StudentAnswer: models.Unanswered, CorrectAnswer: "B", Outcome: models.OutcomeUnanswered},
		},
	}
	coords := models.CoordinateMap{
		1: {"B": {X1: 150, Y1: 200, X2: 180, Y2: 230}},
	}

	out, err := r.Render(whiteSheet(400, 400), result, coords)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !sameColor(out.At(150, 200), color.RGBA{G: 0x80, A: 0xff}) {
		t.Error("unanswered row should still outline the correct option")
	}
}

func TestRenderCustomColors(t *testing.T) {
	opts, err := ParseColors("#0000ff", "#ffff00")
	if err != nil {
		t.Fatalf("ParseColors: %v", err)
	}
	r, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, coords := testResult()
	out, err := r.Render(whiteSheet(400, 400), result, coords)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !sameColor(out.At(100, 200), color.RGBA{B: 0xff, A: 0xff}) {
		t.Error("custom correct color not applied")
	}
	if !sameColor(out.At(100, 300), color.RGBA{R: 0xff, G: 0xff, A: 0xff}) {
		t.Error("custom wrong color not applied")
	}
}

func TestParseColorsRejectsBadHex(t *testing.T) {
	if _, err := ParseColors("green", "#ff0000"); err == nil {
		t.Error("expected error for a non-hex correct color")
	}
	if _, err := ParseColors("#008000", "red"); err == nil {
		t.Error("expected error for a non-hex wrong color")
	}
}

func TestRenderNilBase(t *testing.T) {
	r, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, coords := testResult()
	if _, err := r.Render(nil, result, coords); err == nil {
		t.Error("expected error for a nil base image")
	}
}
