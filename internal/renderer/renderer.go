package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/gofont/goregular"

	"go-omr-grader/pkg/models"
)

const (
	outlineWidth  = 3
	headerMargin  = 24
	headerSize    = 28.0
	headerSpacing = 36
)

// Options configure the annotation colors. Zero-value options render with the
// default green/red pair.
type Options struct {
	CorrectColor color.Color
	WrongColor   color.Color
}

// ParseColors builds Options from #RRGGBB hex strings.
func ParseColors(correctHex, wrongHex string) (Options, error) {
	correct, err := colorful.Hex(correctHex)
	if err != nil {
		return Options{}, fmt.Errorf("invalid correct color %q: %w", correctHex, err)
	}
	wrong, err := colorful.Hex(wrongHex)
	if err != nil {
		return Options{}, fmt.Errorf("invalid wrong color %q: %w", wrongHex, err)
	}
	return Options{CorrectColor: correct, WrongColor: wrong}, nil
}

// ReportRenderer draws a graded copy of the student sheet: the correct option
// of every question outlined, the student's wrong picks crossed out, and a
// name/score header.
type ReportRenderer interface {
	Render(base image.Image, result *models.GradingResult, coords models.CoordinateMap) (image.Image, error)
}

type reportRenderer struct {
	opts Options
	font *truetype.Font
}

// New creates a renderer with the given colors.
func New(opts Options) (ReportRenderer, error) {
	if opts.CorrectColor == nil {
		opts.CorrectColor = color.RGBA{G: 0x80, A: 0xff}
	}
	if opts.WrongColor == nil {
		opts.WrongColor = color.RGBA{R: 0xff, A: 0xff}
	}
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header font: %w", err)
	}
	return &reportRenderer{opts: opts, font: f}, nil
}

// Render annotates a clone of the base image. The base is never mutated, so
// the same decoded sheet can back several renders.
func (r *reportRenderer) Render(base image.Image, result *models.GradingResult, coords models.CoordinateMap) (image.Image, error) {
	if base == nil {
		return nil, fmt.Errorf("no base image to annotate")
	}
	canvas := imaging.Clone(base)

	for _, v := range result.Verdicts {
		boxes := coords[v.Question]
		if boxes == nil {
			continue
		}
		// The correct option is always outlined, even on unanswered rows,
		// so the report doubles as a marked-up answer key.
		if b, ok := boxes[v.CorrectAnswer]; ok {
			drawOutline(canvas, b, r.opts.CorrectColor)
		}
		if v.Outcome == models.OutcomeIncorrect {
			if b, ok := boxes[v.StudentAnswer]; ok {
				drawOutline(canvas, b, r.opts.WrongColor)
				drawCross(canvas, b, r.opts.WrongColor)
			}
		}
	}

	if err := r.drawHeader(canvas, result); err != nil {
		return nil, err
	}
	return canvas, nil
}

func (r *reportRenderer) drawHeader(canvas *image.NRGBA, result *models.GradingResult) error {
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(r.font)
	ctx.SetFontSize(headerSize)
	ctx.SetClip(canvas.Bounds())
	ctx.SetDst(canvas)
	ctx.SetSrc(image.NewUniform(r.opts.WrongColor))

	lines := []string{
		fmt.Sprintf("Student: %s", result.StudentName),
		fmt.Sprintf("Score: %d/%d (%.2f%%)", result.Score, result.TotalQuestions, result.Percentage),
	}
	pt := freetype.Pt(headerMargin, headerMargin+int(ctx.PointToFixed(headerSize)>>6))
	for _, line := range lines {
		if _, err := ctx.DrawString(line, pt); err != nil {
			return fmt.Errorf("failed to draw report header: %w", err)
		}
		pt.Y += ctx.PointToFixed(headerSpacing)
	}
	return nil
}

// drawOutline paints a hollow rectangle of outlineWidth around the box.
func drawOutline(canvas *image.NRGBA, b models.Bounds, c color.Color) {
	src := image.NewUniform(c)
	top := image.Rect(b.X1, b.Y1, b.X2, b.Y1+outlineWidth)
	bottom := image.Rect(b.X1, b.Y2-outlineWidth, b.X2, b.Y2)
	left := image.Rect(b.X1, b.Y1, b.X1+outlineWidth, b.Y2)
	right := image.Rect(b.X2-outlineWidth, b.Y1, b.X2, b.Y2)
	for _, edge := range []image.Rectangle{top, bottom, left, right} {
		draw.Draw(canvas, edge.Intersect(canvas.Bounds()), src, image.Point{}, draw.Over)
	}
}

// drawCross paints both diagonals of the box.
func drawCross(canvas *image.NRGBA, b models.Bounds, c color.Color) {
	w := b.X2 - b.X1
	h := b.Y2 - b.Y1
	if w <= 0 || h <= 0 {
		return
	}
	steps := w
	if h > steps {
		steps = h
	}
	bounds := canvas.Bounds()
	for i := 0; i <= steps; i++ {
		x := b.X1 + i*w/steps
		y := b.Y1 + i*h/steps
		setThick(canvas, bounds, x, y, c)
		setThick(canvas, bounds, x, b.Y2-(y-b.Y1), c)
	}
}

func setThick(canvas *image.NRGBA, bounds image.Rectangle, x, y int, c color.Color) {
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			if (image.Point{X: x + dx, Y: y + dy}).In(bounds) {
				canvas.Set(x+dx, y+dy, c)
			}
		}
	}
}
