package detector

import (
	"image"
	"sort"

	"go-omr-grader/internal/imaging"
	"go-omr-grader/pkg/models"
)

// BlobRegion is a connected foreground region that passed the bubble
// geometry filter. Area is the bounding-box area, the cheap analogue of the
// region's enclosed area: a hollow (unmarked) bubble outline must stay a
// candidate even though few of its pixels are set.
type BlobRegion struct {
	X, Y, W, H int
	Area       int
}

func (b BlobRegion) bounds() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// Result is the outcome of scanning one sheet. A Result with zero Questions
// is a valid outcome signaling an unreadable or blank sheet, never an error;
// the grading engine decides what that means for each sheet kind.
type Result struct {
	Answers   models.AnswerKey
	Coords    models.CoordinateMap
	Questions int
}

// Empty reports whether no bubble rows were detected.
func (r Result) Empty() bool { return r.Questions == 0 }

// Detector discovers the question/choice grid of an ink mask from pixel
// geometry alone, with no layout template.
type Detector interface {
	Detect(mask imaging.InkMask) Result
}

type bubbleDetector struct {
	cfg Config
}

// New creates a bubble detector with the given thresholds.
func New(cfg Config) (Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &bubbleDetector{cfg: cfg}, nil
}

// Detect extracts bubble candidates, groups them into question rows top to
// bottom, letters each row's choices left to right and picks the most filled
// bubble per row. Malformed geometry degrades to empty or Unanswered entries;
// it never fails.
func (d *bubbleDetector) Detect(mask imaging.InkMask) Result {
	blobs := d.extractBlobs(mask)

	result := Result{
		Answers: models.AnswerKey{},
		Coords:  models.CoordinateMap{},
	}
	if len(blobs) == 0 {
		return result
	}

	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Y < blobs[j].Y })
	rows := clusterRows(blobs, d.cfg.RowTolerance)
	result.Questions = len(rows)

	for i, row := range rows {
		sort.Slice(row, func(a, b int) bool { return row[a].X < row[b].X })

		question := i + 1
		coords := make(map[string]models.Bounds, len(row))
		maxFill := 0
		selected := ""

		for choice, blob := range row {
			letter := string(rune('A' + choice))
			coords[letter] = models.Bounds{
				X1: blob.X, Y1: blob.Y,
				X2: blob.X + blob.W, Y2: blob.Y + blob.H,
			}
			// Strict > keeps the first (leftmost) maximum on ties.
			if fill := mask.CountForeground(blob.bounds()); fill > maxFill {
				maxFill = fill
				selected = letter
			}
		}

		if maxFill > d.cfg.FillThreshold {
			result.Answers[question] = selected
		} else {
			result.Answers[question] = models.Unanswered
		}
		result.Coords[question] = coords
	}
	return result
}

// extractBlobs labels 8-connected foreground components and keeps those whose
// bounding box matches bubble geometry.
func (d *bubbleDetector) extractBlobs(mask imaging.InkMask) []BlobRegion {
	bounds := mask.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	visited := make([]bool, width*height)
	var blobs []BlobRegion

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			idx := (y-bounds.Min.Y)*width + (x - bounds.Min.X)
			if visited[idx] || !mask.Foreground(x, y) {
				continue
			}
			blob := traceComponent(mask, visited, x, y)
			area := blob.W * blob.H
			if area < d.cfg.MinArea || area > d.cfg.MaxArea {
				continue
			}
			aspect := float64(blob.W) / float64(blob.H)
			if aspect < d.cfg.MinAspect || aspect > d.cfg.MaxAspect {
				continue
			}
			blob.Area = area
			blobs = append(blobs, blob)
		}
	}
	return blobs
}

// traceComponent flood-fills one connected component and returns its bounding
// box. Stack based to avoid recursion depth limits on large regions.
func traceComponent(mask imaging.InkMask, visited []bool, startX, startY int) BlobRegion {
	bounds := mask.Bounds()
	width := bounds.Dx()

	minX, minY := startX, startY
	maxX, maxY := startX, startY

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !p.In(bounds) {
			continue
		}
		idx := (p.Y-bounds.Min.Y)*width + (p.X - bounds.Min.X)
		if visited[idx] || !mask.Foreground(p.X, p.Y) {
			continue
		}
		visited[idx] = true

		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}

	return BlobRegion{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}
}

// clusterRows groups Y-sorted blobs into question rows with a single pass: a
// blob joins the current row while its top Y is within tolerance of the row's
// anchor (the first blob placed in that row), otherwise it anchors a new row.
// This is a one-dimensional interval grouping, not true clustering; skewed
// sheets can merge or split rows. Row order is question order.
func clusterRows(blobs []BlobRegion, tolerance int) [][]BlobRegion {
	var rows [][]BlobRegion
	current := []BlobRegion{blobs[0]}
	anchorY := blobs[0].Y

	for _, blob := range blobs[1:] {
		if abs(blob.Y-anchorY) <= tolerance {
			current = append(current, blob)
			continue
		}
		rows = append(rows, current)
		current = []BlobRegion{blob}
		anchorY = blob.Y
	}
	return append(rows, current)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
