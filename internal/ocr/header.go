package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/arbovm/levenshtein"
	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"go-omr-grader/pkg/models"
)

// headerBandRatio is the fraction of sheet height treated as the printed
// header. Bubble rows start well below it on every supported layout.
const headerBandRatio = 0.15

// HeaderReader extracts the printed text from the top band of a sheet and
// fuzzy-matches it against the submitted student name. It is an optional
// cross-check; callers must treat any error as non-fatal.
type HeaderReader interface {
	ReadHeader(sheet image.Image, expectedName string) (*models.HeaderOCRResult, error)
}

type tesseractHeaderReader struct{}

// New creates a tesseract-backed header reader.
func New() HeaderReader {
	return tesseractHeaderReader{}
}

func (tesseractHeaderReader) ReadHeader(sheet image.Image, expectedName string) (*models.HeaderOCRResult, error) {
	if sheet == nil {
		return nil, fmt.Errorf("no sheet image for header OCR")
	}

	bounds := sheet.Bounds()
	bandHeight := int(float64(bounds.Dy()) * headerBandRatio)
	if bandHeight < 1 {
		bandHeight = bounds.Dy()
	}
	band := imaging.Crop(sheet, image.Rect(
		bounds.Min.X, bounds.Min.Y,
		bounds.Max.X, bounds.Min.Y+bandHeight,
	))

	var buf bytes.Buffer
	if err := png.Encode(&buf, band); err != nil {
		return nil, fmt.Errorf("failed to encode header band: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set OCR image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR extraction failed: %w", err)
	}

	extracted := normalize(text)
	return &models.HeaderOCRResult{
		ExtractedText: extracted,
		ExpectedName:  expectedName,
		MatchScore:    matchScore(extracted, normalize(expectedName)),
	}, nil
}

// matchScore is 1 - normalized edit distance, in [0, 1]. Case-insensitive;
// two empty strings count as a perfect match.
func matchScore(extracted, expected string) float64 {
	a := strings.ToLower(extracted)
	b := strings.ToLower(expected)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.Distance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
