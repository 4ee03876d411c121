package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sunshineplan/imgconv"
	pdfimg "github.com/sunshineplan/pdf"

	apperrors "go-omr-grader/internal/errors"
	"go-omr-grader/internal/imaging"
)

// minPageWidth is the 200 DPI-equivalent width of a letter page. PDF pages
// rasterized narrower than this are upscaled before preprocessing so bubble
// geometry lands in the detector's expected size band.
const minPageWidth = 1700

// SheetLoader normalizes a raster image or single-page document into the
// (InkMask, RasterImage) pair the detection pipeline consumes. The returned
// raster is retained only for report annotation.
type SheetLoader interface {
	Load(path string) (imaging.InkMask, image.Image, error)
}

// source is one supported input kind behind a common decode capability.
type source interface {
	decode() (image.Image, error)
}

type rasterSource struct {
	path string
}

type pdfSource struct {
	path string
}

// sourceFor picks the decode routine from the file extension.
func sourceFor(path string) source {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pdfSource{path: path}
	}
	return rasterSource{path: path}
}

func (s rasterSource) decode() (image.Image, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func (s pdfSource) decode() (image.Image, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to validate document: %w", err)
	}
	if ctx.PageCount == 0 {
		return nil, fmt.Errorf("document has zero pages")
	}

	// Scanned sheets embed the page as a single raster; prefer that over
	// re-rendering. Only the first page is read.
	if pages, err := pdfimg.DecodeAll(bytes.NewReader(data)); err == nil && len(pages) > 0 {
		return upscaleIfSmall(pages[0]), nil
	}

	img, err := imgconv.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize document: %w", err)
	}
	return upscaleIfSmall(img), nil
}

func upscaleIfSmall(img image.Image) image.Image {
	if img.Bounds().Dx() >= minPageWidth {
		return img
	}
	return imgconv.Resize(img, &imgconv.ResizeOption{Width: minPageWidth})
}

type sheetLoader struct{}

// New creates a sheet loader for the supported raster and document formats.
func New() SheetLoader {
	return sheetLoader{}
}

// Load decodes the sheet and preprocesses it for bubble detection:
// grayscale, 5x5 smoothing, then inverted Otsu binarization so ink becomes
// foreground. Same input bytes produce the same mask.
func (sheetLoader) Load(path string) (imaging.InkMask, image.Image, error) {
	img, err := sourceFor(path).decode()
	if err != nil {
		return imaging.InkMask{}, nil, apperrors.NewLoadError(
			fmt.Sprintf("could not load sheet %q", filepath.Base(path)), err)
	}

	gray := imaging.Grayscale(img)
	smoothed := imaging.Smooth(gray)
	level := imaging.OtsuLevel(smoothed)
	mask := imaging.Binarize(smoothed, level)
	return mask, img, nil
}
