package imaging

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"gonum.org/v1/gonum/stat"
)

// smoothingRadius gives the fixed 5x5 Gaussian smoothing kernel applied
// before thresholding.
const smoothingRadius = 2.0

// Grayscale converts an image to 8-bit grayscale.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// Smooth applies the fixed 5x5 Gaussian blur used to suppress scan noise
// before threshold selection.
func Smooth(gray *image.Gray) *image.Gray {
	blurred := blur.Gaussian(gray, smoothingRadius)
	out := image.NewGray(blurred.Bounds())
	draw.Draw(out, out.Bounds(), blurred, blurred.Bounds().Min, draw.Src)
	return out
}

// OtsuLevel selects a global binarization threshold by maximizing the
// between-class variance of the grayscale histogram, so no manual threshold
// tuning is needed across scan exposures.
func OtsuLevel(gray *image.Gray) uint8 {
	var hist [256]float64
	bounds := gray.Bounds()
	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
			total++
		}
	}
	if total == 0 {
		return 0
	}

	levels := make([]float64, 256)
	for i := range levels {
		levels[i] = float64(i)
	}
	globalSum := stat.Mean(levels, hist[:]) * total

	var best, weightB, sumB float64
	var bestLevel uint8
	for t := 0; t < 256; t++ {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t) * hist[t]
		meanB := sumB / weightB
		meanF := (globalSum - sumB) / weightF
		between := weightB * weightF * (meanB - meanF) * (meanB - meanF)
		if between > best {
			best = between
			bestLevel = uint8(t)
		}
	}
	return bestLevel
}

// Binarize produces the inverted ink mask: pixels at or below level become
// foreground. The input image is not modified.
func Binarize(gray *image.Gray, level uint8) InkMask {
	inverted := effect.Invert(gray)
	bin := segment.Threshold(inverted, 255-level)
	return MaskFromGray(bin)
}
