package imaging

import "image"

// InkMask is a binary view over a sheet image where foreground pixels are
// marked ink. It is derived once by Binarize and never mutated afterwards.
type InkMask struct {
	gray *image.Gray
}

// MaskFromGray wraps a binary grayscale image (foreground = nonzero) as an
// InkMask. The caller hands over ownership of the pixel data.
func MaskFromGray(bin *image.Gray) InkMask {
	return InkMask{gray: bin}
}

// Bounds returns the pixel bounds of the mask.
func (m InkMask) Bounds() image.Rectangle {
	if m.gray == nil {
		return image.Rectangle{}
	}
	return m.gray.Bounds()
}

// Width returns the mask width in pixels.
func (m InkMask) Width() int { return m.Bounds().Dx() }

// Height returns the mask height in pixels.
func (m InkMask) Height() int { return m.Bounds().Dy() }

// Foreground reports whether the pixel at (x, y) is ink. Coordinates outside
// the mask are background.
func (m InkMask) Foreground(x, y int) bool {
	if m.gray == nil || !(image.Point{X: x, Y: y}).In(m.gray.Bounds()) {
		return false
	}
	return m.gray.GrayAt(x, y).Y != 0
}

// CountForeground returns the number of ink pixels inside r, clamped to the
// mask bounds. This is the "fill intensity" signal for a bubble's bounding box.
func (m InkMask) CountForeground(r image.Rectangle) int {
	if m.gray == nil {
		return 0
	}
	r = r.Intersect(m.gray.Bounds())
	count := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if m.gray.GrayAt(x, y).Y != 0 {
				count++
			}
		}
	}
	return count
}
