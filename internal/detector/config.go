package detector

import "fmt"

// Config holds the bubble geometry thresholds. The defaults are tuned for
// 200 DPI sheets; every value can be overridden without recompilation.
type Config struct {
	// MinArea and MaxArea bound the bounding-box area (in pixels) of a
	// candidate bubble region.
	MinArea int
	MaxArea int

	// MinAspect and MaxAspect bound width/height of a candidate, keeping
	// only roughly circular or square regions.
	MinAspect float64
	MaxAspect float64

	// RowTolerance is the vertical distance (pixels) within which a blob
	// still belongs to the current question row.
	RowTolerance int

	// FillThreshold is the minimum foreground pixel count for a bubble to
	// count as filled. A row whose best bubble is at or below it is
	// recorded as Unanswered.
	FillThreshold int
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		MinArea:       500,
		MaxArea:       5000,
		MinAspect:     0.8,
		MaxAspect:     1.2,
		RowTolerance:  20,
		FillThreshold: 50,
	}
}

// Validate reports the first nonsensical threshold combination.
func (c Config) Validate() error {
	if c.MinArea <= 0 || c.MaxArea < c.MinArea {
		return fmt.Errorf("invalid area range [%d, %d]", c.MinArea, c.MaxArea)
	}
	if c.MinAspect <= 0 || c.MaxAspect < c.MinAspect {
		return fmt.Errorf("invalid aspect range [%g, %g]", c.MinAspect, c.MaxAspect)
	}
	if c.RowTolerance < 0 {
		return fmt.Errorf("invalid row tolerance %d", c.RowTolerance)
	}
	if c.FillThreshold < 0 {
		return fmt.Errorf("invalid fill threshold %d", c.FillThreshold)
	}
	return nil
}
