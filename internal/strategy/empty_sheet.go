package strategy

import (
	"fmt"

	apperrors "go-omr-grader/internal/errors"
)

// EmptySheetPolicy decides how to treat a student sheet on which the detector
// found no bubble candidates at all. The answer key is never subject to a
// policy; an empty key is always a hard error.
type EmptySheetPolicy interface {
	// OnEmptySheet returns nil to let grading continue with an empty answer
	// set, or an error to reject the request.
	OnEmptySheet() error
	Name() string
}

// LenientEmptySheet lets an empty student sheet grade normally: every key
// question compares against a missing answer and scores as incorrect.
type LenientEmptySheet struct{}

func (LenientEmptySheet) OnEmptySheet() error { return nil }

func (LenientEmptySheet) Name() string { return "lenient" }

// StrictEmptySheet rejects a student sheet with no detected bubbles instead
// of silently scoring it at zero.
type StrictEmptySheet struct{}

func (StrictEmptySheet) OnEmptySheet() error {
	return apperrors.NewProcessingError("no bubbles detected on student sheet", nil)
}

func (StrictEmptySheet) Name() string { return "strict" }

// ForName returns the policy for a configured name.
func ForName(name string) (EmptySheetPolicy, error) {
	switch name {
	case "lenient":
		return LenientEmptySheet{}, nil
	case "strict":
		return StrictEmptySheet{}, nil
	default:
		return nil, fmt.Errorf("unknown empty sheet policy: %q", name)
	}
}
