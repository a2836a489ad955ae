package algorithms

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a transform receives an empty Mat.
	ErrEmptyInput = errors.New("input image is empty")

	// ErrImageTooSmall is returned by RemoveBackground when the inset seed
	// rectangle would have no area.
	ErrImageTooSmall = errors.New("image too small for background segmentation")
)

// InvalidParameterError reports a parameter outside the range an operation
// accepts. Transforms themselves are lenient; Validate is the strict path.
type InvalidParameterError struct {
	Algorithm string
	Param     string
	Value     interface{}
	Reason    string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v for %s: %s", e.Param, e.Value, e.Algorithm, e.Reason)
}

func invalidParam(algorithm, param string, value interface{}, format string, args ...interface{}) error {
	return &InvalidParameterError{
		Algorithm: algorithm,
		Param:     param,
		Value:     value,
		Reason:    fmt.Sprintf(format, args...),
	}
}
