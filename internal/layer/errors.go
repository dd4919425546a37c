package layer

import (
	"errors"
	"fmt"
)

// MissingInputError reports a required input that does not exist or cannot
// be parsed as a vector layer.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input %s: %v", e.Path, e.Err)
}

func (e *MissingInputError) Unwrap() error {
	return e.Err
}

// ProjectionError reports a layer whose source reference is undefined or
// cannot be transformed into the target CRS.
type ProjectionError struct {
	Path string
	Err  error
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("projection %s: %v", e.Path, e.Err)
}

func (e *ProjectionError) Unwrap() error {
	return e.Err
}

// IsMissingInput returns true if err (or any error in its chain) is a MissingInputError.
func IsMissingInput(err error) bool {
	var me *MissingInputError
	return errors.As(err, &me)
}

// IsProjection returns true if err (or any error in its chain) is a ProjectionError.
func IsProjection(err error) bool {
	var pe *ProjectionError
	return errors.As(err, &pe)
}
