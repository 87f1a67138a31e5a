package spatialmath

import "github.com/pkg/errors"

func newBadBoxDimensionsError(length, width float64) error {
	return errors.Errorf("box dimensions must be non-negative, got length %f width %f", length, width)
}
