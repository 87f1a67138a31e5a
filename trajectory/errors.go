package trajectory

import "github.com/pkg/errors"

var (
	// ErrTrajectoryTooShort marks a raw trajectory with too few points to
	// partition.
	ErrTrajectoryTooShort = errors.New("invalid trajectory length")

	// ErrGearIndeterminate guards the degenerate vote where no sample carries
	// any direction. Kept even though a trajectory of pure near-zero speeds
	// should never come out of the optimizer.
	ErrGearIndeterminate = errors.New("initial speeds too small to decide gear")
)
