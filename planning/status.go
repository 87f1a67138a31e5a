// Package planning drives one open-space planning cycle: it validates inputs,
// stitches continuity with the previous cycle, invokes the trajectory
// optimizer, partitions the result by gear, verifies it against the predicted
// obstacle field, and finalizes the publishable output.
package planning

import "fmt"

// ErrorCode classifies why a planning cycle degraded. Every code is non-fatal
// to the process; it is surfaced in the output header and, when configured,
// on an estop message.
type ErrorCode int

const (
	// StatusOK marks a successfully published cycle.
	StatusOK ErrorCode = iota
	// StatusStateInvalid marks a vehicle state with non-finite fields.
	StatusStateInvalid
	// StatusContextInitFailure marks a cycle whose environment snapshot could
	// not be constructed.
	StatusContextInitFailure
	// StatusPlannerFailure marks an optimizer that returned no trajectory.
	StatusPlannerFailure
	// StatusTrajectoryTooShort marks a raw trajectory unfit for partitioning.
	StatusTrajectoryTooShort
	// StatusCollisionDetected marks a trajectory overlapping a predicted
	// obstacle footprint.
	StatusCollisionDetected
)

func (c ErrorCode) String() string {
	switch c {
	case StatusOK:
		return "ok"
	case StatusStateInvalid:
		return "state_invalid"
	case StatusContextInitFailure:
		return "context_init_failure"
	case StatusPlannerFailure:
		return "planner_failure"
	case StatusTrajectoryTooShort:
		return "trajectory_too_short"
	case StatusCollisionDetected:
		return "collision_detected"
	default:
		return fmt.Sprintf("error_code_%d", int(c))
	}
}

// cycleError pairs an error code with its cause so the orchestrator boundary
// can translate any stage failure into a degraded output.
type cycleError struct {
	code ErrorCode
	err  error
}

func (e *cycleError) Error() string {
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *cycleError) Unwrap() error {
	return e.err
}

func newCycleError(code ErrorCode, err error) *cycleError {
	return &cycleError{code: code, err: err}
}
