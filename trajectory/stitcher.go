package trajectory

import (
	"math"

	"github.com/edaniels/golog"

	"github.com/motiondeck/openspace/vehicle"
)

const (
	// stitchPreservedPoints bounds how much of the previous trajectory is kept
	// as lead-in ahead of the planning start point.
	stitchPreservedPoints = 20
	// replanDistanceThreshold is the position deviation between the vehicle
	// and the previous trajectory beyond which continuity is abandoned.
	replanDistanceThreshold = 5.0
)

// Stitcher computes the continuity seed bridging the previous cycle's
// published trajectory with the current vehicle state.
type Stitcher struct {
	logger golog.Logger
}

// NewStitcher returns a Stitcher.
func NewStitcher(logger golog.Logger) *Stitcher {
	return &Stitcher{logger: logger}
}

// reinitFromState collapses the seed to a single point at the current vehicle
// state. A one-point seed signals a replan to the rest of the cycle.
func reinitFromState(state vehicle.State) Points {
	return Points{{
		PathPoint: PathPoint{
			X:       state.X,
			Y:       state.Y,
			Heading: state.Heading,
			Kappa:   state.Kappa,
		},
		V: state.LinearVelocity,
		A: state.LinearAcceleration,
	}}
}

// ComputeStitchingTrajectory returns the seed trajectory handed to the
// optimizer. When the previous publishable trajectory is still temporally
// valid and the vehicle has not diverged from it, the seed is the tail window
// of that trajectory around the point one cycle period ahead of now, rebased
// to the new cycle's time origin; the window's last point is the planning
// start point. Otherwise the seed restarts from the current vehicle state.
func (s *Stitcher) ComputeStitchingTrajectory(
	state vehicle.State,
	currentTimestampSec float64,
	cyclePeriodSec float64,
	prev *Publishable,
) Points {
	if prev == nil || len(prev.Points) == 0 {
		s.logger.Debug("no previous publishable trajectory, starting fresh")
		return reinitFromState(state)
	}

	relativeNow := currentTimestampSec - prev.HeaderTimestampSec
	matchedTime := relativeNow + cyclePeriodSec
	points := prev.Points
	if matchedTime < points[0].RelativeTime || matchedTime > points[len(points)-1].RelativeTime {
		s.logger.Debugw("previous trajectory expired, starting fresh",
			"matched_time", matchedTime)
		return reinitFromState(state)
	}

	// the point the vehicle should currently be tracking
	nowIndex := lowerBoundTime(points, relativeNow)
	dx := points[nowIndex].X - state.X
	dy := points[nowIndex].Y - state.Y
	if deviation := math.Sqrt(dx*dx + dy*dy); deviation > replanDistanceThreshold {
		s.logger.Infow("vehicle diverged from previous trajectory, starting fresh",
			"deviation_m", deviation)
		return reinitFromState(state)
	}

	matchedIndex := lowerBoundTime(points, matchedTime)
	start := matchedIndex - stitchPreservedPoints
	if start < 0 {
		start = 0
	}
	seed := points[start : matchedIndex+1].Copy()
	for i := range seed {
		seed[i].RelativeTime -= relativeNow
	}
	return seed
}

// lowerBoundTime returns the index of the first point whose relative time is
// at or after t. Points are time-ordered.
func lowerBoundTime(points Points, t float64) int {
	for i, p := range points {
		if p.RelativeTime >= t {
			return i
		}
	}
	return len(points) - 1
}
