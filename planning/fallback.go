package planning

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/motiondeck/openspace/trajectory"
	"github.com/motiondeck/openspace/vehicle"
)

const (
	// fallbackDeceleration is the comfortable braking rate for the safe stop
	// trajectory.
	fallbackDeceleration = 1.0
	fallbackSamples      = 21
	fallbackMinDuration  = 0.5
)

// fallbackStopTrajectory produces a straight-line deceleration to rest from
// the current vehicle state, used when a cycle would otherwise publish nothing
// and the configuration asks for a fallback instead.
func fallbackStopTrajectory(state vehicle.State) trajectory.Points {
	speed := math.Abs(state.LinearVelocity)
	duration := speed / fallbackDeceleration
	if duration < fallbackMinDuration {
		duration = fallbackMinDuration
	}
	direction := 1.0
	if state.LinearVelocity < 0 {
		direction = -1.0
	}

	times := make([]float64, fallbackSamples)
	floats.Span(times, 0, duration)
	points := make(trajectory.Points, fallbackSamples)
	for i, t := range times {
		v := speed - fallbackDeceleration*t
		if v < 0 {
			v = 0
		}
		s := speed*t - 0.5*fallbackDeceleration*t*t
		if capS := speed * speed / (2 * fallbackDeceleration); s > capS {
			s = capS
		}
		points[i] = trajectory.Point{
			PathPoint: trajectory.PathPoint{
				X:       state.X + direction*s*math.Cos(state.Heading),
				Y:       state.Y + direction*s*math.Sin(state.Heading),
				Heading: state.Heading,
				S:       s,
			},
			RelativeTime: t,
			V:            v,
			A:            -fallbackDeceleration,
		}
	}
	return points
}
