// Package obstacle models tracked obstacles and projects their predicted
// footprints into time-indexed frames for collision checking.
package obstacle

import (
	"github.com/motiondeck/openspace/spatialmath"
	"github.com/motiondeck/openspace/trajectory"
	"github.com/motiondeck/openspace/utils"
)

// Obstacle is one tracked obstacle together with its predicted motion. The
// predicted trajectory's relative times are offsets from the prediction
// snapshot; a static obstacle has an empty predicted trajectory and holds its
// perceived pose.
type Obstacle struct {
	ID        string
	Length    float64
	Width     float64
	Pose      spatialmath.Pose
	Predicted trajectory.Points
}

// PointAtTime returns the obstacle's predicted trajectory point at the given
// time offset, interpolating linearly between predicted samples. Offsets
// beyond the prediction clamp to the nearest endpoint; static obstacles always
// report their perceived pose.
func (o *Obstacle) PointAtTime(relativeTime float64) trajectory.Point {
	points := o.Predicted
	if len(points) == 0 {
		return trajectory.Point{PathPoint: trajectory.PathPoint{
			X:       o.Pose.Point.X,
			Y:       o.Pose.Point.Y,
			Heading: o.Pose.Heading,
		}}
	}
	if relativeTime <= points[0].RelativeTime {
		return points[0]
	}
	last := points[len(points)-1]
	if relativeTime >= last.RelativeTime {
		return last
	}
	for i := 1; i < len(points); i++ {
		if relativeTime > points[i].RelativeTime {
			continue
		}
		return interpolate(points[i-1], points[i], relativeTime)
	}
	return last
}

// BoundingBoxAt returns the obstacle's oriented footprint at a trajectory
// point.
func (o *Obstacle) BoundingBoxAt(point trajectory.Point) spatialmath.Box {
	box, err := spatialmath.NewBox(
		spatialmath.NewPose(point.X, point.Y, point.Heading),
		o.Length, o.Width, o.ID)
	if err != nil {
		// dimensions are validated at perception ingest; a zero box is the
		// only safe degenerate footprint
		box, _ = spatialmath.NewBox(spatialmath.NewPose(point.X, point.Y, point.Heading), 0, 0, o.ID)
	}
	return box
}

func interpolate(p0, p1 trajectory.Point, t float64) trajectory.Point {
	span := p1.RelativeTime - p0.RelativeTime
	if span <= 0 {
		return p1
	}
	w := (t - p0.RelativeTime) / span
	lerp := func(a, b float64) float64 { return a + (b-a)*w }
	return trajectory.Point{
		PathPoint: trajectory.PathPoint{
			X:       lerp(p0.X, p1.X),
			Y:       lerp(p0.Y, p1.Y),
			Heading: p0.Heading + utils.AngleNorm(p1.Heading-p0.Heading)*w,
			S:       lerp(p0.S, p1.S),
			Kappa:   lerp(p0.Kappa, p1.Kappa),
		},
		RelativeTime: t,
		V:            lerp(p0.V, p1.V),
		A:            lerp(p0.A, p1.A),
	}
}
