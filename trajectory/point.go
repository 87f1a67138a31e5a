// Package trajectory defines trajectory points and the per-cycle operations on
// them: gear-aware partitioning, publication bookkeeping, and continuity
// stitching between cycles.
package trajectory

import "github.com/golang/geo/r2"

// Gear is the discrete travel direction of a trajectory segment.
type Gear int

// The recognized gear positions. The zero value is neutral so that an
// unassigned gear is never mistaken for a travel direction.
const (
	GearNeutral Gear = iota
	GearDrive
	GearReverse
)

// Sign returns the direction multiplier applied to speed, acceleration and
// curvature for the gear.
func (g Gear) Sign() float64 {
	switch g {
	case GearDrive:
		return 1
	case GearReverse:
		return -1
	default:
		return 0
	}
}

func (g Gear) String() string {
	switch g {
	case GearDrive:
		return "drive"
	case GearReverse:
		return "reverse"
	default:
		return "neutral"
	}
}

// PathPoint is the spatial part of a trajectory point. S is cumulative
// arc-length from the start of the owning segment.
type PathPoint struct {
	X       float64
	Y       float64
	Heading float64
	S       float64
	Kappa   float64
}

// Point returns the planar position of the path point.
func (p PathPoint) Point() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// Point is one sample of a trajectory: a path point plus its temporal state.
// Steer carries the raw steering command the optimizer solved for; curvature is
// derived from it during partitioning.
type Point struct {
	PathPoint
	RelativeTime float64
	V            float64
	A            float64
	Steer        float64
}

// Points is an ordered sequence of trajectory points.
type Points []Point

// Copy returns a deep copy of the trajectory.
func (t Points) Copy() Points {
	out := make(Points, len(t))
	copy(out, t)
	return out
}
