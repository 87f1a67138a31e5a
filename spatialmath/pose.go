// Package spatialmath defines the planar geometric primitives used for
// footprint placement and overlap checking.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/motiondeck/openspace/utils"
)

// Pose is a planar pose: a position paired with a heading measured
// counterclockwise from the positive x axis, in radians.
type Pose struct {
	Point   r2.Point
	Heading float64
}

// NewPose instantiates a Pose from coordinates and a heading.
func NewPose(x, y, heading float64) Pose {
	return Pose{Point: r2.Point{X: x, Y: y}, Heading: heading}
}

// HeadingVector returns the unit vector pointing along the pose's heading.
func (p Pose) HeadingVector() r2.Point {
	return r2.Point{X: math.Cos(p.Heading), Y: math.Sin(p.Heading)}
}

// Translate returns the pose moved by the given vector, heading unchanged.
func (p Pose) Translate(vec r2.Point) Pose {
	return Pose{Point: p.Point.Add(vec), Heading: p.Heading}
}

// AlmostCoincident compares two poses and returns whether they are within epsilon
// of each other in both position and heading.
func AlmostCoincident(p1, p2 Pose, epsilon float64) bool {
	return utils.Float64AlmostEqual(p1.Point.X, p2.Point.X, epsilon) &&
		utils.Float64AlmostEqual(p1.Point.Y, p2.Point.Y, epsilon) &&
		math.Abs(utils.AngleNorm(p1.Heading-p2.Heading)) < epsilon
}
