package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/motiondeck/openspace/utils"
)

// Ordered list of box corners in the box frame, scaled by the half size.
var boxCorners = [4]r2.Point{
	{X: 1, Y: 1},
	{X: 1, Y: -1},
	{X: -1, Y: -1},
	{X: -1, Y: 1},
}

// Box is an oriented planar rectangle. A pose and a half size fully define it;
// the pose marks the geometric center of the rectangle and its heading points
// along the length axis.
type Box struct {
	pose     Pose
	halfSize [2]float64
	label    string
}

// NewBox instantiates a Box from a center pose and its full length and width.
func NewBox(pose Pose, length, width float64, label string) (Box, error) {
	if length < 0 || width < 0 {
		return Box{}, newBadBoxDimensionsError(length, width)
	}
	return Box{pose: pose, halfSize: [2]float64{length / 2, width / 2}, label: label}, nil
}

// Pose returns the center pose of the box.
func (b Box) Pose() Pose {
	return b.pose
}

// Label returns the name of the box, if any.
func (b Box) Label() string {
	return b.label
}

// Length returns the full extent of the box along its heading axis.
func (b Box) Length() float64 {
	return 2 * b.halfSize[0]
}

// Width returns the full extent of the box across its heading axis.
func (b Box) Width() float64 {
	return 2 * b.halfSize[1]
}

// Shift returns the box translated by the given vector, orientation unchanged.
func (b Box) Shift(vec r2.Point) Box {
	shifted := b
	shifted.pose = b.pose.Translate(vec)
	return shifted
}

// axes returns the box's two edge normals: the heading axis and its
// perpendicular. For rectangles these are the only separating-axis candidates
// the box contributes.
func (b Box) axes() [2]r2.Point {
	u := b.pose.HeadingVector()
	return [2]r2.Point{u, {X: -u.Y, Y: u.X}}
}

// Vertices returns the box's four corners in counterclockwise order.
func (b Box) Vertices() [4]r2.Point {
	ax := b.axes()
	vertices := [4]r2.Point{}
	for i, corner := range boxCorners {
		offset := ax[0].Mul(corner.X * b.halfSize[0]).Add(ax[1].Mul(corner.Y * b.halfSize[1]))
		vertices[i] = b.pose.Point.Add(offset)
	}
	return vertices
}

// projectedRadius returns half the length of the box's projection onto the
// given unit axis.
func (b Box) projectedRadius(axis r2.Point) float64 {
	ax := b.axes()
	return b.halfSize[0]*math.Abs(axis.Dot(ax[0])) + b.halfSize[1]*math.Abs(axis.Dot(ax[1]))
}

// HasOverlap performs a separating-axis test between two oriented rectangles.
// In the plane only the four edge normals need checking; if the centers'
// separation exceeds the summed projection radii on any of them, the boxes are
// disjoint. Touching boxes count as overlapping.
func (b Box) HasOverlap(other Box) bool {
	centerDist := other.pose.Point.Sub(b.pose.Point)
	bAxes, otherAxes := b.axes(), other.axes()
	for _, axis := range []r2.Point{bAxes[0], bAxes[1], otherAxes[0], otherAxes[1]} {
		gap := math.Abs(centerDist.Dot(axis)) - b.projectedRadius(axis) - other.projectedRadius(axis)
		if gap > floatEpsilon {
			return false
		}
	}
	return true
}

// AlmostEqual compares two boxes and returns whether they are within epsilon of
// each other in pose and dimensions.
func (b Box) AlmostEqual(other Box, epsilon float64) bool {
	return AlmostCoincident(b.pose, other.pose, epsilon) &&
		utils.Float64AlmostEqual(b.halfSize[0], other.halfSize[0], epsilon) &&
		utils.Float64AlmostEqual(b.halfSize[1], other.halfSize[1], epsilon)
}

// floatEpsilon absorbs accumulated rounding error in the SAT projections.
const floatEpsilon = 1e-9
