package planning

import (
	"github.com/motiondeck/openspace/obstacle"
	"github.com/motiondeck/openspace/spatialmath"
	"github.com/motiondeck/openspace/trajectory"
	"github.com/motiondeck/openspace/vehicle"
)

// egoFootprint places the vehicle's bounding box at a trajectory point. The
// point references the rear axle, so the box is slid forward along the heading
// until its geometric center sits length/2 - backEdgeToCenter ahead of it.
func egoFootprint(point trajectory.Point, params vehicle.Params) spatialmath.Box {
	pose := spatialmath.NewPose(point.X, point.Y, point.Heading)
	box, err := spatialmath.NewBox(pose, params.LengthM, params.WidthM, "ego")
	if err != nil {
		// params are validated at startup; fall back to a point footprint
		box, _ = spatialmath.NewBox(pose, 0, 0, "ego")
	}
	shift := params.LengthM/2 - params.BackEdgeToCenter
	return box.Shift(pose.HeadingVector().Mul(shift))
}

// isCollisionFreeTrajectory checks every selected trajectory point's ego
// footprint against the predicted obstacle frame covering that point's time.
// An empty environment passes vacuously; points past the prediction horizon
// are not checked since the prediction no longer covers them.
func isCollisionFreeTrajectory(
	selected trajectory.Points,
	env *obstacle.Environment,
	params vehicle.Params,
) bool {
	if env == nil || env.Empty() {
		return true
	}
	for _, point := range selected {
		frame, ok := env.FrameAtTime(point.RelativeTime)
		if !ok {
			continue
		}
		ego := egoFootprint(point, params)
		for _, obstacleBox := range frame {
			if ego.HasOverlap(obstacleBox) {
				return false
			}
		}
	}
	return true
}
