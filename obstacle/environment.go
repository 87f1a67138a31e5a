package obstacle

import (
	"math"

	"github.com/pkg/errors"

	"github.com/motiondeck/openspace/spatialmath"
)

// Environment is the predicted obstacle field over the planning horizon:
// one frame of oriented bounding boxes per discrete time offset, regenerated
// every planning cycle.
type Environment struct {
	frames  [][]spatialmath.Box
	stepSec float64
}

// BuildEnvironment projects every obstacle's footprint at offsets 0, step,
// 2*step, ... while the offset is below the horizon, producing exactly
// ceil(horizon/step) frames.
func BuildEnvironment(obstacles []*Obstacle, horizonSec, stepSec float64) (*Environment, error) {
	if horizonSec <= 0 || stepSec <= 0 {
		return nil, errors.Errorf("prediction horizon %f and step %f must be positive", horizonSec, stepSec)
	}
	env := &Environment{stepSec: stepSec}
	for relativeTime := 0.0; relativeTime < horizonSec; relativeTime += stepSec {
		frame := make([]spatialmath.Box, 0, len(obstacles))
		for _, obs := range obstacles {
			frame = append(frame, obs.BoundingBoxAt(obs.PointAtTime(relativeTime)))
		}
		env.frames = append(env.frames, frame)
	}
	return env, nil
}

// NumFrames returns the number of time-indexed frames in the environment.
func (e *Environment) NumFrames() int {
	return len(e.frames)
}

// Empty returns whether the environment tracks no obstacles at all.
func (e *Environment) Empty() bool {
	return len(e.frames) == 0 || len(e.frames[0]) == 0
}

// FrameAtTime returns the obstacle frame covering the given time offset.
// Negative offsets (stitched lead-in points) resolve to the first frame;
// offsets beyond the horizon report ok=false since the prediction no longer
// covers them.
func (e *Environment) FrameAtTime(relativeTimeSec float64) ([]spatialmath.Box, bool) {
	if len(e.frames) == 0 {
		return nil, false
	}
	index := int(math.Floor(relativeTimeSec / e.stepSec))
	if index < 0 {
		index = 0
	}
	if index >= len(e.frames) {
		return nil, false
	}
	return e.frames[index], true
}
