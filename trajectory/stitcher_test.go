package trajectory

import (
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/motiondeck/openspace/vehicle"
)

func prevTrajectory(headerSec float64, n int) *Publishable {
	points := make(Points, n)
	for i := range points {
		points[i] = Point{
			PathPoint:    PathPoint{X: float64(i), Y: 0},
			RelativeTime: 0.1 * float64(i),
			V:            1,
		}
	}
	return NewPublishable(headerSec, points)
}

func TestStitchNoPrevious(t *testing.T) {
	stitcher := NewStitcher(golog.NewTestLogger(t))
	state := vehicle.State{X: 3, Y: 4, Heading: 1, Kappa: 0.1, LinearVelocity: 2, LinearAcceleration: 0.5}

	seed := stitcher.ComputeStitchingTrajectory(state, 100, 0.1, nil)
	test.That(t, seed, test.ShouldHaveLength, 1)
	test.That(t, seed[0].X, test.ShouldEqual, 3)
	test.That(t, seed[0].Heading, test.ShouldEqual, 1)
	test.That(t, seed[0].V, test.ShouldEqual, 2)
	test.That(t, seed[0].RelativeTime, test.ShouldEqual, 0)
}

func TestStitchExpiredPrevious(t *testing.T) {
	stitcher := NewStitcher(golog.NewTestLogger(t))
	prev := prevTrajectory(100, 10) // covers [100.0, 100.9]

	seed := stitcher.ComputeStitchingTrajectory(vehicle.State{}, 105, 0.1, prev)
	test.That(t, seed, test.ShouldHaveLength, 1)
}

func TestStitchReusesPrevious(t *testing.T) {
	stitcher := NewStitcher(golog.NewTestLogger(t))
	prev := prevTrajectory(100, 10)

	// 0.3s into the previous trajectory, vehicle on track at x=3
	state := vehicle.State{X: 3, Y: 0}
	seed := stitcher.ComputeStitchingTrajectory(state, 100.3, 0.1, prev)
	test.That(t, len(seed), test.ShouldBeGreaterThan, 1)

	// the seed's last point is one cycle period ahead of now, rebased so the
	// current moment reads zero
	last := seed[len(seed)-1]
	test.That(t, last.RelativeTime, test.ShouldAlmostEqual, 0.1)
	test.That(t, last.X, test.ShouldEqual, 4)
}

func TestStitchDivergedVehicle(t *testing.T) {
	stitcher := NewStitcher(golog.NewTestLogger(t))
	prev := prevTrajectory(100, 10)

	// vehicle is 20m off the previous trajectory
	state := vehicle.State{X: 3, Y: 20}
	seed := stitcher.ComputeStitchingTrajectory(state, 100.3, 0.1, prev)
	test.That(t, seed, test.ShouldHaveLength, 1)
	test.That(t, seed[0].Y, test.ShouldEqual, 20)
}

func TestPublishablePrependPoints(t *testing.T) {
	pub := NewPublishable(100, Points{{PathPoint: PathPoint{X: 5}}})
	pub.PrependPoints(Points{{PathPoint: PathPoint{X: 3}}, {PathPoint: PathPoint{X: 4}}})
	test.That(t, pub.Points, test.ShouldHaveLength, 3)
	test.That(t, pub.Points[0].X, test.ShouldEqual, 3)
	test.That(t, pub.Points[2].X, test.ShouldEqual, 5)
}

func TestPublishableCopiesPoints(t *testing.T) {
	original := Points{{PathPoint: PathPoint{X: 1}}}
	pub := NewPublishable(0, original)
	original[0].X = 99
	test.That(t, pub.Points[0].X, test.ShouldEqual, 1)
}
