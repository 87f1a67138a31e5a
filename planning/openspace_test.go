package planning

import (
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/motiondeck/openspace/config"
	"github.com/motiondeck/openspace/obstacle"
	"github.com/motiondeck/openspace/spatialmath"
	"github.com/motiondeck/openspace/trajectory"
	"github.com/motiondeck/openspace/vehicle"
)

// fakePlanner drives straight ahead from the seed point at constant speed,
// standing in for the external optimizer.
type fakePlanner struct {
	initCalls int
	planCalls int
	planErr   error
	numPoints int
	speed     float64
}

func (fp *fakePlanner) Init(config.Config) error {
	fp.initCalls++
	return nil
}

func (fp *fakePlanner) Plan(start trajectory.Point, _ *Frame) (trajectory.Points, error) {
	fp.planCalls++
	if fp.planErr != nil {
		return nil, fp.planErr
	}
	const dt = 0.1
	points := make(trajectory.Points, fp.numPoints)
	for i := range points {
		points[i] = trajectory.Point{
			PathPoint: trajectory.PathPoint{
				X:       start.X + fp.speed*dt*float64(i)*math.Cos(start.Heading),
				Y:       start.Y + fp.speed*dt*float64(i)*math.Sin(start.Heading),
				Heading: start.Heading,
			},
			RelativeTime: dt * float64(i),
			V:            fp.speed,
		}
	}
	return points, nil
}

func (fp *fakePlanner) Stop() {}

type fakeMap struct {
	err error
}

func (fm *fakeMap) ParkingBoundary(*RoutingResponse) (ParkingBoundary, error) {
	if fm.err != nil {
		return ParkingBoundary{}, fm.err
	}
	return ParkingBoundary{XMin: -50, XMax: 50, YMin: -20, YMax: 20}, nil
}

func healthyView(timestampSec float64) LocalView {
	return LocalView{
		Localization: &vehicle.Localization{X: 0, Y: 0, Heading: 0, TimestampSec: timestampSec},
		Chassis:      &vehicle.Chassis{SpeedMps: 2, TimestampSec: timestampSec},
		Routing: &RoutingResponse{
			Header:        MessageHeader{TimestampSec: 10, SequenceNum: 7},
			ParkingSpotID: "spot-12",
		},
		Prediction: &PredictionSet{
			SensorTimestamps: SensorTimestamps{LidarTimestamp: 111, CameraTimestamp: 222, RadarTimestamp: 333},
		},
	}
}

func newTestPlanning(t *testing.T, cfg config.Config, planner Planner, mp MapProvider) (*OpenSpacePlanning, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Unix(1000, 0))
	p, err := NewOpenSpacePlanning(cfg, NewSinglePlannerDispatcher(planner), mp,
		golog.NewTestLogger(t), WithClock(mock))
	test.That(t, err, test.ShouldBeNil)
	return p, mock
}

func TestNewOpenSpacePlanningStartupErrors(t *testing.T) {
	logger := golog.NewTestLogger(t)
	planner := &fakePlanner{numPoints: 10, speed: 2}

	// missing map data is startup-fatal
	_, err := NewOpenSpacePlanning(config.Default(), NewSinglePlannerDispatcher(planner), nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "map")

	// no dispatched planner
	_, err = NewOpenSpacePlanning(config.Default(), NewSinglePlannerDispatcher(nil), &fakeMap{}, logger)
	test.That(t, err, test.ShouldNotBeNil)

	// invalid config
	bad := config.Default()
	bad.CyclePeriodSec = -1
	_, err = NewOpenSpacePlanning(bad, NewSinglePlannerDispatcher(planner), &fakeMap{}, logger)
	test.That(t, err, test.ShouldNotBeNil)

	// planner is initialized exactly once at startup
	p, _ := newTestPlanning(t, config.Default(), planner, &fakeMap{})
	test.That(t, planner.initCalls, test.ShouldEqual, 1)
	p.Close()
}

func TestRunOnceHappyPath(t *testing.T) {
	planner := &fakePlanner{numPoints: 20, speed: 2}
	p, _ := newTestPlanning(t, config.Default(), planner, &fakeMap{})

	output := p.RunOnce(healthyView(1000))
	test.That(t, output.Header.Status.Code, test.ShouldEqual, StatusOK)
	test.That(t, output.EStop, test.ShouldBeNil)
	test.That(t, output.NotReady, test.ShouldBeNil)
	test.That(t, output.Gear, test.ShouldEqual, trajectory.GearDrive)
	test.That(t, len(output.Points), test.ShouldBeGreaterThan, 0)

	// first cycle has no continuity to reuse
	test.That(t, output.IsReplan, test.ShouldBeTrue)

	// the point nearest the vehicle reads relative time zero
	test.That(t, output.Points[0].RelativeTime, test.ShouldAlmostEqual, 0)

	// routing header and sensor stamps are echoed
	test.That(t, output.RoutingHeader.SequenceNum, test.ShouldEqual, 7)
	test.That(t, output.Header.SensorTimestamps.LidarTimestamp, test.ShouldEqual, 111)

	// the publishable trajectory was replaced
	test.That(t, p.LastPublishable(), test.ShouldNotBeNil)
	test.That(t, p.LastPublishable().HeaderTimestampSec, test.ShouldAlmostEqual, 1000)
}

func TestRunOnceStitchesSecondCycle(t *testing.T) {
	planner := &fakePlanner{numPoints: 20, speed: 2}
	p, mock := newTestPlanning(t, config.Default(), planner, &fakeMap{})

	first := p.RunOnce(healthyView(1000))
	test.That(t, first.IsReplan, test.ShouldBeTrue)

	// one cycle later the vehicle has tracked the trajectory to x=0.2
	mock.Add(100 * time.Millisecond)
	view := healthyView(1000.1)
	view.Localization.X = 0.2
	second := p.RunOnce(view)
	test.That(t, second.Header.Status.Code, test.ShouldEqual, StatusOK)
	test.That(t, second.IsReplan, test.ShouldBeFalse)
}

func TestRunOnceStateInvalid(t *testing.T) {
	planner := &fakePlanner{numPoints: 20, speed: 2}
	p, _ := newTestPlanning(t, config.Default(), planner, &fakeMap{})

	view := healthyView(1000)
	view.Localization.Heading = math.NaN()
	output := p.RunOnce(view)
	test.That(t, output.Header.Status.Code, test.ShouldEqual, StatusStateInvalid)
	test.That(t, output.Points, test.ShouldHaveLength, 0)

	// rejected upstream of all planning stages
	test.That(t, planner.planCalls, test.ShouldEqual, 0)

	// missing inputs are equally invalid
	output = p.RunOnce(LocalView{})
	test.That(t, output.Header.Status.Code, test.ShouldEqual, StatusStateInvalid)
	test.That(t, planner.planCalls, test.ShouldEqual, 0)
}

func TestRunOnceContextInitFailure(t *testing.T) {
	planner := &fakePlanner{numPoints: 20, speed: 2}

	t.Run("not ready", func(t *testing.T) {
		p, _ := newTestPlanning(t, config.Default(), planner, &fakeMap{err: errors.New("no parking map tile")})
		output := p.RunOnce(healthyView(1000))
		test.That(t, output.Header.Status.Code, test.ShouldEqual, StatusContextInitFailure)
		test.That(t, output.Points, test.ShouldHaveLength, 0)
		test.That(t, output.NotReady, test.ShouldNotBeNil)
		test.That(t, output.EStop, test.ShouldBeNil)
	})

	t.Run("estop when configured to fail safe", func(t *testing.T) {
		cfg := config.Default()
		cfg.PublishEstopOnFailure = true
		p, _ := newTestPlanning(t, cfg, planner, &fakeMap{err: errors.New("no parking map tile")})
		output := p.RunOnce(healthyView(1000))
		test.That(t, output.EStop, test.ShouldNotBeNil)
		test.That(t, output.EStop.IsEStop, test.ShouldBeTrue)
		test.That(t, output.EStop.Reason, test.ShouldContainSubstring, "parking map")
		test.That(t, output.NotReady, test.ShouldBeNil)
	})
}

func TestRunOncePlannerFailure(t *testing.T) {
	planner := &fakePlanner{planErr: errors.New("solver diverged")}
	p, _ := newTestPlanning(t, config.Default(), planner, &fakeMap{})

	output := p.RunOnce(healthyView(1000))
	test.That(t, output.Header.Status.Code, test.ShouldEqual, StatusPlannerFailure)
	test.That(t, output.Points, test.ShouldHaveLength, 0)
	test.That(t, output.Header.Status.Message, test.ShouldContainSubstring, "solver diverged")
}

func TestRunOnceTrajectoryTooShort(t *testing.T) {
	planner := &fakePlanner{numPoints: 2, speed: 2}
	p, _ := newTestPlanning(t, config.Default(), planner, &fakeMap{})

	output := p.RunOnce(healthyView(1000))
	test.That(t, output.Header.Status.Code, test.ShouldEqual, StatusTrajectoryTooShort)
	test.That(t, output.Points, test.ShouldHaveLength, 0)
}

func TestRunOnceCollisionDetected(t *testing.T) {
	planner := &fakePlanner{numPoints: 20, speed: 2}
	cfg := config.Default()
	cfg.PublishEstopOnFailure = true
	p, _ := newTestPlanning(t, cfg, planner, &fakeMap{})

	// a parked car sits squarely on the planned path
	view := healthyView(1000)
	view.Prediction.Obstacles = []*obstacle.Obstacle{{
		ID: "parked car", Length: 4, Width: 2,
		Pose: spatialmath.NewPose(2, 0, 0),
	}}
	output := p.RunOnce(view)
	test.That(t, output.Header.Status.Code, test.ShouldEqual, StatusCollisionDetected)
	test.That(t, output.Points, test.ShouldHaveLength, 0)
	test.That(t, output.EStop, test.ShouldNotBeNil)
}

func TestRunOnceClearObstacle(t *testing.T) {
	planner := &fakePlanner{numPoints: 20, speed: 2}
	p, _ := newTestPlanning(t, config.Default(), planner, &fakeMap{})

	// an obstacle well off the path does not fail the cycle
	view := healthyView(1000)
	view.Prediction.Obstacles = []*obstacle.Obstacle{{
		ID: "far car", Length: 4, Width: 2,
		Pose: spatialmath.NewPose(2, 15, 0),
	}}
	output := p.RunOnce(view)
	test.That(t, output.Header.Status.Code, test.ShouldEqual, StatusOK)
	test.That(t, len(output.Points), test.ShouldBeGreaterThan, 0)

	// the 8s horizon at 0.5s steps yields 16 predicted frames
	test.That(t, p.Environment().NumFrames(), test.ShouldEqual, 16)
}

func TestRunOnceArchivesFrames(t *testing.T) {
	planner := &fakePlanner{numPoints: 20, speed: 2}
	history := NewFrameHistory(3)
	mock := clock.NewMock()
	mock.Set(time.Unix(1000, 0))
	p, err := NewOpenSpacePlanning(config.Default(), NewSinglePlannerDispatcher(planner), &fakeMap{},
		golog.NewTestLogger(t), WithClock(mock), WithFrameHistory(history))
	test.That(t, err, test.ShouldBeNil)

	for i := 0; i < 5; i++ {
		p.RunOnce(healthyView(1000))
	}
	test.That(t, history.Len(), test.ShouldEqual, 3)
	latest := history.Latest()
	test.That(t, latest, test.ShouldNotBeNil)
	test.That(t, latest.SequenceNum(), test.ShouldEqual, uint32(4))
	test.That(t, latest.Output(), test.ShouldNotBeNil)

	p.Close()
	test.That(t, history.Len(), test.ShouldEqual, 0)
}

func TestRunOnceDebugRecording(t *testing.T) {
	planner := &fakePlanner{numPoints: 20, speed: 2}

	cfg := config.Default()
	p, _ := newTestPlanning(t, cfg, planner, &fakeMap{})
	output := p.RunOnce(healthyView(1000))
	test.That(t, output.Debug, test.ShouldBeNil)

	cfg.EnableDebugRecording = true
	p, _ = newTestPlanning(t, cfg, planner, &fakeMap{})
	view := healthyView(1000)
	view.Prediction.Obstacles = []*obstacle.Obstacle{{
		ID: "far car", Length: 4, Width: 2, Pose: spatialmath.NewPose(2, 15, 0),
	}}
	output = p.RunOnce(view)
	test.That(t, output.Debug, test.ShouldNotBeNil)
	test.That(t, len(output.Debug.RawTrajectory), test.ShouldEqual, 20)
	test.That(t, output.Debug.ObstaclePolygons, test.ShouldHaveLength, 1)
}
