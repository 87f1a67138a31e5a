// Package main runs the open-space planner at a fixed cycle over a simulated
// parking approach, standing in for the real input publishers and optimizer.
package main

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"go.viam.com/utils"

	"github.com/motiondeck/openspace/config"
	"github.com/motiondeck/openspace/planning"
	"github.com/motiondeck/openspace/trajectory"
	"github.com/motiondeck/openspace/vehicle"
)

var logger = golog.NewDevelopmentLogger("openspace")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string  `flag:"config,usage=path to planning config JSON"`
	Cycles     int     `flag:"cycles,default=100,usage=number of planning cycles to run"`
	StartSpeed float64 `flag:"speed,default=1.5,usage=initial vehicle speed (m/s)"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg := config.Default()
	if argsParsed.ConfigFile != "" {
		var err error
		if cfg, err = config.Read(argsParsed.ConfigFile); err != nil {
			return err
		}
	}

	dispatcher := planning.NewSinglePlannerDispatcher(&creepPlanner{})
	planner, err := planning.NewOpenSpacePlanning(cfg, dispatcher, staticLotMap{}, logger)
	if err != nil {
		return err
	}
	defer planner.Close()

	var activeBackgroundWorkers sync.WaitGroup
	errCh := make(chan error, 1)
	activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		errCh <- runCycles(ctx, planner, cfg, argsParsed, logger)
	}, activeBackgroundWorkers.Done)
	activeBackgroundWorkers.Wait()
	return <-errCh
}

// runCycles drives the planner at its configured period, feeding back a
// simulated vehicle that tracks each published trajectory.
func runCycles(
	ctx context.Context,
	planner *planning.OpenSpacePlanning,
	cfg config.Config,
	args Arguments,
	logger golog.Logger,
) error {
	period := time.Duration(cfg.CyclePeriodSec * float64(time.Second))
	sim := simVehicle{speed: args.StartSpeed}

	for i := 0; i < args.Cycles; i++ {
		now := float64(time.Now().UnixNano()) / 1e9
		output := planner.RunOnce(planning.LocalView{
			Localization: &vehicle.Localization{
				X: sim.x, Y: sim.y, Heading: sim.heading, TimestampSec: now,
			},
			Chassis: &vehicle.Chassis{SpeedMps: sim.speed, TimestampSec: now},
			Routing: &planning.RoutingResponse{
				Header:        planning.MessageHeader{TimestampSec: 1, SequenceNum: 1},
				ParkingSpotID: "demo-spot",
			},
			Prediction: &planning.PredictionSet{},
		})

		logger.Infow("cycle finished",
			"seq", i,
			"status", output.Header.Status.Code.String(),
			"gear", output.Gear.String(),
			"replan", output.IsReplan,
			"points", len(output.Points),
			"total_ms", output.Latency.TotalTimeMs,
		)
		sim.track(output, cfg.CyclePeriodSec)

		if !utils.SelectContextOrWait(ctx, period) {
			return ctx.Err()
		}
	}
	return nil
}

// simVehicle is a kinematic stand-in for the real vehicle: it moves one cycle
// period along the latest published trajectory.
type simVehicle struct {
	x, y, heading float64
	speed         float64
}

func (s *simVehicle) track(output *planning.CycleOutput, periodSec float64) {
	if len(output.Points) == 0 {
		s.speed = 0
		return
	}
	for _, p := range output.Points {
		if p.RelativeTime >= periodSec {
			s.x, s.y, s.heading = p.X, p.Y, p.Heading
			s.speed = p.V * output.Gear.Sign()
			return
		}
	}
	last := output.Points[len(output.Points)-1]
	s.x, s.y, s.heading = last.X, last.Y, last.Heading
	s.speed = 0
}

// staticLotMap resolves every routing target to one fixed demo lot.
type staticLotMap struct{}

func (staticLotMap) ParkingBoundary(*planning.RoutingResponse) (planning.ParkingBoundary, error) {
	return planning.ParkingBoundary{XMin: -20, XMax: 20, YMin: -10, YMax: 10}, nil
}

// creepPlanner is a placeholder optimizer: it rolls the seed state forward at
// a gentle creep and brakes to a stop. The real optimizer plugs in behind the
// same interface.
type creepPlanner struct{}

func (cp *creepPlanner) Init(config.Config) error {
	return nil
}

func (cp *creepPlanner) Plan(start trajectory.Point, _ *planning.Frame) (trajectory.Points, error) {
	const (
		dt       = 0.1
		horizon  = 4.0
		creep    = 1.0
		brakeAt  = 3.0
		brakeDec = 1.0
	)
	n := int(horizon/dt) + 1
	points := make(trajectory.Points, 0, n)
	x, y := start.X, start.Y
	for i := 0; i < n; i++ {
		t := dt * float64(i)
		v := creep
		if t > brakeAt {
			v = creep - brakeDec*(t-brakeAt)
		}
		if v < 0 {
			v = 0
		}
		points = append(points, trajectory.Point{
			PathPoint:    trajectory.PathPoint{X: x, Y: y, Heading: start.Heading},
			RelativeTime: t,
			V:            v,
		})
		x += v * dt * math.Cos(start.Heading)
		y += v * dt * math.Sin(start.Heading)
	}
	return points, nil
}

func (cp *creepPlanner) Stop() {}
