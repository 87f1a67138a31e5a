package planning

import (
	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/motiondeck/openspace/config"
	"github.com/motiondeck/openspace/obstacle"
	"github.com/motiondeck/openspace/trajectory"
	"github.com/motiondeck/openspace/vehicle"
)

// estimateFutureWindowSec bounds how stale a vehicle state may be and still be
// extrapolated forward; beyond this the extrapolation is not trustworthy.
const estimateFutureWindowSec = 0.020

// OpenSpacePlanning orchestrates one open-space planning cycle per
// invocation. It exclusively owns all state retained between cycles — the last
// publishable trajectory, the retained frame, the vehicle state provider — and
// is not safe for concurrent use: cycles are strictly sequential.
type OpenSpacePlanning struct {
	cfg           config.Config
	logger        golog.Logger
	clk           clock.Clock
	stateProvider *vehicle.StateProvider
	stitcher      *trajectory.Stitcher
	planner       Planner
	mapProvider   MapProvider
	history       *FrameHistory

	sequenceNum     uint32
	lastRouting     *RoutingResponse
	lastPublishable *trajectory.Publishable
	frame           *Frame
	environment     *obstacle.Environment
}

// Option configures an OpenSpacePlanning.
type Option func(*OpenSpacePlanning)

// WithClock substitutes the wall clock, letting tests control cycle
// timestamps.
func WithClock(clk clock.Clock) Option {
	return func(p *OpenSpacePlanning) {
		p.clk = clk
	}
}

// WithFrameHistory substitutes the frame archive.
func WithFrameHistory(history *FrameHistory) Option {
	return func(p *OpenSpacePlanning) {
		p.history = history
	}
}

// NewOpenSpacePlanning validates the configuration and its collaborators and
// initializes the dispatched planner. Missing map data is fatal here; once
// construction succeeds, no cycle failure escapes RunOnce.
func NewOpenSpacePlanning(
	cfg config.Config,
	dispatcher PlannerDispatcher,
	mapProvider MapProvider,
	logger golog.Logger,
	opts ...Option,
) (*OpenSpacePlanning, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "planning config error")
	}
	if mapProvider == nil {
		return nil, errors.New("failed to load map")
	}
	if dispatcher == nil {
		return nil, errNoPlanner
	}
	planner := dispatcher.DispatchPlanner()
	if planner == nil {
		return nil, errNoPlanner
	}
	if err := planner.Init(cfg); err != nil {
		return nil, errors.Wrap(err, "planner init failed")
	}

	p := &OpenSpacePlanning{
		cfg:           cfg,
		logger:        logger,
		clk:           clock.New(),
		stateProvider: vehicle.NewStateProvider(),
		stitcher:      trajectory.NewStitcher(logger),
		planner:       planner,
		mapProvider:   mapProvider,
		history:       NewFrameHistory(defaultFrameHistoryCapacity),
	}
	for _, opt := range opts {
		opt(p)
	}
	logger.Info("open space planner init done")
	return p, nil
}

// Close stops the planner and drops retained state.
func (p *OpenSpacePlanning) Close() {
	p.planner.Stop()
	p.frame = nil
	p.lastPublishable = nil
	p.history.Clear()
}

// LastPublishable returns the retained publishable trajectory, or nil before
// the first successful cycle.
func (p *OpenSpacePlanning) LastPublishable() *trajectory.Publishable {
	return p.lastPublishable
}

// Environment returns the predicted obstacle environment built by the latest
// cycle, for diagnostics.
func (p *OpenSpacePlanning) Environment() *obstacle.Environment {
	return p.environment
}

// RunOnce executes one planning cycle over the given input snapshot. It always
// returns a valid CycleOutput; any stage failure degrades the output instead
// of propagating.
func (p *OpenSpacePlanning) RunOnce(view LocalView) *CycleOutput {
	startTimestamp := p.now()
	output := &CycleOutput{}
	output.Header.TimestampSec = startTimestamp
	if view.Routing != nil {
		output.RoutingHeader = view.Routing.Header
	}
	if view.Prediction != nil {
		output.Header.SensorTimestamps = view.Prediction.SensorTimestamps
	}

	if err := p.stateProvider.Update(view.Localization, view.Chassis); err != nil {
		p.failCycle(output, startTimestamp, newCycleError(StatusStateInvalid, err))
		return output
	}
	vehicleState := p.stateProvider.State()

	// This extrapolation is only valid when the state stamp trails the cycle
	// start by a small amount; a larger gap means the estimate itself is
	// stale and extrapolating it would compound the error.
	if elapsed := startTimestamp - vehicleState.TimestampSec; p.cfg.EstimateFutureState &&
		elapsed > 0 && elapsed < estimateFutureWindowSec {
		future := p.stateProvider.EstimateFuturePosition(elapsed)
		vehicleState.X = future.X
		vehicleState.Y = future.Y
		vehicleState.TimestampSec = startTimestamp
	}

	if !vehicleState.Valid() {
		p.failCycle(output, startTimestamp, newCycleError(StatusStateInvalid,
			errors.New("vehicle state has non-finite fields")))
		return output
	}

	if differentRouting(p.lastRouting, view.Routing) {
		p.lastRouting = view.Routing
		p.logger.Debug("routing changed, parking target refreshed")
	}

	stitching := p.stitcher.ComputeStitchingTrajectory(
		vehicleState, startTimestamp, p.cfg.CyclePeriodSec, p.lastPublishable)

	sequenceNum := p.sequenceNum
	p.sequenceNum++
	p.frame = newFrame(sequenceNum, view, stitching[len(stitching)-1], vehicleState)
	initErr := p.frame.initForOpenSpace(p.mapProvider)
	output.Latency.InitFrameTimeMs = (p.now() - startTimestamp) * 1000
	if initErr != nil {
		p.failCycle(output, startTimestamp, newCycleError(StatusContextInitFailure, initErr))
		p.archiveFrame(output)
		return output
	}

	if cycleErr := p.plan(startTimestamp, stitching, output); cycleErr != nil {
		output.Latency.TotalTimeMs = (p.now() - startTimestamp) * 1000
		p.failCycle(output, startTimestamp, cycleErr)
		p.archiveFrame(output)
		return output
	}

	// a seed collapsed to a single point means continuity was abandoned
	output.IsReplan = len(stitching) == 1
	output.setStatus(StatusOK, "")
	output.Latency.TotalTimeMs = (p.now() - startTimestamp) * 1000
	p.fillOutput(startTimestamp, output)
	p.archiveFrame(output)
	return output
}

// plan runs the optimizer and the downstream verification stages, mutating the
// output as stages succeed. On error the caller degrades the whole cycle.
func (p *OpenSpacePlanning) plan(
	currentTimestamp float64,
	stitching trajectory.Points,
	output *CycleOutput,
) *cycleError {
	startPoint := stitching[len(stitching)-1]

	raw, err := p.planner.Plan(startPoint, p.frame)
	if err != nil {
		return newCycleError(StatusPlannerFailure, err)
	}

	if p.cfg.EnableDebugRecording {
		output.Debug = newDebugPayload(startPoint, raw, p.frame.Obstacles())
	}

	// rebase the optimizer's relative times onto the cycle origin: the seed's
	// last point already sits one period ahead of it
	finalized := raw.Copy()
	for i := range finalized {
		finalized[i].RelativeTime += startPoint.RelativeTime
	}
	publishable := trajectory.NewPublishable(currentTimestamp, finalized)
	if p.cfg.StitchLastTrajectory && len(stitching) > 1 {
		publishable.PrependPoints(stitching[:len(stitching)-1])
	}
	p.lastPublishable = publishable

	partitioned, err := trajectory.Partition(publishable.Points, p.cfg.Vehicle, p.logger)
	if err != nil {
		return newCycleError(StatusTrajectoryTooShort, err)
	}
	selected := partitioned.Select(p.frame.VehicleState().Position())
	output.Points = selected.Points
	output.Gear = selected.Gear

	environment, err := obstacle.BuildEnvironment(
		p.frame.Obstacles(), p.cfg.PredictionHorizonSec, p.cfg.PredictionStepSec)
	if err != nil {
		return newCycleError(StatusContextInitFailure, err)
	}
	p.environment = environment

	if !isCollisionFreeTrajectory(selected.Points, environment, p.cfg.Vehicle) {
		return newCycleError(StatusCollisionDetected, errCollisionCheckFailed)
	}

	if p.cfg.ExportChart && output.Debug != nil {
		// chart export is diagnostic only; it must not degrade the cycle
		if exportErr := output.Debug.ExportChartFile(p.cfg.ChartOutputPath); exportErr != nil {
			p.logger.Errorw("cannot export debug chart", "error", exportErr)
		}
	}
	return nil
}

// failCycle converts a stage failure into the configured degraded output:
// an estop message when failing safe, otherwise a not-ready decision. Degraded
// outputs never carry trajectory points.
func (p *OpenSpacePlanning) failCycle(output *CycleOutput, startTimestamp float64, cycleErr *cycleError) {
	p.logger.Errorw("planning cycle failed", "status", cycleErr.code.String(), "error", cycleErr.err)
	output.Points = nil
	output.Gear = trajectory.GearNeutral
	output.setStatus(cycleErr.code, cycleErr.err.Error())
	// an invalid state rejects the cycle before any planning ran; only
	// failures past that point produce a safety decision
	if cycleErr.code != StatusStateInvalid {
		if p.cfg.PublishEstopOnFailure {
			output.EStop = &EStop{IsEStop: true, Reason: cycleErr.err.Error()}
		} else {
			output.NotReady = &NotReady{Reason: cycleErr.Error()}
		}
	}
	p.fillOutput(startTimestamp, output)
}

// fillOutput applies the final publication bookkeeping: the fallback stop
// trajectory when a healthy cycle ended up with no points, and the relative
// time correction for the time spent planning.
func (p *OpenSpacePlanning) fillOutput(timestampSec float64, output *CycleOutput) {
	output.Header.TimestampSec = timestampSec
	if p.cfg.UseFallbackTrajectory && output.Header.Status.Code == StatusOK && len(output.Points) == 0 {
		p.logger.Info("substituting fallback stop trajectory")
		output.Points = fallbackStopTrajectory(p.frame.VehicleState())
	}
	dt := timestampSec - p.now()
	for i := range output.Points {
		output.Points[i].RelativeTime -= dt
	}
}

// archiveFrame stores the finalized output on the retired frame and hands it
// to the diagnostic history.
func (p *OpenSpacePlanning) archiveFrame(output *CycleOutput) {
	p.frame.output = output
	p.history.Add(p.frame)
}

func (p *OpenSpacePlanning) now() float64 {
	return float64(p.clk.Now().UnixNano()) / 1e9
}

const defaultFrameHistoryCapacity = 10
