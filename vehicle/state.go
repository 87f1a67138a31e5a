package vehicle

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/motiondeck/openspace/utils"
)

// State is the fused ego vehicle state used by one planning cycle.
type State struct {
	X                  float64
	Y                  float64
	Z                  float64
	Heading            float64
	Kappa              float64
	LinearVelocity     float64
	LinearAcceleration float64
	TimestampSec       float64
}

// Position returns the planar position of the state.
func (s State) Position() r2.Point {
	return r2.Point{X: s.X, Y: s.Y}
}

// Valid returns whether every field of the state is a finite number. A cycle
// observing an invalid state must be rejected before any planning work runs.
func (s State) Valid() bool {
	return utils.AllFinite(s.X, s.Y, s.Z, s.Heading, s.Kappa,
		s.LinearVelocity, s.LinearAcceleration, s.TimestampSec)
}

// Localization is a single localization estimate from the upstream pose
// publisher.
type Localization struct {
	X            float64
	Y            float64
	Z            float64
	Heading      float64
	YawRate      float64
	TimestampSec float64
}

// StateProvider fuses localization and chassis inputs into a State and offers
// short-horizon extrapolation of it. It is owned by the planning orchestrator
// and updated once per cycle, never concurrently.
type StateProvider struct {
	state State
}

// NewStateProvider returns a provider with a zero state; Update must be called
// before the state is meaningful.
func NewStateProvider() *StateProvider {
	return &StateProvider{}
}

// Update fuses the latest localization and chassis snapshots into the retained
// state. Pose comes from localization; speed from the chassis. Curvature is
// recovered from yaw rate over ground speed when the vehicle is moving.
func (sp *StateProvider) Update(loc *Localization, chassis *Chassis) error {
	if loc == nil || chassis == nil {
		return errInsufficientInputs
	}
	speed := chassis.SpeedMps
	kappa := 0.0
	if math.Abs(speed) > 1e-3 {
		kappa = loc.YawRate / speed
	}
	sp.state = State{
		X:                  loc.X,
		Y:                  loc.Y,
		Z:                  loc.Z,
		Heading:            loc.Heading,
		Kappa:              kappa,
		LinearVelocity:     speed,
		LinearAcceleration: chassis.AccelerationMps2,
		TimestampSec:       loc.TimestampSec,
	}
	return nil
}

// State returns the most recently fused state.
func (sp *StateProvider) State() State {
	return sp.state
}

// EstimateFuturePosition extrapolates the vehicle position dt seconds ahead
// under constant speed and heading. Only valid for very short horizons; the
// caller guards the window.
func (sp *StateProvider) EstimateFuturePosition(dt float64) r2.Point {
	ds := sp.state.LinearVelocity * dt
	return r2.Point{
		X: sp.state.X + ds*math.Cos(sp.state.Heading),
		Y: sp.state.Y + ds*math.Sin(sp.state.Heading),
	}
}
