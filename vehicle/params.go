// Package vehicle tracks the ego vehicle: its physical parameters, its fused
// state estimate, and the chassis telemetry feeding that estimate.
package vehicle

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/motiondeck/openspace/utils"
)

// Params holds the physical parameters of the ego vehicle. The steering fields
// describe the steering column, not the road wheels: MaxSteerAngleDeg is the
// full steering wheel travel and SteerRatio the column-to-wheel reduction.
type Params struct {
	LengthM          float64 `json:"length_m"`
	WidthM           float64 `json:"width_m"`
	BackEdgeToCenter float64 `json:"back_edge_to_center_m"`
	WheelbaseM       float64 `json:"wheelbase_m"`
	MaxSteerAngleDeg float64 `json:"max_steer_angle_deg"`
	SteerRatio       float64 `json:"steer_ratio"`
}

// DefaultParams returns parameters for a typical mid-size sedan.
func DefaultParams() Params {
	return Params{
		LengthM:          4.93,
		WidthM:           2.11,
		BackEdgeToCenter: 1.04,
		WheelbaseM:       2.85,
		MaxSteerAngleDeg: 470,
		SteerRatio:       16,
	}
}

// Validate checks that all parameters are usable for geometry and curvature
// conversion.
func (p Params) Validate() error {
	var err error
	if p.LengthM <= 0 {
		err = multierr.Append(err, errors.New("vehicle length must be positive"))
	}
	if p.WidthM <= 0 {
		err = multierr.Append(err, errors.New("vehicle width must be positive"))
	}
	if p.BackEdgeToCenter < 0 || p.BackEdgeToCenter > p.LengthM {
		err = multierr.Append(err, errors.New("back edge to center must be within vehicle length"))
	}
	if p.WheelbaseM <= 0 {
		err = multierr.Append(err, errors.New("wheelbase must be positive"))
	}
	if p.MaxSteerAngleDeg <= 0 {
		err = multierr.Append(err, errors.New("max steer angle must be positive"))
	}
	if p.SteerRatio <= 0 {
		err = multierr.Append(err, errors.New("steer ratio must be positive"))
	}
	return err
}

// SteerToCurvature converts a raw steering command to path curvature. The
// steering wheel angle is reduced through the steering ratio and saturated with
// tanh before being divided by the wheelbase, so extreme commands map to the
// tightest turn the vehicle can execute rather than unbounded curvature.
func (p Params) SteerToCurvature(steer float64) float64 {
	return math.Tanh(steer*utils.DegToRad(p.MaxSteerAngleDeg)/p.SteerRatio) / p.WheelbaseM
}
