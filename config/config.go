// Package config describes and loads the planning runtime configuration.
package config

import (
	"encoding/json"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/motiondeck/openspace/vehicle"
)

// Config is the full planning configuration. All durations are in seconds.
type Config struct {
	// CyclePeriodSec is the fixed planning period; it sets the stitching
	// horizon and the time rebase of each cycle.
	CyclePeriodSec float64 `json:"planning_cycle_period_sec"`

	// PredictionHorizonSec and PredictionStepSec size the predicted obstacle
	// environment.
	PredictionHorizonSec float64 `json:"prediction_horizon_sec"`
	PredictionStepSec    float64 `json:"prediction_step_sec"`

	// EstimateFutureState extrapolates the vehicle pose by the elapsed time
	// since the localization stamp before validation.
	EstimateFutureState bool `json:"estimate_future_state"`

	// PublishEstopOnFailure chooses an estop message over a not-ready decision
	// for degraded outputs.
	PublishEstopOnFailure bool `json:"publish_estop_on_failure"`

	// UseFallbackTrajectory substitutes a safe stop trajectory when a cycle
	// would otherwise publish no points.
	UseFallbackTrajectory bool `json:"use_fallback_trajectory"`

	// EnableDebugRecording populates the debug payload on the cycle output;
	// ExportChart additionally renders it to ChartOutputPath.
	EnableDebugRecording bool   `json:"enable_debug_recording"`
	ExportChart          bool   `json:"export_chart"`
	ChartOutputPath      string `json:"chart_output_path"`

	// StitchLastTrajectory prepends the stitched lead-in points to the
	// finalized trajectory for downstream continuity.
	StitchLastTrajectory bool `json:"stitch_last_trajectory"`

	// MapPath locates the parking map; missing map data is a startup-fatal
	// error, not a per-cycle one.
	MapPath string `json:"map_path"`

	Vehicle vehicle.Params `json:"vehicle"`
}

// Default returns a runnable configuration with a 100ms cycle and an 8s
// prediction horizon.
func Default() Config {
	return Config{
		CyclePeriodSec:       0.1,
		PredictionHorizonSec: 8.0,
		PredictionStepSec:    0.5,
		StitchLastTrajectory: true,
		Vehicle:              vehicle.DefaultParams(),
	}
}

// Validate checks the configuration for values planning cannot run with.
func (c *Config) Validate() error {
	var err error
	if c.CyclePeriodSec <= 0 {
		err = multierr.Append(err, errors.New("planning cycle period must be positive"))
	}
	if c.PredictionHorizonSec <= 0 {
		err = multierr.Append(err, errors.New("prediction horizon must be positive"))
	}
	if c.PredictionStepSec <= 0 {
		err = multierr.Append(err, errors.New("prediction step must be positive"))
	}
	if c.PredictionStepSec > 0 && c.PredictionStepSec > c.PredictionHorizonSec {
		err = multierr.Append(err, errors.New("prediction step must not exceed the horizon"))
	}
	if c.ExportChart && !c.EnableDebugRecording {
		err = multierr.Append(err, errors.New("export_chart requires enable_debug_recording"))
	}
	if c.ExportChart && c.ChartOutputPath == "" {
		err = multierr.Append(err, errors.New("export_chart requires chart_output_path"))
	}
	if vehicleErr := c.Vehicle.Validate(); vehicleErr != nil {
		err = multierr.Append(err, errors.Wrap(vehicleErr, "vehicle"))
	}
	return err
}

// Read loads, env-substitutes, and validates a configuration file.
func Read(path string) (Config, error) {
	buf, err := envsubst.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "cannot read config file %q", path)
	}
	cfg := Default()
	if err := json.Unmarshal(buf, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "cannot parse config file %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config file %q", path)
	}
	return cfg, nil
}
