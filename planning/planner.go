package planning

import (
	"github.com/pkg/errors"

	"github.com/motiondeck/openspace/config"
	"github.com/motiondeck/openspace/trajectory"
)

// Planner is the capability interface over the external trajectory optimizer.
// Plan is a blocking call: it returns the raw candidate trajectory for the
// frame or an error, and never publishes anything itself.
type Planner interface {
	Init(cfg config.Config) error
	Plan(startPoint trajectory.Point, frame *Frame) (trajectory.Points, error)
	Stop()
}

// PlannerDispatcher selects the optimizer variant once at startup.
type PlannerDispatcher interface {
	DispatchPlanner() Planner
}

// SinglePlannerDispatcher always dispatches the one planner it was built with.
type SinglePlannerDispatcher struct {
	planner Planner
}

// NewSinglePlannerDispatcher wraps a planner in a dispatcher.
func NewSinglePlannerDispatcher(planner Planner) *SinglePlannerDispatcher {
	return &SinglePlannerDispatcher{planner: planner}
}

// DispatchPlanner returns the wrapped planner.
func (d *SinglePlannerDispatcher) DispatchPlanner() Planner {
	return d.planner
}

var errNoPlanner = errors.New("no planner dispatched for config")
