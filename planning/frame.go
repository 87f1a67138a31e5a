package planning

import (
	"github.com/pkg/errors"

	"github.com/motiondeck/openspace/obstacle"
	"github.com/motiondeck/openspace/trajectory"
	"github.com/motiondeck/openspace/vehicle"
)

// MapProvider resolves routing targets against the parking map. Map data is
// loaded once at startup; a missing map aborts initialization rather than
// failing cycles one at a time.
type MapProvider interface {
	// ParkingBoundary returns the drivable boundary for the routed parking
	// spot, or an error when the routing target cannot be resolved.
	ParkingBoundary(routing *RoutingResponse) (ParkingBoundary, error)
}

// ParkingBoundary is the rectangular region of the lot the optimizer may use.
type ParkingBoundary struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Frame is the context of a single planning cycle. It exclusively owns its
// snapshot of the inputs for the cycle's duration; obstacle and prediction
// data inside it are read-only borrows that do not outlive the cycle.
type Frame struct {
	sequenceNum  uint32
	localView    LocalView
	startPoint   trajectory.Point
	vehicleState vehicle.State
	boundary     ParkingBoundary
	obstacles    []*obstacle.Obstacle
	output       *CycleOutput
}

// newFrame snapshots the cycle inputs into a fresh frame.
func newFrame(
	sequenceNum uint32,
	localView LocalView,
	startPoint trajectory.Point,
	vehicleState vehicle.State,
) *Frame {
	frame := &Frame{
		sequenceNum:  sequenceNum,
		localView:    localView,
		startPoint:   startPoint,
		vehicleState: vehicleState,
	}
	if localView.Prediction != nil {
		frame.obstacles = localView.Prediction.Obstacles
	}
	return frame
}

// initForOpenSpace resolves the routed parking target against the map. It is
// the per-cycle context construction step; failure here degrades the cycle
// with a context-init status.
func (f *Frame) initForOpenSpace(mapProvider MapProvider) error {
	if f.localView.Routing == nil {
		return errors.New("no routing response in local view")
	}
	boundary, err := mapProvider.ParkingBoundary(f.localView.Routing)
	if err != nil {
		return errors.Wrap(err, "cannot resolve parking boundary")
	}
	if boundary.XMax <= boundary.XMin || boundary.YMax <= boundary.YMin {
		return errors.New("degenerate parking boundary")
	}
	f.boundary = boundary
	return nil
}

// SequenceNum returns the frame's cycle sequence number.
func (f *Frame) SequenceNum() uint32 {
	return f.sequenceNum
}

// StartPoint returns the stitched planning start point.
func (f *Frame) StartPoint() trajectory.Point {
	return f.startPoint
}

// VehicleState returns the vehicle state snapshotted at cycle start.
func (f *Frame) VehicleState() vehicle.State {
	return f.vehicleState
}

// Boundary returns the resolved parking boundary.
func (f *Frame) Boundary() ParkingBoundary {
	return f.boundary
}

// Obstacles returns the obstacles snapshotted into this frame.
func (f *Frame) Obstacles() []*obstacle.Obstacle {
	return f.obstacles
}

// Output returns the finalized cycle output archived with the frame, if any.
func (f *Frame) Output() *CycleOutput {
	return f.output
}

// FrameHistory archives retired frames for diagnosis. It holds the most
// recent frames up to a fixed capacity and is only ever touched by the single
// active cycle.
type FrameHistory struct {
	capacity int
	frames   []*Frame
}

// NewFrameHistory returns a history bounded to the given capacity.
func NewFrameHistory(capacity int) *FrameHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &FrameHistory{capacity: capacity}
}

// Add archives a retired frame, evicting the oldest when full.
func (h *FrameHistory) Add(frame *Frame) {
	if frame == nil {
		return
	}
	h.frames = append(h.frames, frame)
	if len(h.frames) > h.capacity {
		h.frames = h.frames[len(h.frames)-h.capacity:]
	}
}

// Latest returns the most recently archived frame, or nil.
func (h *FrameHistory) Latest() *Frame {
	if len(h.frames) == 0 {
		return nil
	}
	return h.frames[len(h.frames)-1]
}

// Len returns how many frames are currently archived.
func (h *FrameHistory) Len() int {
	return len(h.frames)
}

// Clear drops all archived frames.
func (h *FrameHistory) Clear() {
	h.frames = nil
}
