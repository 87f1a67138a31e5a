package planning

import (
	"github.com/motiondeck/openspace/obstacle"
	"github.com/motiondeck/openspace/vehicle"
)

// MessageHeader is the metadata common to upstream input messages.
type MessageHeader struct {
	TimestampSec float64
	SequenceNum  uint32
}

// RoutingResponse is echoed from the routing service; for open-space planning
// it designates the target parking spot.
type RoutingResponse struct {
	Header        MessageHeader
	ParkingSpotID string
}

// SensorTimestamps carries the raw sensor stamps the prediction input was
// built from, propagated into the output header for latency attribution.
type SensorTimestamps struct {
	LidarTimestamp  uint64
	CameraTimestamp uint64
	RadarTimestamp  uint64
}

// PredictionSet is one snapshot of the perceived and predicted obstacle field.
type PredictionSet struct {
	Header           MessageHeader
	SensorTimestamps SensorTimestamps
	Obstacles        []*obstacle.Obstacle
}

// LocalView aggregates the per-cycle inputs. It is snapshotted once at cycle
// start from publishers that update asynchronously; the cycle never waits for
// fresher data.
type LocalView struct {
	Localization *vehicle.Localization
	Chassis      *vehicle.Chassis
	Routing      *RoutingResponse
	Prediction   *PredictionSet
}

// differentRouting reports whether two routing responses designate different
// routes, judged by header identity as upstream does not re-send identical
// routes.
func differentRouting(first, second *RoutingResponse) bool {
	if first == nil || second == nil {
		return true
	}
	return first.Header.SequenceNum != second.Header.SequenceNum ||
		first.Header.TimestampSec != second.Header.TimestampSec
}
