package planning

import "github.com/motiondeck/openspace/trajectory"

// StatusInfo is the propagated status of the cycle, embedded in the output
// header.
type StatusInfo struct {
	Code    ErrorCode
	Message string
}

// OutputHeader stamps the cycle output and carries its status plus the
// upstream sensor timestamps.
type OutputHeader struct {
	TimestampSec     float64
	Status           StatusInfo
	SensorTimestamps SensorTimestamps
}

// EStop asks downstream control to hold an emergency stop, with a
// human-readable reason.
type EStop struct {
	IsEStop bool
	Reason  string
}

// NotReady is the benign degraded decision: planning has no trajectory but the
// situation does not warrant an emergency stop.
type NotReady struct {
	Reason string
}

// LatencyStats records where cycle time went.
type LatencyStats struct {
	InitFrameTimeMs float64
	TotalTimeMs     float64
}

// CycleOutput is the externally visible result of one planning cycle. Exactly
// one of Points, NotReady, or EStop describes the decision; a degraded cycle
// never publishes points.
type CycleOutput struct {
	Header        OutputHeader
	RoutingHeader MessageHeader
	Points        trajectory.Points
	Gear          trajectory.Gear
	NotReady      *NotReady
	EStop         *EStop
	IsReplan      bool
	Latency       LatencyStats
	Debug         *DebugPayload
}

// setStatus records the cycle status in the output header.
func (o *CycleOutput) setStatus(code ErrorCode, message string) {
	o.Header.Status = StatusInfo{Code: code, Message: message}
}
