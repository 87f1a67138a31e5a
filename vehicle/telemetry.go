package vehicle

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"go.einride.tech/can"
)

// ChassisFrameID is the CAN arbitration ID the chassis ECU reports telemetry on.
const ChassisFrameID = 0x2A0

// Chassis telemetry frame layout, little-endian:
//
//	bytes 0-1  speed, int16, 0.01 m/s per bit
//	bytes 2-3  steering command, int16, 1e-4 per bit (column angle fraction)
//	bytes 4-5  acceleration, int16, 0.01 m/s^2 per bit
//	byte  6    gear selector (0 neutral, 1 drive, 2 reverse)
//	byte  7    bit 0: driver estop engaged
const (
	speedFactor = 0.01
	steerFactor = 1e-4
	accelFactor = 0.01
)

// Chassis is one decoded chassis telemetry sample.
type Chassis struct {
	SpeedMps         float64
	SteeringAngle    float64
	AccelerationMps2 float64
	GearReverse      bool
	DriverEStop      bool
	TimestampSec     float64
}

// ChassisFromCANFrame decodes a chassis telemetry CAN frame. The timestamp is
// supplied by the receiver since classic CAN frames carry none.
func ChassisFromCANFrame(frame can.Frame, timestampSec float64) (*Chassis, error) {
	if frame.ID != ChassisFrameID {
		return nil, errors.Errorf("unexpected CAN ID 0x%X for chassis telemetry", frame.ID)
	}
	if frame.Length < 8 {
		return nil, errors.Errorf("chassis frame too short: %d bytes", frame.Length)
	}
	data := frame.Data[:]
	return &Chassis{
		SpeedMps:         float64(int16(binary.LittleEndian.Uint16(data[0:2]))) * speedFactor,
		SteeringAngle:    float64(int16(binary.LittleEndian.Uint16(data[2:4]))) * steerFactor,
		AccelerationMps2: float64(int16(binary.LittleEndian.Uint16(data[4:6]))) * accelFactor,
		GearReverse:      data[6] == 2,
		DriverEStop:      data[7]&0x1 != 0,
		TimestampSec:     timestampSec,
	}, nil
}

// ToCANFrame encodes the chassis sample back into its frame layout. Used by
// simulation and tests; the real frame originates on the vehicle bus.
func (c *Chassis) ToCANFrame() can.Frame {
	frame := can.Frame{ID: ChassisFrameID, Length: 8}
	data := frame.Data[:]
	binary.LittleEndian.PutUint16(data[0:2], uint16(int16(math.Round(c.SpeedMps/speedFactor))))
	binary.LittleEndian.PutUint16(data[2:4], uint16(int16(math.Round(c.SteeringAngle/steerFactor))))
	binary.LittleEndian.PutUint16(data[4:6], uint16(int16(math.Round(c.AccelerationMps2/accelFactor))))
	switch {
	case c.GearReverse:
		data[6] = 2
	case c.SpeedMps != 0:
		data[6] = 1
	default:
		data[6] = 0
	}
	if c.DriverEStop {
		data[7] = 0x1
	}
	return frame
}
