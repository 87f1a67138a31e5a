package trajectory

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/motiondeck/openspace/vehicle"
)

const (
	// speedEpsilon is the velocity magnitude below which a sample carries no
	// direction information.
	speedEpsilon = 1e-2
	// initialGearCheckHorizon is how many direction-carrying samples vote on
	// the initial gear.
	initialGearCheckHorizon = 3
)

// Segment is a maximal run of consecutive trajectory points sharing one gear.
// Arc-length restarts at zero on the segment's first point.
type Segment struct {
	Gear   Gear
	Points Points
}

// Partitioned is the complete gear partition of a raw trajectory. Segments are
// contiguous and their concatenation preserves the raw point order.
type Partitioned struct {
	Segments []Segment
}

// Selected is the single partitioned segment chosen for publication, with
// relative time rebased so the point nearest the vehicle reads zero.
type Selected struct {
	Gear              Gear
	Points            Points
	NearestPointIndex int
}

// initialGear determines the gear of the first segment by majority vote over
// the first direction-carrying samples. Points with |v| <= epsilon are skipped
// entirely; every counted sample therefore votes +1 or -1. The sign of the
// first counted sample breaks near-balanced votes, which only arise when the
// speed oscillates around zero at the trajectory start.
func initialGear(points Points, logger golog.Logger) (Gear, error) {
	directionFlag := 0
	initDirection := 0
	counted := 0
	for j := 0; j < len(points) && counted != initialGearCheckHorizon; j++ {
		switch {
		case points[j].V > speedEpsilon:
			counted++
			directionFlag++
			if initDirection == 0 {
				initDirection++
			}
		case points[j].V < -speedEpsilon:
			counted++
			directionFlag--
			if initDirection == 0 {
				initDirection--
			}
		}
	}
	switch {
	case directionFlag > 1:
		return GearDrive, nil
	case directionFlag < -1:
		return GearReverse, nil
	case initDirection > 0:
		logger.Debug("initial speed oscillates too frequently around zero")
		return GearDrive, nil
	case initDirection < 0:
		logger.Debug("initial speed oscillates too frequently around zero")
		return GearReverse, nil
	default:
		// Only reachable when no sample carries direction at all.
		return GearNeutral, ErrGearIndeterminate
	}
}

// Partition splits a raw trajectory into gear-consistent segments and derives
// the published per-point state: arc-length restarted per segment, speed and
// acceleration signed by the segment gear, and curvature converted from the
// raw steering command through the vehicle's steering geometry.
func Partition(points Points, params vehicle.Params, logger golog.Logger) (*Partitioned, error) {
	if len(points) < initialGearCheckHorizon {
		return nil, errors.Wrapf(ErrTrajectoryTooShort, "%d points, need at least %d", len(points), initialGearCheckHorizon)
	}

	gear, err := initialGear(points, logger)
	if err != nil {
		return nil, err
	}

	partitioned := &Partitioned{Segments: []Segment{{Gear: gear}}}
	current := &partitioned.Segments[0]
	distanceS := 0.0
	for i, raw := range points {
		// a speed crossing against the active gear closes the segment and
		// opens one in the opposite gear
		if raw.V < -speedEpsilon && current.Gear == GearDrive {
			partitioned.Segments = append(partitioned.Segments, Segment{Gear: GearReverse})
			current = &partitioned.Segments[len(partitioned.Segments)-1]
			distanceS = 0.0
		}
		if raw.V > speedEpsilon && current.Gear == GearReverse {
			partitioned.Segments = append(partitioned.Segments, Segment{Gear: GearDrive})
			current = &partitioned.Segments[len(partitioned.Segments)-1]
			distanceS = 0.0
		}

		if i > 0 && len(current.Points) > 0 {
			dx := raw.X - points[i-1].X
			dy := raw.Y - points[i-1].Y
			distanceS += math.Sqrt(dx*dx + dy*dy)
		}
		sign := current.Gear.Sign()
		point := Point{
			PathPoint: PathPoint{
				X:       raw.X,
				Y:       raw.Y,
				Heading: raw.Heading,
				S:       distanceS,
				Kappa:   params.SteerToCurvature(raw.Steer) * sign,
			},
			RelativeTime: raw.RelativeTime,
			V:            raw.V * sign,
			A:            raw.A * sign,
			Steer:        raw.Steer,
		}
		current.Points = append(current.Points, point)
	}
	return partitioned, nil
}

// Select returns the segment containing the point closest to the given vehicle
// position, with relative time rebased so that nearest point reads zero.
func (p *Partitioned) Select(position r2.Point) Selected {
	segmentIndex := 0
	pointIndex := 0
	minDistance := math.MaxFloat64
	for i, segment := range p.Segments {
		for j, point := range segment.Points {
			dx := point.X - position.X
			dy := point.Y - position.Y
			if distance := dx*dx + dy*dy; distance < minDistance {
				minDistance = distance
				segmentIndex = i
				pointIndex = j
			}
		}
	}

	chosen := p.Segments[segmentIndex]
	selected := Selected{
		Gear:              chosen.Gear,
		Points:            chosen.Points.Copy(),
		NearestPointIndex: pointIndex,
	}
	if len(selected.Points) == 0 {
		return selected
	}
	timeShift := selected.Points[pointIndex].RelativeTime
	for i := range selected.Points {
		selected.Points[i].RelativeTime -= timeShift
	}
	return selected
}
