package trajectory

// Publishable is a finalized trajectory as handed to downstream control: its
// points with relative times measured from the header timestamp. The planning
// orchestrator retains the latest one to stitch continuity into the next cycle
// and replaces it wholesale, never mutating it in place.
type Publishable struct {
	HeaderTimestampSec float64
	Points             Points
}

// NewPublishable builds a publishable trajectory from a header timestamp and a
// copy of the given points.
func NewPublishable(headerTimestampSec float64, points Points) *Publishable {
	return &Publishable{HeaderTimestampSec: headerTimestampSec, Points: points.Copy()}
}

// PrependPoints inserts lead-in points ahead of the trajectory. Callers pass
// the stitched lead-in excluding its final point, which is already the
// trajectory's first point.
func (p *Publishable) PrependPoints(lead Points) {
	joined := make(Points, 0, len(lead)+len(p.Points))
	joined = append(joined, lead...)
	joined = append(joined, p.Points...)
	p.Points = joined
}
