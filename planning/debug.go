package planning

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/motiondeck/openspace/obstacle"
	"github.com/motiondeck/openspace/trajectory"
)

// DebugPayload captures the cycle internals for offline inspection. It is only
// populated when debug recording is enabled.
type DebugPayload struct {
	InitPoint        trajectory.Point
	RawTrajectory    trajectory.Points
	ObstaclePolygons [][]r2.Point
}

// newDebugPayload snapshots the planning inputs and result into a payload.
func newDebugPayload(initPoint trajectory.Point, raw trajectory.Points, obstacles []*obstacle.Obstacle) *DebugPayload {
	payload := &DebugPayload{
		InitPoint:     initPoint,
		RawTrajectory: raw.Copy(),
	}
	for _, obs := range obstacles {
		box := obs.BoundingBoxAt(obs.PointAtTime(0))
		vertices := box.Vertices()
		// close the polygon for rendering
		polygon := append(vertices[:], vertices[0])
		payload.ObstaclePolygons = append(payload.ObstaclePolygons, polygon)
	}
	return payload
}

// RenderChart renders the payload as a planar scatter chart: the planned
// trajectory alongside the obstacle footprints at the prediction snapshot.
func (p *DebugPayload) RenderChart(w io.Writer) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Open Space Trajectory"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "x (meter)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "y (meter)"}),
	)

	trajectoryData := make([]opts.ScatterData, 0, len(p.RawTrajectory))
	for _, point := range p.RawTrajectory {
		trajectoryData = append(trajectoryData, opts.ScatterData{Value: []interface{}{point.X, point.Y}})
	}
	scatter.AddSeries("trajectory", trajectoryData)

	for i, polygon := range p.ObstaclePolygons {
		data := make([]opts.ScatterData, 0, len(polygon))
		for _, vertex := range polygon {
			data = append(data, opts.ScatterData{Value: []interface{}{vertex.X, vertex.Y}})
		}
		scatter.AddSeries(fmt.Sprintf("boundary_%d", i+1), data)
	}

	return errors.Wrap(scatter.Render(w), "cannot render debug chart")
}

// ExportChartFile renders the payload to an HTML file.
func (p *DebugPayload) ExportChartFile(path string) (err error) {
	//nolint:gosec
	f, createErr := os.Create(path)
	if createErr != nil {
		return errors.Wrapf(createErr, "cannot create chart file %q", path)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return p.RenderChart(f)
}
