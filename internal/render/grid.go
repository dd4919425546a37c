package render

import (
	"fmt"
	"math"

	"github.com/ctessum/geom/proj"
	"github.com/rotisserie/eris"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/sells-group/iceland-maps/internal/layer"
)

const geographicProj4 = "+proj=longlat +datum=WGS84 +no_defs"

// Graticule places meridians and parallels, in degrees, on a projected map.
// Labels go on the top and right frame edges only.
type Graticule struct {
	Lons, Lats []float64
	Step       float64 // sampling step in degrees along each line
	LabelSize  vg.Length
}

// IcelandGraticule is the grid of the reference map.
func IcelandGraticule() Graticule {
	return Graticule{
		Lons:      []float64{-26, -24, -22, -20, -18, -16, -14, -12},
		Lats:      []float64{66, 65, 64, 63, 62, 61},
		Step:      0.05,
		LabelSize: vg.Points(8),
	}
}

type gridLine struct {
	label string
	xy    [][2]float64 // projected samples
}

// lines projects each meridian and parallel into the target CRS.
func (g Graticule) lines() (meridians, parallels []gridLine, err error) {
	src, err := proj.Parse(geographicProj4)
	if err != nil {
		return nil, nil, eris.Wrap(err, "render: parse geographic reference")
	}
	dst, err := layer.TargetSR()
	if err != nil {
		return nil, nil, err
	}
	trans, err := src.NewTransform(dst)
	if err != nil {
		return nil, nil, eris.Wrap(err, "render: build graticule transform")
	}

	latMin, latMax := minMax(g.Lats)
	lonMin, lonMax := minMax(g.Lons)

	sample := func(lon0, lat0, lon1, lat1 float64) ([][2]float64, error) {
		n := int(math.Ceil(math.Max(math.Abs(lon1-lon0), math.Abs(lat1-lat0))/g.Step)) + 1
		out := make([][2]float64, 0, n)
		for i := 0; i < n; i++ {
			f := float64(i) / float64(n-1)
			x, y, err := trans(lon0+(lon1-lon0)*f, lat0+(lat1-lat0)*f)
			if err != nil {
				return nil, eris.Wrap(err, "render: project graticule")
			}
			out = append(out, [2]float64{x, y})
		}
		return out, nil
	}

	// Lines extend past the labelled range so they reach the frame edges.
	for _, lon := range g.Lons {
		xy, err := sample(lon, latMin-2, lon, latMax+2)
		if err != nil {
			return nil, nil, err
		}
		meridians = append(meridians, gridLine{label: lonLabel(lon), xy: xy})
	}
	for _, lat := range g.Lats {
		xy, err := sample(lonMin-4, lat, lonMax+4, lat)
		if err != nil {
			return nil, nil, err
		}
		parallels = append(parallels, gridLine{label: latLabel(lat), xy: xy})
	}
	return meridians, parallels, nil
}

// DrawGraticule strokes the grid lines inside the frame.
func (c *Context) DrawGraticule(g Graticule) error {
	meridians, parallels, err := g.lines()
	if err != nil {
		return err
	}
	sty := draw.LineStyle{Color: gridColor, Width: vg.Points(0.8)}
	for _, gl := range append(meridians, parallels...) {
		pts := make([]vg.Point, len(gl.xy))
		for i, p := range gl.xy {
			pts[i] = c.Project(p[0], p[1])
		}
		c.dc.StrokeLines(sty, pts)
	}
	return nil
}

// DrawGraticuleLabels writes meridian labels above the frame and parallel
// labels to its right, where each line crosses that edge.
func (c *Context) DrawGraticuleLabels(g Graticule) error {
	meridians, parallels, err := g.lines()
	if err != nil {
		return err
	}
	e := c.Extent
	gap := g.LabelSize / 2

	top := textStyle(g.LabelSize)
	top.XAlign = draw.XCenter
	top.YAlign = draw.YBottom
	for _, m := range meridians {
		x, ok := crossing(m.xy, 1, e.YMax)
		if !ok || x < e.XMin || x > e.XMax {
			continue
		}
		pt := c.Project(x, e.YMax)
		c.dc.FillText(top, vg.Point{X: pt.X, Y: pt.Y + gap}, m.label)
	}

	right := textStyle(g.LabelSize)
	right.XAlign = draw.XLeft
	right.YAlign = draw.YCenter
	for _, p := range parallels {
		y, ok := crossing(p.xy, 0, e.XMax)
		if !ok || y < e.YMin || y > e.YMax {
			continue
		}
		pt := c.Project(e.XMax, y)
		c.dc.FillText(right, vg.Point{X: pt.X + gap, Y: pt.Y}, p.label)
	}
	return nil
}

// crossing finds where the polyline crosses value on axis (0 for x, 1 for
// y) and returns the interpolated other coordinate.
func crossing(xy [][2]float64, axis int, value float64) (float64, bool) {
	other := 1 - axis
	for i := 1; i < len(xy); i++ {
		a, b := xy[i-1], xy[i]
		if (a[axis]-value)*(b[axis]-value) > 0 || a[axis] == b[axis] {
			continue
		}
		f := (value - a[axis]) / (b[axis] - a[axis])
		return a[other] + (b[other]-a[other])*f, true
	}
	return 0, false
}

func lonLabel(lon float64) string {
	switch {
	case lon < 0:
		return fmt.Sprintf("%g°W", -lon)
	case lon > 0:
		return fmt.Sprintf("%g°E", lon)
	default:
		return "0°"
	}
}

func latLabel(lat float64) string {
	switch {
	case lat < 0:
		return fmt.Sprintf("%g°S", -lat)
	case lat > 0:
		return fmt.Sprintf("%g°N", lat)
	default:
		return "0°"
	}
}

func minMax(vals []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
