package render

import (
	"image/color"

	"github.com/twpayne/go-geom"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/sells-group/iceland-maps/internal/layer"
)

// PolygonStyle controls polygon fill and outline. A nil Fill or Edge
// skips that pass.
type PolygonStyle struct {
	Fill  color.Color
	Edge  color.Color
	Width vg.Length
}

// DrawPolygons draws every polygonal feature of l with sty.
func (c *Context) DrawPolygons(l *layer.Layer, sty PolygonStyle) {
	for _, f := range l.Features {
		c.DrawPolygon(f.Geometry, sty)
	}
}

// DrawPolygon draws g when it is a polygon, multipolygon, or a collection
// containing them. Other geometry kinds are ignored.
func (c *Context) DrawPolygon(g geom.T, sty PolygonStyle) {
	switch t := g.(type) {
	case *geom.Polygon:
		c.fillAndStroke(c.polygonPath(t), sty)
	case *geom.MultiPolygon:
		var p vg.Path
		for i := 0; i < t.NumPolygons(); i++ {
			p = append(p, c.polygonPath(t.Polygon(i))...)
		}
		c.fillAndStroke(p, sty)
	case *geom.GeometryCollection:
		for _, sub := range t.Geoms() {
			c.DrawPolygon(sub, sty)
		}
	}
}

// DrawLines strokes every linear feature of l with sty.
func (c *Context) DrawLines(l *layer.Layer, sty draw.LineStyle) {
	for _, f := range l.Features {
		c.DrawLine(f.Geometry, sty)
	}
}

// DrawLine strokes g when it is linear. Polygons are stroked along their
// rings; points are ignored.
func (c *Context) DrawLine(g geom.T, sty draw.LineStyle) {
	var lines [][]vg.Point
	switch t := g.(type) {
	case *geom.LineString:
		lines = append(lines, c.points(t.FlatCoords(), t.Stride()))
	case *geom.MultiLineString:
		for i := 0; i < t.NumLineStrings(); i++ {
			ls := t.LineString(i)
			lines = append(lines, c.points(ls.FlatCoords(), ls.Stride()))
		}
	case *geom.Polygon:
		for i := 0; i < t.NumLinearRings(); i++ {
			r := t.LinearRing(i)
			lines = append(lines, c.points(r.FlatCoords(), r.Stride()))
		}
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			c.DrawLine(t.Polygon(i), sty)
		}
		return
	case *geom.GeometryCollection:
		for _, sub := range t.Geoms() {
			c.DrawLine(sub, sty)
		}
		return
	default:
		return
	}
	if len(lines) > 0 {
		c.dc.StrokeLines(sty, lines...)
	}
}

func (c *Context) polygonPath(p *geom.Polygon) vg.Path {
	var path vg.Path
	for i := 0; i < p.NumLinearRings(); i++ {
		r := p.LinearRing(i)
		pts := c.points(r.FlatCoords(), r.Stride())
		if len(pts) < 3 {
			continue
		}
		path.Move(pts[0])
		for _, pt := range pts[1:] {
			path.Line(pt)
		}
		path.Close()
	}
	return path
}

func (c *Context) fillAndStroke(p vg.Path, sty PolygonStyle) {
	if len(p) == 0 {
		return
	}
	if sty.Fill != nil {
		c.dc.SetColor(sty.Fill)
		c.dc.Fill(p)
	}
	if sty.Edge != nil && sty.Width > 0 {
		c.dc.SetLineWidth(sty.Width)
		c.dc.SetLineDash(nil, 0)
		c.dc.SetColor(sty.Edge)
		c.dc.Stroke(p)
	}
}

func (c *Context) points(flat []float64, stride int) []vg.Point {
	if stride < 2 {
		return nil
	}
	pts := make([]vg.Point, 0, len(flat)/stride)
	for i := 0; i+1 < len(flat); i += stride {
		pts = append(pts, c.Project(flat[i], flat[i+1]))
	}
	return pts
}
