package render

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Placement anchors a legend inside the map frame.
type Placement int

const (
	UpperLeft Placement = iota
	LowerCenter
)

// Legend is a titled list of labelled thumbnails on an opaque box.
type Legend struct {
	Title     string
	TitleSize vg.Length
	FontSize  vg.Length
	Placement Placement
	Entries   []LegendEntry
}

// LegendEntry pairs a label with its glyph.
type LegendEntry struct {
	Label string
	Thumb plot.Thumbnailer
}

// Swatch is a filled rectangle thumbnail.
type Swatch struct {
	Fill  color.Color
	Edge  color.Color
	Width vg.Length
}

// Thumbnail implements plot.Thumbnailer.
func (s Swatch) Thumbnail(c *draw.Canvas) {
	pts := rectPoints(c.Rectangle)
	if s.Fill != nil {
		c.FillPolygon(s.Fill, pts)
	}
	if s.Edge != nil && s.Width > 0 {
		c.StrokeLines(draw.LineStyle{Color: s.Edge, Width: s.Width}, append(pts, pts[0]))
	}
}

// LineGlyph is a horizontal line thumbnail.
type LineGlyph struct {
	draw.LineStyle
}

// Thumbnail implements plot.Thumbnailer.
func (l LineGlyph) Thumbnail(c *draw.Canvas) {
	y := c.Center().Y
	c.StrokeLine2(l.LineStyle, c.Min.X, y, c.Max.X, y)
}

const (
	legendPad     = vg.Length(4)
	legendGap     = vg.Length(6)
	legendBorder  = vg.Length(8)
	legendRowPad  = vg.Length(3)
	legendThumbEm = vg.Length(2) // thumbnail width in multiples of the font size
)

// Len returns the number of entries.
func (l Legend) Len() int {
	return len(l.Entries)
}

// Size returns the box width and height.
func (l Legend) Size() (vg.Length, vg.Length) {
	title := textStyle(l.TitleSize)
	entry := textStyle(l.FontSize)

	thumbW := l.FontSize * legendThumbEm
	w := title.Width(l.Title)
	for _, e := range l.Entries {
		if ew := thumbW + legendGap + entry.Width(e.Label); ew > w {
			w = ew
		}
	}

	h := vg.Length(0)
	if l.Title != "" {
		h += title.Height(l.Title) + legendRowPad
	}
	h += vg.Length(len(l.Entries)) * (l.FontSize + legendRowPad)
	return w + 2*legendPad, h + 2*legendPad
}

// DrawLegend draws l inside the frame at its placement.
func (c *Context) DrawLegend(l Legend) {
	w, h := l.Size()
	fr := c.Frame

	var origin vg.Point // top-left corner of the box
	switch l.Placement {
	case LowerCenter:
		origin = vg.Point{X: (fr.Min.X+fr.Max.X)/2 - w/2, Y: fr.Min.Y + legendBorder + h}
	default:
		origin = vg.Point{X: fr.Min.X + legendBorder, Y: fr.Max.Y - legendBorder}
	}

	box := vg.Rectangle{
		Min: vg.Point{X: origin.X, Y: origin.Y - h},
		Max: vg.Point{X: origin.X + w, Y: origin.Y},
	}
	pts := rectPoints(box)
	c.dc.FillPolygon(color.White, pts)
	c.dc.StrokeLines(draw.LineStyle{Color: color.Gray{Y: 0xcc}, Width: vg.Points(0.8)}, append(pts, pts[0]))

	y := origin.Y - legendPad
	if l.Title != "" {
		sty := textStyle(l.TitleSize)
		sty.XAlign = draw.XCenter
		sty.YAlign = draw.YTop
		c.dc.FillText(sty, vg.Point{X: origin.X + w/2, Y: y}, l.Title)
		y -= sty.Height(l.Title) + legendRowPad
	}

	entry := textStyle(l.FontSize)
	entry.YAlign = draw.YCenter
	thumbW := l.FontSize * legendThumbEm
	x := origin.X + legendPad
	for _, e := range l.Entries {
		row := vg.Rectangle{
			Min: vg.Point{X: x, Y: y - l.FontSize},
			Max: vg.Point{X: x + thumbW, Y: y},
		}
		thumb := draw.Canvas{Canvas: c.dc.Canvas, Rectangle: shrink(row, l.FontSize/6)}
		if e.Thumb != nil {
			e.Thumb.Thumbnail(&thumb)
		}
		c.dc.FillText(entry, vg.Point{X: x + thumbW + legendGap, Y: y - l.FontSize/2}, e.Label)
		y -= l.FontSize + legendRowPad
	}
}

func shrink(r vg.Rectangle, by vg.Length) vg.Rectangle {
	return vg.Rectangle{
		Min: vg.Point{X: r.Min.X, Y: r.Min.Y + by},
		Max: vg.Point{X: r.Max.X, Y: r.Max.Y - by},
	}
}
