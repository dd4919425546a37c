// Package render draws projected vector layers into static PNG maps.
package render

import (
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DPI is the raster resolution of every saved map.
const DPI = 300

// Extent is a projected bounding box.
type Extent struct {
	XMin, YMin, XMax, YMax float64
}

// Width returns the horizontal span.
func (e Extent) Width() float64 { return e.XMax - e.XMin }

// Height returns the vertical span.
func (e Extent) Height() float64 { return e.YMax - e.YMin }

// Valid reports whether the extent has positive area.
func (e Extent) Valid() bool {
	return e.Width() > 0 && e.Height() > 0 && !math.IsInf(e.Width(), 0) && !math.IsNaN(e.Width())
}

// Margins reserve figure space around the map frame.
type Margins struct {
	Left, Right, Bottom, Top vg.Length
}

// Context is one figure: a raster canvas, the CRS its coordinates are in,
// and the extent mapped onto its frame. Each renderer owns its Context.
type Context struct {
	CRS    string
	Extent Extent
	Frame  vg.Rectangle // map frame in figure coordinates

	img *vgimg.Canvas
	dc  draw.Canvas
}

// NewContext creates a white figure of the given size in inches.
func NewContext(widthIn, heightIn float64, crs string) *Context {
	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	return &Context{
		CRS: crs,
		img: img,
		dc:  draw.New(img),
	}
}

// Figure returns the full drawing canvas.
func (c *Context) Figure() draw.Canvas {
	return c.dc
}

// FrameCanvas returns a canvas bounded by the map frame.
func (c *Context) FrameCanvas() draw.Canvas {
	return draw.Canvas{Canvas: c.dc.Canvas, Rectangle: c.Frame}
}

// SetExtent maps e onto the largest frame with e's aspect ratio that fits
// inside the figure less m, centered in that area.
func (c *Context) SetExtent(e Extent, m Margins) error {
	if !e.Valid() {
		return eris.Errorf("render: invalid extent %+v", e)
	}

	area := vg.Rectangle{
		Min: vg.Point{X: c.dc.Min.X + m.Left, Y: c.dc.Min.Y + m.Bottom},
		Max: vg.Point{X: c.dc.Max.X - m.Right, Y: c.dc.Max.Y - m.Top},
	}
	aw, ah := area.Max.X-area.Min.X, area.Max.Y-area.Min.Y
	if aw <= 0 || ah <= 0 {
		return eris.New("render: margins leave no room for the map")
	}

	scale := math.Min(float64(aw)/e.Width(), float64(ah)/e.Height())
	fw, fh := vg.Length(e.Width()*scale), vg.Length(e.Height()*scale)
	x0 := area.Min.X + (aw-fw)/2
	y0 := area.Min.Y + (ah-fh)/2

	c.Extent = e
	c.Frame = vg.Rectangle{
		Min: vg.Point{X: x0, Y: y0},
		Max: vg.Point{X: x0 + fw, Y: y0 + fh},
	}
	return nil
}

// Project maps a coordinate in the context CRS to figure space.
func (c *Context) Project(x, y float64) vg.Point {
	fw := float64(c.Frame.Max.X - c.Frame.Min.X)
	fh := float64(c.Frame.Max.Y - c.Frame.Min.Y)
	return vg.Point{
		X: c.Frame.Min.X + vg.Length((x-c.Extent.XMin)/c.Extent.Width()*fw),
		Y: c.Frame.Min.Y + vg.Length((y-c.Extent.YMin)/c.Extent.Height()*fh),
	}
}

// MaskOutsideFrame paints the figure background over everything drawn
// outside the frame, which crops data to the extent.
func (c *Context) MaskOutsideFrame() {
	fig, fr := c.dc.Rectangle, c.Frame
	bands := []vg.Rectangle{
		{Min: fig.Min, Max: vg.Point{X: fr.Min.X, Y: fig.Max.Y}},
		{Min: vg.Point{X: fr.Max.X, Y: fig.Min.Y}, Max: fig.Max},
		{Min: vg.Point{X: fr.Min.X, Y: fig.Min.Y}, Max: vg.Point{X: fr.Max.X, Y: fr.Min.Y}},
		{Min: vg.Point{X: fr.Min.X, Y: fr.Max.Y}, Max: vg.Point{X: fr.Max.X, Y: fig.Max.Y}},
	}
	for _, b := range bands {
		c.dc.FillPolygon(color.White, rectPoints(b))
	}
}

// DrawFrame strokes the frame border.
func (c *Context) DrawFrame() {
	pts := rectPoints(c.Frame)
	pts = append(pts, pts[0])
	c.dc.StrokeLines(draw.LineStyle{Color: color.Black, Width: vg.Points(1)}, pts)
}

// DrawTitle writes txt centered above the frame.
func (c *Context) DrawTitle(txt string, size vg.Length, gap vg.Length) {
	sty := textStyle(size)
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YBottom
	pt := vg.Point{X: (c.Frame.Min.X + c.Frame.Max.X) / 2, Y: c.Frame.Max.Y + gap}
	c.dc.FillText(sty, pt, txt)
}

// SavePNG writes the figure to path, overwriting any existing file.
func (c *Context) SavePNG(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "render: create %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	defer func() { _ = f.Close() }()

	if _, err := (vgimg.PngCanvas{Canvas: c.img}).WriteTo(f); err != nil {
		return eris.Wrapf(err, "render: encode %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "render: close %s", path)
	}

	zap.L().Info("map saved", zap.String("path", path), zap.Int("dpi", DPI))
	return nil
}

func rectPoints(r vg.Rectangle) []vg.Point {
	return []vg.Point{
		r.Min,
		{X: r.Min.X, Y: r.Max.Y},
		r.Max,
		{X: r.Max.X, Y: r.Min.Y},
	}
}
