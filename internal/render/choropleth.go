package render

import (
	"context"
	"image/color"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/sells-group/iceland-maps/internal/layer"
)

// Choropleth layout and color scale.
const (
	ChoroplethTitle   = "Icelands Resident population"
	ColorBarLabel     = "Resident Population"
	PopulationMin     = 300
	PopulationMax     = 300000
	choroplethSizeIn  = 9
	colorBarFraction  = 0.05
	colorBarPad       = vg.Inch / 10
	colorBarSteps     = 256
	colorBarLabelSize = vg.Length(9)
)

var choroplethMargins = Margins{
	Left:   vg.Inch * 0.4,
	Right:  vg.Inch * 1.6,
	Bottom: vg.Inch * 0.4,
	Top:    vg.Inch * 0.7,
}

// viridis anchors, low to high.
var viridis = []color.Color{
	color.RGBA{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
	color.RGBA{R: 0x3b, G: 0x52, B: 0x8b, A: 0xff},
	color.RGBA{R: 0x21, G: 0x91, B: 0x8c, A: 0xff},
	color.RGBA{R: 0x5e, G: 0xc9, B: 0x62, A: 0xff},
	color.RGBA{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
}

// PopulationScale maps resident counts onto viridis over a fixed range.
// Values outside the range clamp to its ends.
type PopulationScale struct {
	cmap palette.ColorMap
}

// NewPopulationScale returns the fixed 300..300000 scale.
func NewPopulationScale() (*PopulationScale, error) {
	cmap, err := moreland.NewLuminance(viridis)
	if err != nil {
		return nil, eris.Wrap(err, "render: build viridis color map")
	}
	cmap.SetMin(PopulationMin)
	cmap.SetMax(PopulationMax)
	return &PopulationScale{cmap: cmap}, nil
}

// Color returns the fill for v. NaN has no color.
func (s *PopulationScale) Color(v float64) (color.Color, bool) {
	if math.IsNaN(v) {
		return nil, false
	}
	v = math.Max(s.cmap.Min(), math.Min(s.cmap.Max(), v))
	c, err := s.cmap.At(v)
	if err != nil {
		return nil, false
	}
	return c, true
}

// Choropleth is a rendered population map.
type Choropleth struct {
	*Context
	Scale  *PopulationScale
	Legend Legend
	Filled int
}

// DrawChoropleth renders each polygon of population filled by its
// Population value, outlined in red, with a colorbar to the right. Features
// without a numeric population are outlined only.
func DrawChoropleth(ctx context.Context, population *layer.Layer) (*Choropleth, error) {
	log := zap.L().With(zap.String("component", "render.choropleth"))

	if population == nil || population.Len() == 0 {
		return nil, eris.New("render: population layer is empty")
	}
	if !population.HasField(layer.FieldPopulation) {
		return nil, eris.Errorf("render: layer %s has no %s field", population.Name, layer.FieldPopulation)
	}

	scale, err := NewPopulationScale()
	if err != nil {
		return nil, err
	}

	rc := NewContext(choroplethSizeIn, choroplethSizeIn, population.CRS)
	xmin, ymin, xmax, ymax := population.Bounds()
	if err := rc.SetExtent(Extent{XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax}, choroplethMargins); err != nil {
		return nil, err
	}

	filled := 0
	for _, f := range population.Features {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "render: choropleth cancelled")
		}
		v, ok := f.Float(layer.FieldPopulation)
		if !ok {
			continue
		}
		fill, ok := scale.Color(v)
		if !ok {
			continue
		}
		rc.DrawPolygon(f.Geometry, PolygonStyle{Fill: fill})
		filled++
	}
	rc.DrawPolygons(population, PolygonStyle{Edge: boundaryColor, Width: vg.Points(1)})

	rc.MaskOutsideFrame()
	rc.DrawFrame()
	rc.drawColorBar(scale)
	rc.DrawTitle(ChoroplethTitle, vg.Points(14), vg.Inch*0.15)

	leg := Legend{
		FontSize:  vg.Points(12),
		Placement: LowerCenter,
		Entries: []LegendEntry{{
			Label: "County Boundaries",
			Thumb: Swatch{Edge: boundaryColor, Width: vg.Points(1)},
		}},
	}
	rc.DrawLegend(leg)

	log.Info("choropleth drawn",
		zap.Int("features", population.Len()),
		zap.Int("filled", filled),
	)
	return &Choropleth{Context: rc, Scale: scale, Legend: leg, Filled: filled}, nil
}

// drawColorBar places a vertical bar right of the frame, as tall as the
// frame and a fixed fraction of its width, with ticks and a label on its
// right side.
func (c *Context) drawColorBar(s *PopulationScale) {
	fr := c.Frame
	width := (fr.Max.X - fr.Min.X) * colorBarFraction
	bar := vg.Rectangle{
		Min: vg.Point{X: fr.Max.X + colorBarPad, Y: fr.Min.Y},
		Max: vg.Point{X: fr.Max.X + colorBarPad + width, Y: fr.Max.Y},
	}
	height := bar.Max.Y - bar.Min.Y
	lo, hi := s.cmap.Min(), s.cmap.Max()

	step := height / colorBarSteps
	for i := 0; i < colorBarSteps; i++ {
		v := lo + (hi-lo)*(float64(i)+0.5)/colorBarSteps
		clr, _ := s.Color(v)
		y0 := bar.Min.Y + step*vg.Length(i)
		c.dc.FillPolygon(clr, rectPoints(vg.Rectangle{
			Min: vg.Point{X: bar.Min.X, Y: y0},
			Max: vg.Point{X: bar.Max.X, Y: y0 + step},
		}))
	}
	outline := rectPoints(bar)
	c.dc.StrokeLines(draw.LineStyle{Color: color.Black, Width: vg.Points(0.8)}, append(outline, outline[0]))

	tickSty := draw.LineStyle{Color: color.Black, Width: vg.Points(0.8)}
	label := textStyle(colorBarLabelSize)
	label.XAlign = draw.XLeft
	label.YAlign = draw.YCenter

	widest := vg.Length(0)
	for _, t := range (plot.DefaultTicks{}).Ticks(lo, hi) {
		y := bar.Min.Y + vg.Length((t.Value-lo)/(hi-lo))*height
		size := vg.Points(3.5)
		if t.IsMinor() {
			size = vg.Points(2)
		}
		c.dc.StrokeLine2(tickSty, bar.Max.X, y, bar.Max.X+size, y)
		if t.IsMinor() {
			continue
		}
		c.dc.FillText(label, vg.Point{X: bar.Max.X + vg.Points(5), Y: y}, t.Label)
		if w := label.Width(t.Label); w > widest {
			widest = w
		}
	}

	title := textStyle(colorBarLabelSize + 1)
	title.Rotation = math.Pi / 2
	title.XAlign = draw.XCenter
	title.YAlign = draw.YTop
	c.dc.FillText(title, vg.Point{
		X: bar.Max.X + vg.Points(8) + widest + title.Height(ColorBarLabel),
		Y: (bar.Min.Y + bar.Max.Y) / 2,
	}, ColorBarLabel)
}
