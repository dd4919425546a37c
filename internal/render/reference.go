package render

import (
	"context"
	"image/color"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/sells-group/iceland-maps/internal/layer"
)

// Reference map layout.
const (
	ReferenceTitle    = "Icelands Roads and Municipalities"
	referenceWidthIn  = 10
	referenceHeightIn = 8
)

var referenceMargins = Margins{
	Left:   vg.Inch * 0.4,
	Right:  vg.Inch * 0.7,
	Bottom: vg.Inch * 0.4,
	Top:    vg.Inch * 0.9,
}

// CountyStyle is the fill assigned to one county.
type CountyStyle struct {
	Name  string
	Label string
	Color color.RGBA // opaque palette color; drawn at CountyAlpha
}

// ReferenceMap is a rendered county/road/river map.
type ReferenceMap struct {
	*Context
	Counties []CountyStyle
	Legend   Legend
}

// CountyStyles assigns palette colors to the distinct county names of l in
// ascending lexicographic order, cycling the palette.
func CountyStyles(l *layer.Layer) []CountyStyle {
	names := l.UniqueStrings(layer.FieldCountyName)
	sort.Strings(names)

	out := make([]CountyStyle, len(names))
	for i, n := range names {
		out[i] = CountyStyle{Name: n, Label: DisplayName(n), Color: PaletteColor(i)}
	}
	return out
}

// DrawReferenceMap renders outline, counties, rivers, and roads in the
// target CRS with a legend and graticule. The extent is the outline's
// bounds.
func DrawReferenceMap(ctx context.Context, set *layer.Set) (*ReferenceMap, error) {
	log := zap.L().With(zap.String("component", "render.reference"))

	for _, l := range []*layer.Layer{set.Outline, set.Counties, set.Rivers, set.Roads} {
		if l == nil {
			return nil, eris.New("render: reference map needs outline, counties, rivers and roads")
		}
		if !l.Projected() {
			return nil, eris.Errorf("render: layer %s is not in %s", l.Name, layer.TargetCRS)
		}
	}

	rc := NewContext(referenceWidthIn, referenceHeightIn, layer.TargetCRS)
	xmin, ymin, xmax, ymax := set.Outline.Bounds()
	extent := Extent{XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax}
	if err := rc.SetExtent(extent, referenceMargins); err != nil {
		return nil, err
	}

	rc.DrawPolygons(set.Outline, PolygonStyle{Fill: color.White, Edge: color.Black, Width: vg.Points(1)})

	styles := CountyStyles(set.Counties)
	for _, cs := range styles {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "render: reference map cancelled")
		}
		rc.DrawPolygons(set.Counties.Where(layer.FieldCountyName, cs.Name), PolygonStyle{
			Fill:  WithAlpha(cs.Color, CountyAlpha),
			Edge:  color.Black,
			Width: vg.Points(1),
		})
	}

	rc.DrawLines(set.Rivers, draw.LineStyle{Color: riverColor, Width: vg.Points(0.2)})
	rc.DrawLines(set.Roads, draw.LineStyle{Color: roadColor, Width: vg.Points(0.2)})

	grid := IcelandGraticule()
	if err := rc.DrawGraticule(grid); err != nil {
		return nil, err
	}

	// Re-apply the extent after drawing so nothing widened it.
	if err := rc.SetExtent(extent, referenceMargins); err != nil {
		return nil, err
	}
	rc.MaskOutsideFrame()
	rc.DrawFrame()

	if err := rc.DrawGraticuleLabels(grid); err != nil {
		return nil, err
	}
	rc.DrawTitle(ReferenceTitle, vg.Points(14), vg.Inch*0.3)

	leg := referenceLegend(styles)
	rc.DrawLegend(leg)

	log.Info("reference map drawn",
		zap.Int("counties", len(styles)),
		zap.Int("legend_entries", leg.Len()),
	)
	return &ReferenceMap{Context: rc, Counties: styles, Legend: leg}, nil
}

// referenceLegend lists counties in color order, then rivers, then roads.
// The river entry uses its own legend color.
func referenceLegend(styles []CountyStyle) Legend {
	leg := Legend{
		Title:     "Legend",
		TitleSize: vg.Points(10),
		FontSize:  vg.Points(8),
		Placement: UpperLeft,
	}
	for _, cs := range styles {
		leg.Entries = append(leg.Entries, LegendEntry{
			Label: cs.Label,
			Thumb: Swatch{Fill: WithAlpha(cs.Color, CountyAlpha), Edge: color.Black, Width: vg.Points(1)},
		})
	}
	leg.Entries = append(leg.Entries,
		LegendEntry{Label: "Rivers", Thumb: LineGlyph{draw.LineStyle{Color: riverLegendColor, Width: vg.Points(1)}}},
		LegendEntry{Label: "Roads", Thumb: LineGlyph{draw.LineStyle{Color: roadColor, Width: vg.Points(1)}}},
	)
	return leg
}
