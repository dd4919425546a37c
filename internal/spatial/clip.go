package spatial

import (
	"context"

	cgeom "github.com/ctessum/geom"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geos"
	"go.uber.org/zap"

	"github.com/sells-group/iceland-maps/internal/layer"
)

// ClipByCounty clips rivers to each county in turn and concatenates the
// results. Counties are visited in first-seen NAME_1 order and every county
// feature sharing a name is used as one mask. In each output row type holds
// the clipped geometry's length and NAME_1 the county; Length keeps the
// unclipped value. A county that clips nothing is logged and skipped.
func ClipByCounty(ctx context.Context, rivers, counties *layer.Layer) (*layer.Layer, error) {
	if rivers.SRID != counties.SRID {
		return nil, eris.Errorf("spatial: clip %s (srid %d) by %s (srid %d): CRS mismatch",
			rivers.Name, rivers.SRID, counties.Name, counties.SRID)
	}

	log := zap.L().With(zap.String("component", "spatial.clip"))

	riverIdx, err := newIndex(rivers)
	if err != nil {
		return nil, err
	}

	out := &layer.Layer{
		Name:           rivers.Name + "_clipped",
		CRS:            rivers.CRS,
		SRID:           rivers.SRID,
		Fields:         append([]string(nil), rivers.Fields...),
		GeometryColumn: rivers.GeometryColumn,
	}
	out.AddField(layer.FieldCountyName)

	for _, county := range counties.UniqueStrings(layer.FieldCountyName) {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "spatial: clip cancelled")
		}

		rows, err := clipOne(riverIdx, counties.Where(layer.FieldCountyName, county), county, rivers.SRID)
		if err != nil {
			return nil, eris.Wrapf(err, "spatial: clip county %q", county)
		}
		if len(rows) == 0 {
			log.Warn("spatial: empty result",
				zap.String("operation", "clip"),
				zap.String("county", county),
			)
			continue
		}
		log.Debug("county clipped", zap.String("county", county), zap.Int("rows", len(rows)))
		out.Features = append(out.Features, rows...)
	}

	log.Info("clip complete", zap.Int("rows", out.Len()))
	return out, nil
}

// clipOne intersects every river overlapping the mask layer with the union of
// its geometries.
func clipOne(riverIdx *index, mask *layer.Layer, county string, srid int) ([]layer.Feature, error) {
	maskGeom, err := unionOf(mask)
	if err != nil {
		return nil, err
	}
	if maskGeom == nil {
		return nil, nil
	}

	xmin, ymin, xmax, ymax := mask.Bounds()
	box := &cgeom.Bounds{
		Min: cgeom.Point{X: xmin, Y: ymin},
		Max: cgeom.Point{X: xmax, Y: ymax},
	}

	var rows []layer.Feature
	for _, cand := range riverIdx.search(box) {
		if !maskGeom.Intersects(cand.geos) {
			continue
		}
		clipped := cand.geos.Intersection(maskGeom)
		if clipped == nil || clipped.IsEmpty() {
			continue
		}
		g, err := fromGEOS(clipped, srid)
		if err != nil {
			return nil, err
		}

		row := cand.feature.Clone()
		row.Geometry = g
		row.Attributes[layer.FieldType] = clipped.Length()
		row.Attributes[layer.FieldCountyName] = county
		rows = append(rows, row)
	}
	return rows, nil
}

// unionOf merges the geometries of l into one GEOS geometry. Returns nil when
// l has no geometry.
func unionOf(l *layer.Layer) (*geos.Geom, error) {
	var acc *geos.Geom
	for _, f := range l.Features {
		if f.Geometry == nil {
			continue
		}
		g, err := toGEOS(f.Geometry)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = g
			continue
		}
		acc = acc.Union(g)
	}
	return acc, nil
}
