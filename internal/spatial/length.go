package spatial

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/iceland-maps/internal/layer"
)

// Length returns the planar length of g in its own units. Polygons report
// their perimeter; points report zero.
func Length(g geom.T) (float64, error) {
	gg, err := toGEOS(g)
	if err != nil {
		return 0, err
	}
	return gg.Length(), nil
}

// ComputeLengths stores each feature's planar length, in meters, under the
// Length attribute. The layer must already be in the target CRS: lengths
// reflect the geometry at the time of the call. Features without geometry
// get a nil Length.
func ComputeLengths(l *layer.Layer) error {
	if !l.Projected() {
		return eris.Errorf("spatial: %s is not in %s", l.Name, layer.TargetCRS)
	}

	for i := range l.Features {
		f := &l.Features[i]
		if f.Geometry == nil {
			f.Attributes[layer.FieldLength] = nil
			continue
		}
		length, err := Length(f.Geometry)
		if err != nil {
			return eris.Wrapf(err, "spatial: length of %s feature %d", l.Name, f.Index)
		}
		f.Attributes[layer.FieldLength] = length
	}
	l.AddField(layer.FieldLength)

	zap.L().Debug("spatial: lengths computed",
		zap.String("layer", l.Name),
		zap.Int("features", l.Len()),
	)
	return nil
}
