package spatial

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/iceland-maps/internal/layer"
)

// Suffixes applied to attribute names present on both sides of a join.
const (
	LeftSuffix  = "left"
	RightSuffix = "right"

	// IndexRight names the column holding the matched right-hand row index.
	IndexRight = "index_right"
)

// Join performs an inner spatial join of left against right on geometric
// intersection. Each output row pairs one left feature with one intersecting
// right feature, keeps the left geometry and index, and carries both sides'
// attributes. Rows follow left order, then right order.
func Join(ctx context.Context, left, right *layer.Layer) (*layer.Layer, error) {
	if left.SRID != right.SRID {
		return nil, eris.Errorf("spatial: join %s (srid %d) with %s (srid %d): CRS mismatch",
			left.Name, left.SRID, right.Name, right.SRID)
	}

	log := zap.L().With(
		zap.String("component", "spatial.join"),
		zap.String("left", left.Name),
		zap.String("right", right.Name),
	)

	rightIdx, err := newIndex(right)
	if err != nil {
		return nil, err
	}

	leftNames, rightNames := joinColumns(left.Fields, right.Fields)

	out := &layer.Layer{
		Name:           left.Name + "_" + right.Name,
		CRS:            left.CRS,
		SRID:           left.SRID,
		GeometryColumn: len(left.Fields),
	}
	out.Fields = append(out.Fields, leftNames...)
	out.Fields = append(out.Fields, IndexRight)
	out.Fields = append(out.Fields, rightNames...)

	for _, lf := range left.Features {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "spatial: join cancelled")
		}
		if lf.Geometry == nil || lf.Geometry.Bounds().IsEmpty() {
			continue
		}
		lg, err := toGEOS(lf.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "spatial: join %s feature %d", left.Name, lf.Index)
		}

		for _, cand := range rightIdx.search(boundsOf(lf.Geometry.Bounds())) {
			if !lg.Intersects(cand.geos) {
				continue
			}
			attrs := make(map[string]any, len(out.Fields))
			for i, name := range left.Fields {
				attrs[leftNames[i]] = lf.Attributes[name]
			}
			attrs[IndexRight] = int64(cand.feature.Index)
			for i, name := range right.Fields {
				attrs[rightNames[i]] = cand.feature.Attributes[name]
			}
			out.Features = append(out.Features, layer.Feature{
				Index:      lf.Index,
				Geometry:   lf.Geometry,
				Attributes: attrs,
			})
		}
	}

	if out.Len() == 0 {
		log.Warn("spatial: empty result", zap.String("operation", "join"))
	}
	log.Info("spatial join complete", zap.Int("rows", out.Len()))
	return out, nil
}

// joinColumns returns output names for the left and right field lists,
// suffixing names that occur on both sides.
func joinColumns(left, right []string) ([]string, []string) {
	inLeft := make(map[string]bool, len(left))
	for _, n := range left {
		inLeft[n] = true
	}
	inRight := make(map[string]bool, len(right))
	for _, n := range right {
		inRight[n] = true
	}

	l := make([]string, len(left))
	for i, n := range left {
		l[i] = n
		if inRight[n] {
			l[i] = n + "_" + LeftSuffix
		}
	}
	r := make([]string, len(right))
	for i, n := range right {
		r[i] = n
		if inLeft[n] {
			r[i] = n + "_" + RightSuffix
		}
	}
	return l, r
}
