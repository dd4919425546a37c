// Package spatial measures waterway lengths and relates them to counties
// through a spatial join and a per-county clip.
package spatial

import (
	"sort"

	cgeom "github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geos"

	"github.com/sells-group/iceland-maps/internal/layer"
)

// toGEOS converts a go-geom geometry to a GEOS geometry through WKB.
func toGEOS(g geom.T) (*geos.Geom, error) {
	data, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: encode WKB")
	}
	gg, err := geos.NewGeomFromWKB(data)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: decode WKB into GEOS")
	}
	return gg, nil
}

// fromGEOS converts a GEOS geometry back to go-geom, tagging it with srid.
func fromGEOS(g *geos.Geom, srid int) (geom.T, error) {
	t, err := wkb.Unmarshal(g.ToWKB())
	if err != nil {
		return nil, eris.Wrap(err, "spatial: decode GEOS WKB")
	}
	return withSRID(t, srid), nil
}

func withSRID(t geom.T, srid int) geom.T {
	switch g := t.(type) {
	case *geom.Point:
		return g.SetSRID(srid)
	case *geom.LineString:
		return g.SetSRID(srid)
	case *geom.MultiLineString:
		return g.SetSRID(srid)
	case *geom.Polygon:
		return g.SetSRID(srid)
	case *geom.MultiPolygon:
		return g.SetSRID(srid)
	case *geom.MultiPoint:
		return g.SetSRID(srid)
	case *geom.GeometryCollection:
		return g.SetSRID(srid)
	default:
		return t
	}
}

// indexed is a layer feature with its GEOS geometry, kept in an R-tree.
// The embedded bounds make it a cgeom.Geom, which the tree stores.
type indexed struct {
	*cgeom.Bounds
	pos     int // position in the source layer
	feature layer.Feature
	geos    *geos.Geom
}

// index holds GEOS conversions of a layer's features and an R-tree over
// their bounding boxes. Features without geometry are left out.
type index struct {
	items []*indexed
	tree  *rtree.Rtree
}

func newIndex(l *layer.Layer) (*index, error) {
	idx := &index{tree: rtree.NewTree(25, 50)}
	for pos, f := range l.Features {
		if f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bounds()
		if b.IsEmpty() {
			continue
		}
		gg, err := toGEOS(f.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "spatial: index %s feature %d", l.Name, f.Index)
		}
		item := &indexed{
			Bounds:  boundsOf(b),
			pos:     pos,
			feature: f,
			geos:    gg,
		}
		idx.items = append(idx.items, item)
		idx.tree.Insert(item)
	}
	return idx, nil
}

// search returns the items whose bounding boxes overlap b, in source order.
func (idx *index) search(b *cgeom.Bounds) []*indexed {
	hits := idx.tree.SearchIntersect(b)
	out := make([]*indexed, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*indexed))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pos < out[j].pos })
	return out
}

func boundsOf(b *geom.Bounds) *cgeom.Bounds {
	return &cgeom.Bounds{
		Min: cgeom.Point{X: b.Min(0), Y: b.Min(1)},
		Max: cgeom.Point{X: b.Max(0), Y: b.Max(1)},
	}
}
