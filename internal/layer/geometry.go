package layer

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// coordFunc maps a source coordinate into the layer's output CRS.
type coordFunc func(x, y float64) (float64, float64, error)

func identity(x, y float64) (float64, float64, error) { return x, y, nil }

// shapeToGeom converts a go-shp shape to a go-geom geometry, passing every
// vertex through fn. Returns nil, nil for null or unsupported shapes.
func shapeToGeom(shape shp.Shape, fn coordFunc, srid int) (geom.T, error) {
	if shape == nil {
		return nil, nil
	}

	switch s := shape.(type) {
	case *shp.Point:
		return pointGeom(s.X, s.Y, fn, srid)
	case *shp.PointZ:
		return pointGeom(s.X, s.Y, fn, srid)
	case *shp.PointM:
		return pointGeom(s.X, s.Y, fn, srid)
	case *shp.MultiPoint:
		flat, err := flatCoords(s.Points, fn)
		if err != nil {
			return nil, err
		}
		return geom.NewMultiPointFlat(geom.XY, flat).SetSRID(srid), nil
	case *shp.PolyLine:
		return lineGeom(splitParts(s.NumParts, s.Parts, s.Points), fn, srid)
	case *shp.PolyLineZ:
		return lineGeom(splitParts(s.NumParts, s.Parts, s.Points), fn, srid)
	case *shp.PolyLineM:
		return lineGeom(splitParts(s.NumParts, s.Parts, s.Points), fn, srid)
	case *shp.Polygon:
		return polygonGeom(splitParts(s.NumParts, s.Parts, s.Points), fn, srid)
	case *shp.PolygonZ:
		return polygonGeom(splitParts(s.NumParts, s.Parts, s.Points), fn, srid)
	case *shp.PolygonM:
		return polygonGeom(splitParts(s.NumParts, s.Parts, s.Points), fn, srid)
	default:
		return nil, nil
	}
}

func pointGeom(x, y float64, fn coordFunc, srid int) (geom.T, error) {
	px, py, err := fn(x, y)
	if err != nil {
		return nil, err
	}
	return geom.NewPointFlat(geom.XY, []float64{px, py}).SetSRID(srid), nil
}

// lineGeom builds a LineString for single-part records and a
// MultiLineString otherwise.
func lineGeom(parts [][]shp.Point, fn coordFunc, srid int) (geom.T, error) {
	var flat []float64
	var ends []int
	for i, part := range parts {
		if len(part) < 2 {
			zap.L().Debug("layer: skipping degenerate linestring part", zap.Int("part", i))
			continue
		}
		coords, err := flatCoords(part, fn)
		if err != nil {
			return nil, err
		}
		flat = append(flat, coords...)
		ends = append(ends, len(flat))
	}

	switch len(ends) {
	case 0:
		return nil, nil
	case 1:
		return geom.NewLineStringFlat(geom.XY, flat).SetSRID(srid), nil
	default:
		return geom.NewMultiLineStringFlat(geom.XY, flat, ends).SetSRID(srid), nil
	}
}

// polygonGeom groups shapefile rings into polygons. Clockwise rings start a
// new polygon; counter-clockwise rings are holes of the preceding polygon.
func polygonGeom(rings [][]shp.Point, fn coordFunc, srid int) (geom.T, error) {
	var polys [][][]float64
	for i, ring := range rings {
		if len(ring) < 4 {
			zap.L().Debug("layer: skipping degenerate polygon ring", zap.Int("part", i))
			continue
		}
		outer := signedArea(ring) <= 0
		coords, err := flatCoords(ring, fn)
		if err != nil {
			return nil, err
		}
		if outer || len(polys) == 0 {
			polys = append(polys, [][]float64{coords})
			continue
		}
		last := len(polys) - 1
		polys[last] = append(polys[last], coords)
	}

	if len(polys) == 0 {
		return nil, nil
	}

	if len(polys) == 1 {
		flat, ends := flatten(polys[0])
		return geom.NewPolygonFlat(geom.XY, flat, ends).SetSRID(srid), nil
	}

	var flat []float64
	endss := make([][]int, 0, len(polys))
	for _, p := range polys {
		ends := make([]int, 0, len(p))
		for _, ring := range p {
			flat = append(flat, ring...)
			ends = append(ends, len(flat))
		}
		endss = append(endss, ends)
	}
	return geom.NewMultiPolygonFlat(geom.XY, flat, endss).SetSRID(srid), nil
}

// splitParts slices a multi-part point array at the part offsets.
func splitParts(numParts int32, parts []int32, points []shp.Point) [][]shp.Point {
	if numParts == 0 || len(points) == 0 {
		return nil
	}
	out := make([][]shp.Point, 0, numParts)
	for i := int32(0); i < numParts && int(i) < len(parts); i++ {
		start := parts[i]
		end := int32(len(points))
		if i+1 < numParts && int(i+1) < len(parts) {
			end = parts[i+1]
		}
		if int(end) > len(points) {
			end = int32(len(points))
		}
		if start < 0 || start > end {
			continue
		}
		out = append(out, points[start:end])
	}
	return out
}

// signedArea is the shoelace sum of a ring in source coordinates. Negative
// values are clockwise.
func signedArea(ring []shp.Point) float64 {
	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		sum += ring[i].X*ring[i+1].Y - ring[i+1].X*ring[i].Y
	}
	return sum / 2
}

func flatCoords(points []shp.Point, fn coordFunc) ([]float64, error) {
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		x, y, err := fn(p.X, p.Y)
		if err != nil {
			return nil, eris.Wrapf(err, "layer: transform (%g, %g)", p.X, p.Y)
		}
		flat = append(flat, x, y)
	}
	return flat, nil
}

func flatten(rings [][]float64) ([]float64, []int) {
	var flat []float64
	ends := make([]int, 0, len(rings))
	for _, r := range rings {
		flat = append(flat, r...)
		ends = append(ends, len(flat))
	}
	return flat, ends
}
