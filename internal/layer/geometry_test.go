package layer

import (
	"errors"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestShapeToGeom_Point(t *testing.T) {
	g, err := shapeToGeom(&shp.Point{X: 1, Y: 2}, identity, TargetSRID)
	require.NoError(t, err)

	p, ok := g.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, p.FlatCoords())
	assert.Equal(t, TargetSRID, p.SRID())
}

func TestShapeToGeom_MultiPartPolyLine(t *testing.T) {
	pl := &shp.PolyLine{
		NumParts: 2,
		Parts:    []int32{0, 2},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 1, Y: 0},
			{X: 5, Y: 5}, {X: 6, Y: 6},
		},
	}

	g, err := shapeToGeom(pl, identity, 0)
	require.NoError(t, err)

	mls, ok := g.(*geom.MultiLineString)
	require.True(t, ok)
	assert.Equal(t, 2, mls.NumLineStrings())
}

func TestShapeToGeom_PolygonWithHole(t *testing.T) {
	poly := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 5},
		Points: []shp.Point{
			// Outer ring, clockwise
			{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0},
			// Hole, counter-clockwise
			{X: 2, Y: 2}, {X: 4, Y: 2}, {X: 4, Y: 4}, {X: 2, Y: 4}, {X: 2, Y: 2},
		},
	}

	g, err := shapeToGeom(poly, identity, 0)
	require.NoError(t, err)

	p, ok := g.(*geom.Polygon)
	require.True(t, ok, "hole must stay inside one polygon")
	assert.Equal(t, 2, p.NumLinearRings())
}

func TestShapeToGeom_TwoOuterRings(t *testing.T) {
	poly := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 5},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0},
			{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 6, Y: 6}, {X: 6, Y: 5}, {X: 5, Y: 5},
		},
	}

	g, err := shapeToGeom(poly, identity, 0)
	require.NoError(t, err)

	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, mp.NumPolygons())
}

func TestShapeToGeom_NilAndNull(t *testing.T) {
	g, err := shapeToGeom(nil, identity, 0)
	assert.NoError(t, err)
	assert.Nil(t, g)

	g, err = shapeToGeom(&shp.Null{}, identity, 0)
	assert.NoError(t, err)
	assert.Nil(t, g)
}

func TestShapeToGeom_TransformError(t *testing.T) {
	failing := func(x, y float64) (float64, float64, error) {
		return 0, 0, errors.New("out of domain")
	}
	_, err := shapeToGeom(&shp.Point{X: 1, Y: 2}, failing, 0)
	assert.Error(t, err)
}

func TestShapeToGeom_AppliesTransform(t *testing.T) {
	shift := func(x, y float64) (float64, float64, error) { return x + 100, y - 100, nil }
	g, err := shapeToGeom(&shp.PolyLine{
		NumParts: 1,
		Parts:    []int32{0},
		Points:   []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
	}, shift, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, -100, 101, -99}, g.FlatCoords())
}

func TestSplitParts_MalformedOffsets(t *testing.T) {
	pts := []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}
	parts := splitParts(2, []int32{0, 9}, pts)
	require.Len(t, parts, 1)
	assert.Equal(t, pts, parts[0])

	parts = splitParts(1, []int32{0}, pts[:1])
	require.Len(t, parts, 1)
	assert.Len(t, parts[0], 1)
}
