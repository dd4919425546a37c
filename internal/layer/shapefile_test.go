package layer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/iceland-maps/internal/layer/layertest"
)

func TestLoad_ProjectedFixture(t *testing.T) {
	dir := t.TempDir()
	layertest.Iceland(t, dir)

	l, err := Load(context.Background(), filepath.Join(dir, WaterwaysFile))
	require.NoError(t, err)

	assert.Equal(t, "waterways", l.Name)
	assert.Equal(t, TargetCRS, l.CRS)
	assert.True(t, l.Projected())
	assert.Equal(t, []string{"osm_id", "name", "type"}, l.Fields)
	require.Equal(t, 2, l.Len())

	f := l.Features[0]
	assert.Equal(t, 0, f.Index)
	assert.Equal(t, int64(101), f.Attributes["osm_id"])
	assert.Equal(t, "river", f.String("type"))

	ls, ok := f.Geometry.(*geom.LineString)
	require.True(t, ok, "single-part polyline should load as LineString")
	assert.Equal(t, TargetSRID, ls.SRID())
	assert.InDelta(t, 500000, ls.Coord(0).X(), 0.01)
	assert.InDelta(t, 7100000, ls.Coord(0).Y(), 0.01)
}

func TestLoad_ReprojectsGeographic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pts.shp")
	layertest.Write(t, path, shp.POINT, layertest.WGS84,
		[]shp.Field{shp.StringField("name", 20)},
		[]layertest.Record{{Shape: layertest.Point(-21.0, 64.0), Values: []any{"x"}}},
	)

	l, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())

	pt, ok := l.Features[0].Geometry.(*geom.Point)
	require.True(t, ok)
	// 6 degrees east of the zone 26 central meridian.
	assert.Greater(t, pt.X(), 700000.0)
	assert.Less(t, pt.X(), 900000.0)
	assert.Greater(t, pt.Y(), 7000000.0)
	assert.Less(t, pt.Y(), 7200000.0)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.shp"))
	require.Error(t, err)
	assert.True(t, IsMissingInput(err))
	assert.False(t, IsProjection(err))
}

func TestLoad_MissingPRJ(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noprj.shp")
	layertest.Write(t, path, shp.POINT, "",
		[]shp.Field{shp.StringField("name", 20)},
		[]layertest.Record{{Shape: layertest.Point(1, 2), Values: []any{"x"}}},
	)

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, IsProjection(err))
}

func TestLoad_GarbagePRJ(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.shp")
	layertest.Write(t, path, shp.POINT, "this is not a projection",
		[]shp.Field{shp.StringField("name", 20)},
		[]layertest.Record{{Shape: layertest.Point(1, 2), Values: []any{"x"}}},
	)

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, IsProjection(err))
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, "whatever.shp")
	assert.Error(t, err)
}

func TestLoadNative_KeepsCoordinates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pts.shp")
	layertest.Write(t, path, shp.POINT, "",
		[]shp.Field{shp.StringField("name", 20)},
		[]layertest.Record{{Shape: layertest.Point(-21.0, 64.0), Values: []any{"x"}}},
	)

	l, err := LoadNative(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, l.Projected())
	assert.Empty(t, l.CRS)

	pt := l.Features[0].Geometry.(*geom.Point)
	assert.InDelta(t, -21.0, pt.X(), 1e-9)
	assert.InDelta(t, 64.0, pt.Y(), 1e-9)
}

func TestLoad_TargetPRJKeepsCoordinates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pts.shp")
	layertest.Write(t, path, shp.POINT, layertest.UTM26N,
		[]shp.Field{shp.StringField("name", 20)},
		[]layertest.Record{{Shape: layertest.Point(512345.5, 7098765.25), Values: []any{"x"}}},
	)

	var l *Layer
	require.NotPanics(t, func() {
		var err error
		l, err = Load(context.Background(), path)
		require.NoError(t, err)
	})
	assert.Equal(t, TargetCRS, l.CRS)

	pt := l.Features[0].Geometry.(*geom.Point)
	assert.Equal(t, TargetSRID, pt.SRID())
	assert.Equal(t, 512345.5, pt.X())
	assert.Equal(t, 7098765.25, pt.Y())

	ok, err := MatchesTarget(path, l)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoadSet_AllLayersProjected(t *testing.T) {
	dir := t.TempDir()
	layertest.Iceland(t, dir)

	set, err := LoadSet(context.Background(), dir)
	require.NoError(t, err)

	for _, l := range set.All() {
		assert.Equal(t, TargetCRS, l.CRS, "layer %s", l.Name)
		assert.Equal(t, TargetSRID, l.SRID, "layer %s", l.Name)
	}
	assert.Equal(t, 2, set.Counties.Len())
	assert.Equal(t, 1, set.Outline.Len())
}

func TestLoadSet_MissingLayer(t *testing.T) {
	dir := t.TempDir()
	layertest.Iceland(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, PointsFile)))

	_, err := LoadSet(context.Background(), dir)
	require.Error(t, err)
	assert.True(t, IsMissingInput(err))
}

func TestMatchesTarget(t *testing.T) {
	dir := t.TempDir()
	layertest.Iceland(t, dir)
	path := filepath.Join(dir, PopulationFile)

	l, err := LoadNative(context.Background(), path)
	require.NoError(t, err)

	ok, err := MatchesTarget(path, l)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseValue(t *testing.T) {
	intField := shp.NumberField("n", 10)
	floatField := shp.FloatField("f", 12, 3)

	assert.Equal(t, int64(42), parseValue("42", intField))
	assert.Equal(t, 1.5, parseValue("1.500", floatField))
	assert.Nil(t, parseValue("", intField))
	assert.Nil(t, parseValue("abc", floatField))
	assert.Equal(t, "Reykjavík", parseValue("Reykjavík", shp.StringField("s", 20)))
}
