package spatial

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/iceland-maps/internal/layer"
)

func rect(xmin, ymin, xmax, ymax float64) geom.T {
	return geom.NewPolygonFlat(geom.XY, []float64{
		xmin, ymin, xmin, ymax, xmax, ymax, xmax, ymin, xmin, ymin,
	}, []int{10}).SetSRID(layer.TargetSRID)
}

func line(coords ...float64) geom.T {
	return geom.NewLineStringFlat(geom.XY, coords).SetSRID(layer.TargetSRID)
}

// twoCounties splits the square [0,100]x[0,100] at x=50.
func twoCounties() *layer.Layer {
	return &layer.Layer{
		Name:           "ISL_adm1",
		CRS:            layer.TargetCRS,
		SRID:           layer.TargetSRID,
		Fields:         []string{"NAME_1", "name"},
		GeometryColumn: 2,
		Features: []layer.Feature{
			{Index: 0, Geometry: rect(0, 0, 50, 100), Attributes: map[string]any{"NAME_1": "west", "name": "W"}},
			{Index: 1, Geometry: rect(50, 0, 100, 100), Attributes: map[string]any{"NAME_1": "east", "name": "E"}},
		},
	}
}

// waterways has an 80 m river crossing both counties and a 20 m stream in the west.
func waterways() *layer.Layer {
	return &layer.Layer{
		Name:           "waterways",
		CRS:            layer.TargetCRS,
		SRID:           layer.TargetSRID,
		Fields:         []string{"name", "type"},
		GeometryColumn: 2,
		Features: []layer.Feature{
			{Index: 0, Geometry: line(10, 50, 90, 50), Attributes: map[string]any{"name": "Thjorsa", "type": "river"}},
			{Index: 1, Geometry: line(20, 10, 20, 30), Attributes: map[string]any{"name": "Laekur", "type": "stream"}},
		},
	}
}

func TestComputeLengths(t *testing.T) {
	rivers := waterways()
	require.NoError(t, ComputeLengths(rivers))

	assert.Contains(t, rivers.Fields, layer.FieldLength)
	assert.InDelta(t, 80.0, rivers.Features[0].Attributes[layer.FieldLength], 1e-9)
	assert.InDelta(t, 20.0, rivers.Features[1].Attributes[layer.FieldLength], 1e-9)
}

func TestComputeLengths_RequiresProjectedLayer(t *testing.T) {
	rivers := waterways()
	rivers.SRID = 0

	err := ComputeLengths(rivers)
	assert.Error(t, err)
}

func TestComputeLengths_NilGeometry(t *testing.T) {
	rivers := waterways()
	rivers.Features[1].Geometry = nil
	require.NoError(t, ComputeLengths(rivers))

	assert.Nil(t, rivers.Features[1].Attributes[layer.FieldLength])
	assert.InDelta(t, 80.0, SumLength(rivers), 1e-9)
}

func TestAggregates(t *testing.T) {
	rivers := waterways()
	require.NoError(t, ComputeLengths(rivers))

	assert.InDelta(t, 100.0, SumLength(rivers), 1e-9)
	assert.InDelta(t, 80.0, SumLengthWhere(rivers, layer.FieldType, "river"), 1e-9)

	byType := LengthByTypeKm(rivers)
	require.Len(t, byType, 2)
	assert.Equal(t, "river", byType[0].Type)
	assert.InDelta(t, 0.08, byType[0].Km, 1e-12)
	assert.Equal(t, "stream", byType[1].Type)
	assert.InDelta(t, 0.02, byType[1].Km, 1e-12)
}

func TestAggregates_GroupedSumMatchesTotal(t *testing.T) {
	rivers := waterways()
	rivers.Features = append(rivers.Features,
		layer.Feature{Index: 2, Geometry: line(60, 10, 60, 45), Attributes: map[string]any{"name": "A", "type": "river"}},
		layer.Feature{Index: 3, Geometry: line(70, 70, 73, 74), Attributes: map[string]any{"name": "B", "type": "canal"}},
	)
	require.NoError(t, ComputeLengths(rivers))

	var groupedKm float64
	for _, g := range LengthByTypeKm(rivers) {
		groupedKm += g.Km
	}
	assert.InDelta(t, SumLength(rivers), groupedKm*metersPerKm, 1e-9)
}

func TestJoin(t *testing.T) {
	rivers := waterways()
	require.NoError(t, ComputeLengths(rivers))

	joined, err := Join(context.Background(), twoCounties(), rivers)
	require.NoError(t, err)

	assert.Equal(t, []string{"NAME_1", "name_left", IndexRight, "name_right", "type", "Length"}, joined.Fields)
	require.Equal(t, 3, joined.Len())

	// west: river then stream; east: river.
	assert.Equal(t, "west", joined.Features[0].String("NAME_1"))
	assert.Equal(t, int64(0), joined.Features[0].Attributes[IndexRight])
	assert.Equal(t, "W", joined.Features[0].Attributes["name_left"])
	assert.Equal(t, "Thjorsa", joined.Features[0].Attributes["name_right"])
	assert.Equal(t, "west", joined.Features[1].String("NAME_1"))
	assert.Equal(t, int64(1), joined.Features[1].Attributes[IndexRight])
	assert.Equal(t, "east", joined.Features[2].String("NAME_1"))
	assert.Equal(t, 1, joined.Features[2].Index)

	assert.InDelta(t, 180.0, SumLength(joined), 1e-9)

	byCounty := LengthByCountyTypeKm(joined)
	require.Len(t, byCounty, 3)
	assert.Equal(t, CountyTypeLength{County: "east", Type: "river", Km: 0.08}, roundKm(byCounty[0]))
	assert.Equal(t, CountyTypeLength{County: "west", Type: "river", Km: 0.08}, roundKm(byCounty[1]))
	assert.Equal(t, CountyTypeLength{County: "west", Type: "stream", Km: 0.02}, roundKm(byCounty[2]))
}

func roundKm(c CountyTypeLength) CountyTypeLength {
	c.Km = float64(int(c.Km*1e6+0.5)) / 1e6
	return c
}

func TestJoin_CRSMismatch(t *testing.T) {
	rivers := waterways()
	rivers.SRID = 4326

	_, err := Join(context.Background(), twoCounties(), rivers)
	assert.Error(t, err)
}

func TestJoin_NoMatchesIsNotAnError(t *testing.T) {
	rivers := &layer.Layer{
		Name: "waterways", SRID: layer.TargetSRID, Fields: []string{"type"},
		Features: []layer.Feature{
			{Index: 0, Geometry: line(500, 500, 600, 600), Attributes: map[string]any{"type": "river"}},
		},
	}

	joined, err := Join(context.Background(), twoCounties(), rivers)
	require.NoError(t, err)
	assert.Equal(t, 0, joined.Len())
}

func TestClipByCounty_TwoCountiesOneRiver(t *testing.T) {
	rivers := waterways()
	rivers.Features = rivers.Features[:1]
	require.NoError(t, ComputeLengths(rivers))

	clipped, err := ClipByCounty(context.Background(), rivers, twoCounties())
	require.NoError(t, err)
	require.Equal(t, 2, clipped.Len())

	west, east := clipped.Features[0], clipped.Features[1]
	assert.Equal(t, "west", west.String(layer.FieldCountyName))
	assert.Equal(t, "east", east.String(layer.FieldCountyName))

	l1, ok := west.Float(layer.FieldType)
	require.True(t, ok, "type holds the clipped length")
	l2, ok := east.Float(layer.FieldType)
	require.True(t, ok)
	assert.InDelta(t, 40.0, l1, 1e-6)
	assert.InDelta(t, 40.0, l2, 1e-6)
	assert.InDelta(t, 80.0, l1+l2, 1e-6)

	// Length keeps the unclipped value.
	assert.InDelta(t, 80.0, west.Attributes[layer.FieldLength], 1e-9)
	assert.Equal(t, 0, west.Index)
}

func TestClipByCounty_NeverCreatesLength(t *testing.T) {
	rivers := waterways()
	require.NoError(t, ComputeLengths(rivers))

	clipped, err := ClipByCounty(context.Background(), rivers, twoCounties())
	require.NoError(t, err)

	assert.Equal(t, 3, clipped.Len())
	assert.LessOrEqual(t, SumClippedLength(clipped), SumLength(rivers)+1e-6)
	assert.Equal(t, []string{"name", "type", "Length", "NAME_1"}, clipped.Fields)
}

func TestClipByCounty_EmptyCountyIsSkipped(t *testing.T) {
	counties := twoCounties()
	counties.Features = append(counties.Features, layer.Feature{
		Index: 2, Geometry: rect(1000, 1000, 1100, 1100), Attributes: map[string]any{"NAME_1": "faraway"},
	})
	rivers := waterways()
	require.NoError(t, ComputeLengths(rivers))

	clipped, err := ClipByCounty(context.Background(), rivers, counties)
	require.NoError(t, err)
	for _, f := range clipped.Features {
		assert.NotEqual(t, "faraway", f.String(layer.FieldCountyName))
	}
}

func TestClipByCounty_NullCountyNameIsNotAGroup(t *testing.T) {
	counties := twoCounties()
	counties.Features = append(counties.Features, layer.Feature{
		Index: 2, Geometry: rect(0, 0, 100, 100), Attributes: map[string]any{"NAME_1": nil},
	})
	rivers := waterways()
	require.NoError(t, ComputeLengths(rivers))

	clipped, err := ClipByCounty(context.Background(), rivers, counties)
	require.NoError(t, err)
	assert.Equal(t, 3, clipped.Len())
	for _, f := range clipped.Features {
		assert.NotEmpty(t, f.String(layer.FieldCountyName))
	}
}

func TestClipByCounty_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ClipByCounty(ctx, waterways(), twoCounties())
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	res, err := Analyze(context.Background(), waterways(), twoCounties())
	require.NoError(t, err)

	s := res.Summary
	assert.InDelta(t, 100.0, s.TotalLengthM, 1e-9)
	assert.InDelta(t, 80.0, s.RiverLengthM, 1e-9)
	assert.Equal(t, 3, s.JoinRows)
	assert.InDelta(t, 180.0, s.JoinTotalLengthM, 1e-9)
	assert.Equal(t, 3, s.ClippedRows)
	assert.InDelta(t, 100.0, s.ClipLengthM, 1e-6)
	// river counted once per county, stream once
	assert.InDelta(t, 180.0, s.ClipSourceLengthM, 1e-9)
}

func TestWriteCSV(t *testing.T) {
	rivers := waterways()
	require.NoError(t, ComputeLengths(rivers))
	clipped, err := ClipByCounty(context.Background(), rivers, twoCounties())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "Clipped.csv")
	require.NoError(t, WriteCSV(path, clipped))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"", "name", "type", "geometry", "Length", "NAME_1"}, records[0])
	assert.Equal(t, "0", records[1][0])
	assert.Equal(t, "Thjorsa", records[1][1])
	assert.Equal(t, "40.0", records[1][2])
	assert.True(t, strings.HasPrefix(records[1][3], "LINESTRING"), records[1][3])
	assert.Equal(t, "80.0", records[1][4])
	assert.Equal(t, "west", records[1][5])
}

func TestWriteCSV_Deterministic(t *testing.T) {
	dir := t.TempDir()
	rivers := waterways()
	require.NoError(t, ComputeLengths(rivers))

	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "b.csv")
	require.NoError(t, WriteCSV(first, rivers))
	require.NoError(t, WriteCSV(second, rivers))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"Ölfusá", "Ölfusá"},
		{int64(42), "42"},
		{12345.0, "12345.0"},
		{1234.5678, "1234.5678"},
		{0.00001, "1e-05"},
		{true, "True"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in), "input %v", tt.in)
	}
}

func TestColumns_GeometryBeforeDerivedFields(t *testing.T) {
	l := &layer.Layer{Fields: []string{"a", "b", "Length"}, GeometryColumn: 2}
	assert.Equal(t, []string{"", "a", "b", "geometry", "Length"}, Columns(l))

	l.GeometryColumn = 3
	assert.Equal(t, []string{"", "a", "b", "Length", "geometry"}, Columns(l))
}
