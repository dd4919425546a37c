// Package layertest writes small shapefile fixtures for tests.
package layertest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/require"
)

// Reference strings for fixture .prj files.
const (
	UTM26N = "+proj=utm +zone=26 +datum=WGS84 +units=m +no_defs"
	WGS84  = "+proj=longlat +datum=WGS84 +no_defs"
)

// Record is one shape plus its attribute values in field order.
type Record struct {
	Shape  shp.Shape
	Values []any
}

// Write creates path (.shp/.shx/.dbf) and, when prj is non-empty, a sibling .prj.
func Write(t testing.TB, path string, shapeType shp.ShapeType, prj string, fields []shp.Field, records []Record) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	w, err := shp.Create(path, shapeType)
	require.NoError(t, err)
	require.NoError(t, w.SetFields(fields))

	for _, r := range records {
		row := w.Write(r.Shape)
		for i, v := range r.Values {
			if v == nil {
				continue
			}
			require.NoError(t, w.WriteAttribute(int(row), i, v))
		}
	}
	w.Close()

	if prj != "" {
		prjPath := strings.TrimSuffix(path, ".shp") + ".prj"
		require.NoError(t, os.WriteFile(prjPath, []byte(prj), 0o644))
	}
}

// Line returns a single-part polyline through pts.
func Line(pts ...[2]float64) *shp.PolyLine {
	return shp.NewPolyLine([][]shp.Point{points(pts)})
}

// MultiLine returns a polyline with one part per slice.
func MultiLine(parts ...[][2]float64) *shp.PolyLine {
	ps := make([][]shp.Point, 0, len(parts))
	for _, p := range parts {
		ps = append(ps, points(p))
	}
	return shp.NewPolyLine(ps)
}

// Rect returns a clockwise, closed rectangular polygon.
func Rect(xmin, ymin, xmax, ymax float64) *shp.Polygon {
	ring := []shp.Point{
		{X: xmin, Y: ymin},
		{X: xmin, Y: ymax},
		{X: xmax, Y: ymax},
		{X: xmax, Y: ymin},
		{X: xmin, Y: ymin},
	}
	p := shp.Polygon(*shp.NewPolyLine([][]shp.Point{ring}))
	return &p
}

// Point returns a point shape.
func Point(x, y float64) *shp.Point {
	return &shp.Point{X: x, Y: y}
}

func points(pts [][2]float64) []shp.Point {
	out := make([]shp.Point, len(pts))
	for i, p := range pts {
		out[i] = shp.Point{X: p[0], Y: p[1]}
	}
	return out
}

// Iceland writes a synthetic copy of the six source layers plus ISL_adm1.csv
// into dir, all in UTM zone 26N. Two counties split the island at x=600000;
// one river crosses both, 100 km in each.
func Iceland(t testing.TB, dir string) {
	t.Helper()

	Write(t, filepath.Join(dir, "ISL_adm0.shp"), shp.POLYGON, UTM26N,
		[]shp.Field{shp.StringField("ISO", 3), shp.StringField("NAME_0", 20)},
		[]Record{{Shape: Rect(400000, 7000000, 800000, 7300000), Values: []any{"ISL", "Iceland"}}},
	)

	Write(t, filepath.Join(dir, "ISL_adm1.shp"), shp.POLYGON, UTM26N,
		[]shp.Field{shp.NumberField("ID_1", 5), shp.StringField("NAME_1", 40), shp.StringField("TYPE_1", 20)},
		[]Record{
			{Shape: Rect(400000, 7000000, 600000, 7300000), Values: []any{1, "vesturland", "Region"}},
			{Shape: Rect(600000, 7000000, 800000, 7300000), Values: []any{2, "austurland", "Region"}},
		},
	)

	Write(t, filepath.Join(dir, "waterways.shp"), shp.POLYLINE, UTM26N,
		[]shp.Field{shp.NumberField("osm_id", 10), shp.StringField("name", 40), shp.StringField("type", 20)},
		[]Record{
			{Shape: Line([2]float64{500000, 7100000}, [2]float64{700000, 7100000}), Values: []any{101, "Jokulsa", "river"}},
			{Shape: Line([2]float64{450000, 7200000}, [2]float64{450000, 7250000}), Values: []any{102, "Laekur", "stream"}},
		},
	)

	Write(t, filepath.Join(dir, "roads.shp"), shp.POLYLINE, UTM26N,
		[]shp.Field{shp.NumberField("osm_id", 10), shp.StringField("type", 20)},
		[]Record{
			{Shape: Line([2]float64{420000, 7050000}, [2]float64{780000, 7250000}), Values: []any{201, "primary"}},
		},
	)

	Write(t, filepath.Join(dir, "points.shp"), shp.POINT, UTM26N,
		[]shp.Field{shp.StringField("name", 40)},
		[]Record{{Shape: Point(550000, 7150000), Values: []any{"Reykholt"}}},
	)

	Write(t, filepath.Join(dir, "population.shp"), shp.POLYGON, UTM26N,
		[]shp.Field{shp.StringField("NAME_1", 40), shp.NumberField("Population", 10)},
		[]Record{
			{Shape: Rect(400000, 7000000, 600000, 7300000), Values: []any{"vesturland", 300}},
			{Shape: Rect(600000, 7000000, 800000, 7300000), Values: []any{"austurland", 12500}},
		},
	)

	csv := "ID_0,ISO,NAME_0,ID_1,NAME_1\n" +
		"109,ISL,Iceland,1,vesturland\n" +
		"109,ISL,Iceland,2,austurland\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ISL_adm1.csv"), []byte(csv), 0o644))
}
