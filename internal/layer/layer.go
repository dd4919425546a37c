// Package layer loads shapefiles into in-memory vector layers projected into a
// common coordinate reference system.
package layer

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Target projection for every layer used in rendering, join or clip.
const (
	TargetSRID  = 32626
	TargetCRS   = "EPSG:32626"
	TargetProj4 = "+proj=utm +zone=26 +datum=WGS84 +units=m +no_defs"
)

// Field names the pipeline reads or writes.
const (
	FieldCountyName = "NAME_1"
	FieldType       = "type"
	FieldLength     = "Length"
	FieldPopulation = "Population"
)

// Feature is one record of a layer: a geometry plus its attribute row.
// Index is the record's position in the source file and survives filtering,
// joins and clips.
type Feature struct {
	Index      int
	Geometry   geom.T
	Attributes map[string]any
}

// String returns the attribute as a string, or "" when absent or not a string.
func (f Feature) String(field string) string {
	s, _ := f.Attributes[field].(string)
	return s
}

// Float returns a numeric attribute as float64. The second return is false
// for missing or non-numeric values.
func (f Feature) Float(field string) (float64, bool) {
	switch v := f.Attributes[field].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Clone returns a copy of the feature with its own attribute map. The
// geometry is shared.
func (f Feature) Clone() Feature {
	attrs := make(map[string]any, len(f.Attributes))
	for k, v := range f.Attributes {
		attrs[k] = v
	}
	return Feature{Index: f.Index, Geometry: f.Geometry, Attributes: attrs}
}

// Layer is an ordered collection of features sharing one field list and CRS.
type Layer struct {
	Name     string
	CRS      string // "EPSG:32626" after reprojection, otherwise the source .prj text
	SRID     int    // 0 when the layer was not reprojected
	Fields   []string
	Features []Feature

	// GeometryColumn is the position of the geometry column among Fields in
	// tabular output. Fields added after loading come after it.
	GeometryColumn int
}

// Len returns the number of features.
func (l *Layer) Len() int {
	return len(l.Features)
}

// Projected reports whether the layer has been reprojected into the target CRS.
func (l *Layer) Projected() bool {
	return l.SRID == TargetSRID
}

// HasField reports whether name is in the layer's field list.
func (l *Layer) HasField(name string) bool {
	for _, f := range l.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// AddField appends name to the field list if it is not already present.
func (l *Layer) AddField(name string) {
	if !l.HasField(name) {
		l.Fields = append(l.Fields, name)
	}
}

// Bounds returns the total bounds of all feature geometries as
// (xmin, ymin, xmax, ymax). An empty layer returns all zeros.
func (l *Layer) Bounds() (xmin, ymin, xmax, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, f := range l.Features {
		if f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bounds()
		if b.IsEmpty() {
			continue
		}
		xmin = math.Min(xmin, b.Min(0))
		ymin = math.Min(ymin, b.Min(1))
		xmax = math.Max(xmax, b.Max(0))
		ymax = math.Max(ymax, b.Max(1))
	}
	if math.IsInf(xmin, 1) {
		return 0, 0, 0, 0
	}
	return xmin, ymin, xmax, ymax
}

// UniqueStrings returns the distinct string values of field in first-seen order.
// Features where field is missing, null or not a string are skipped.
func (l *Layer) UniqueStrings(field string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range l.Features {
		v, ok := f.Attributes[field].(string)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Filter returns a new layer holding the features for which keep returns true.
func (l *Layer) Filter(keep func(Feature) bool) *Layer {
	out := &Layer{
		Name:           l.Name,
		CRS:            l.CRS,
		SRID:           l.SRID,
		Fields:         append([]string(nil), l.Fields...),
		GeometryColumn: l.GeometryColumn,
	}
	for _, f := range l.Features {
		if keep(f) {
			out.Features = append(out.Features, f)
		}
	}
	return out
}

// Where returns the features whose string attribute field equals value.
func (l *Layer) Where(field, value string) *Layer {
	return l.Filter(func(f Feature) bool { return f.String(field) == value })
}
