package spatial

import (
	"fmt"
	"sort"

	"github.com/sells-group/iceland-maps/internal/layer"
)

const metersPerKm = 1000.0

// TypeLength is the summed length of one waterway type, in kilometers.
type TypeLength struct {
	Type string  `yaml:"type" json:"type"`
	Km   float64 `yaml:"km" json:"km"`
}

// CountyTypeLength is the summed length of one waterway type within one
// county, in kilometers.
type CountyTypeLength struct {
	County string  `yaml:"county" json:"county"`
	Type   string  `yaml:"type" json:"type"`
	Km     float64 `yaml:"km" json:"km"`
}

// Summary collects every aggregate the analysis stage reports. Totals are in
// meters, grouped values in kilometers.
type Summary struct {
	TotalLengthM   float64      `yaml:"total_length_m" json:"total_length_m"`
	RiverLengthM   float64      `yaml:"river_length_m" json:"river_length_m"`
	LengthByTypeKm []TypeLength `yaml:"total_length_by_type_km" json:"total_length_by_type_km"`

	JoinRows                 int                `yaml:"join_rows" json:"join_rows"`
	JoinTotalLengthM         float64            `yaml:"join_total_length_m" json:"join_total_length_m"`
	JoinLengthByCountyTypeKm []CountyTypeLength `yaml:"join_length_by_county_type_km" json:"join_length_by_county_type_km"`

	ClippedRows int `yaml:"clipped_rows" json:"clipped_rows"`
	// ClipSourceLengthM sums the Length column of the clipped table, which
	// still holds each river's unclipped length.
	ClipSourceLengthM float64 `yaml:"clip_source_length_m" json:"clip_source_length_m"`
	// ClipLengthM sums the clipped lengths stored under type.
	ClipLengthM float64 `yaml:"clip_length_m" json:"clip_length_m"`
}

// SumLength sums the Length attribute, skipping missing values.
func SumLength(l *layer.Layer) float64 {
	return sumField(l, layer.FieldLength, func(layer.Feature) bool { return true })
}

// SumLengthWhere sums Length over features whose string attribute field equals value.
func SumLengthWhere(l *layer.Layer, field, value string) float64 {
	return sumField(l, layer.FieldLength, func(f layer.Feature) bool { return f.String(field) == value })
}

// SumClippedLength sums the clipped lengths a ClipByCounty table stores under type.
func SumClippedLength(l *layer.Layer) float64 {
	return sumField(l, layer.FieldType, func(layer.Feature) bool { return true })
}

func sumField(l *layer.Layer, field string, keep func(layer.Feature) bool) float64 {
	var total float64
	for _, f := range l.Features {
		if !keep(f) {
			continue
		}
		if v, ok := f.Float(field); ok {
			total += v
		}
	}
	return total
}

// LengthByTypeKm groups Length by type and converts to kilometers. Groups are
// sorted by type; features with no type are not grouped.
func LengthByTypeKm(l *layer.Layer) []TypeLength {
	sums := make(map[string]float64)
	for _, f := range l.Features {
		key, ok := groupKey(f.Attributes[layer.FieldType])
		if !ok {
			continue
		}
		v, _ := f.Float(layer.FieldLength)
		sums[key] += v
	}

	out := make([]TypeLength, 0, len(sums))
	for k, v := range sums {
		out = append(out, TypeLength{Type: k, Km: v / metersPerKm})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// LengthByCountyTypeKm groups Length by (NAME_1, type) and converts to
// kilometers, sorted by county then type.
func LengthByCountyTypeKm(l *layer.Layer) []CountyTypeLength {
	type key struct{ county, typ string }
	sums := make(map[key]float64)
	for _, f := range l.Features {
		county, ok := groupKey(f.Attributes[layer.FieldCountyName])
		if !ok {
			continue
		}
		typ, ok := groupKey(f.Attributes[layer.FieldType])
		if !ok {
			continue
		}
		v, _ := f.Float(layer.FieldLength)
		sums[key{county, typ}] += v
	}

	out := make([]CountyTypeLength, 0, len(sums))
	for k, v := range sums {
		out = append(out, CountyTypeLength{County: k.county, Type: k.typ, Km: v / metersPerKm})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].County != out[j].County {
			return out[i].County < out[j].County
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// groupKey renders an attribute as a grouping key. Missing values are not keys.
func groupKey(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	default:
		return fmt.Sprint(t), true
	}
}
