package spatial

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"

	"github.com/sells-group/iceland-maps/internal/layer"
)

// GeometryColumn is the CSV header of the WKT geometry column.
const GeometryColumn = "geometry"

// Columns returns the CSV header for l: an unnamed index column, then the
// fields with the geometry column at l.GeometryColumn.
func Columns(l *layer.Layer) []string {
	cols := make([]string, 0, len(l.Fields)+2)
	cols = append(cols, "")
	for i, name := range l.Fields {
		if i == l.GeometryColumn {
			cols = append(cols, GeometryColumn)
		}
		cols = append(cols, name)
	}
	if l.GeometryColumn >= len(l.Fields) {
		cols = append(cols, GeometryColumn)
	}
	return cols
}

// WriteCSV writes l to path, overwriting any existing file. Geometry is
// written as WKT, missing values as empty cells.
func WriteCSV(path string, l *layer.Layer) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "spatial: create %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "spatial: create %s", path)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(Columns(l)); err != nil {
		return eris.Wrap(err, "spatial: write csv header")
	}

	for _, feat := range l.Features {
		row, err := csvRow(l, feat)
		if err != nil {
			return err
		}
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "spatial: write csv row %d", feat.Index)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "spatial: flush csv")
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "spatial: close %s", path)
	}

	zap.L().Info("csv written", zap.String("path", path), zap.Int("rows", l.Len()))
	return nil
}

func csvRow(l *layer.Layer, feat layer.Feature) ([]string, error) {
	geomText, err := geometryText(feat.Geometry)
	if err != nil {
		return nil, eris.Wrapf(err, "spatial: geometry of row %d", feat.Index)
	}

	row := make([]string, 0, len(l.Fields)+2)
	row = append(row, strconv.Itoa(feat.Index))
	for i, name := range l.Fields {
		if i == l.GeometryColumn {
			row = append(row, geomText)
		}
		row = append(row, FormatValue(feat.Attributes[name]))
	}
	if l.GeometryColumn >= len(l.Fields) {
		row = append(row, geomText)
	}
	return row, nil
}

func geometryText(g geom.T) (string, error) {
	if g == nil {
		return "", nil
	}
	return wkt.Marshal(g)
}

// FormatValue renders an attribute for CSV output. Floats use the shortest
// round-trip form and keep a trailing ".0" when integral.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return formatFloat(t)
	case bool:
		if t {
			return "True"
		}
		return "False"
	default:
		return ""
	}
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
