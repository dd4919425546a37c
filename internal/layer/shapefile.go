package layer

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// Load reads a shapefile and reprojects every geometry into the target CRS.
// The sibling .prj must exist and parse.
func Load(ctx context.Context, shpPath string) (*Layer, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "layer: context cancelled")
	}

	if err := checkExists(shpPath); err != nil {
		return nil, err
	}

	dst, err := TargetSR()
	if err != nil {
		return nil, err
	}
	fn, _, err := transformTo(shpPath, dst)
	if err != nil {
		return nil, err
	}

	l, err := read(shpPath, fn, TargetSRID)
	if err != nil {
		return nil, err
	}
	l.CRS = TargetCRS
	l.SRID = TargetSRID

	zap.L().Debug("layer: loaded",
		zap.String("layer", l.Name),
		zap.Int("features", l.Len()),
		zap.String("crs", l.CRS),
	)
	return l, nil
}

// LoadNative reads a shapefile without reprojection. CRS holds the .prj text
// when present; a missing .prj is not an error.
func LoadNative(ctx context.Context, shpPath string) (*Layer, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "layer: context cancelled")
	}

	if err := checkExists(shpPath); err != nil {
		return nil, err
	}

	l, err := read(shpPath, identity, 0)
	if err != nil {
		return nil, err
	}
	if text, err := readPRJ(shpPath); err == nil {
		l.CRS = text
	}

	zap.L().Debug("layer: loaded without reprojection",
		zap.String("layer", l.Name),
		zap.Int("features", l.Len()),
	)
	return l, nil
}

func checkExists(shpPath string) error {
	info, err := os.Stat(shpPath)
	if err != nil {
		return &MissingInputError{Path: shpPath, Err: err}
	}
	if info.IsDir() {
		return &MissingInputError{Path: shpPath, Err: eris.New("layer: path is a directory")}
	}
	return nil
}

// read parses every record of the shapefile, passing coordinates through fn.
func read(shpPath string, fn coordFunc, srid int) (*Layer, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, &MissingInputError{Path: shpPath, Err: eris.Wrapf(err, "layer: open shapefile %s", shpPath)}
	}
	defer func() { _ = reader.Close() }()

	decode := decoderFor(shpPath)

	// Build field name list and DBF types.
	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	l := &Layer{
		Name:           strings.TrimSuffix(filepath.Base(shpPath), filepath.Ext(shpPath)),
		Fields:         names,
		GeometryColumn: len(names),
	}

	var skipped int
	for reader.Next() {
		idx, shape := reader.Shape()

		g, convErr := shapeToGeom(shape, fn, srid)
		if convErr != nil {
			return nil, &ProjectionError{Path: shpPath, Err: convErr}
		}
		if g == nil {
			skipped++
		}

		attrs := make(map[string]any, len(fields))
		for i, f := range fields {
			raw := strings.TrimRight(reader.Attribute(i), "\x00")
			attrs[names[i]] = parseValue(decode(strings.TrimSpace(raw)), f)
		}

		l.Features = append(l.Features, Feature{Index: idx, Geometry: g, Attributes: attrs})
	}

	if skipped > 0 {
		zap.L().Debug("layer: records without geometry",
			zap.String("layer", l.Name),
			zap.Int("skipped", skipped),
		)
	}

	return l, nil
}

// parseValue types a DBF value by its field descriptor. Blank values are nil.
func parseValue(val string, f shp.Field) any {
	if val == "" {
		return nil
	}
	switch f.Fieldtype {
	case 'N', 'F':
		if f.Fieldtype == 'N' && f.Precision == 0 {
			if n, err := strconv.ParseInt(val, 10, 64); err == nil {
				return n
			}
		}
		if n, err := strconv.ParseFloat(val, 64); err == nil {
			return n
		}
		return nil
	case 'L':
		switch val {
		case "T", "t", "Y", "y":
			return true
		case "F", "f", "N", "n":
			return false
		default:
			return nil
		}
	default:
		return val
	}
}

// decoderFor picks a text decoder from the sibling .cpg. Files without a
// .cpg are read as UTF-8, falling back to Windows-1252 for invalid bytes.
func decoderFor(shpPath string) func(string) string {
	cpgPath := strings.TrimSuffix(shpPath, ".shp") + ".cpg"
	cpg := ""
	if data, err := os.ReadFile(cpgPath); err == nil {
		cpg = strings.ToUpper(strings.TrimSpace(string(data)))
	}

	latin1 := func(s string) string {
		out, err := charmap.Windows1252.NewDecoder().String(s)
		if err != nil {
			return s
		}
		return out
	}

	switch {
	case strings.Contains(cpg, "UTF"):
		return func(s string) string { return s }
	case strings.Contains(cpg, "1252"), strings.Contains(cpg, "8859"), strings.Contains(cpg, "LATIN"):
		return latin1
	default:
		return func(s string) string {
			if utf8.ValidString(s) {
				return s
			}
			return latin1(s)
		}
	}
}
