package pipeline

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sells-group/iceland-maps/internal/layer"
	"github.com/sells-group/iceland-maps/internal/tabular"
)

// LayerInfo summarizes one loaded layer.
type LayerInfo struct {
	Name     string     `json:"name" yaml:"name"`
	CRS      string     `json:"crs" yaml:"crs"`
	Features int        `json:"features" yaml:"features"`
	Fields   []string   `json:"fields" yaml:"fields"`
	Bounds   [4]float64 `json:"bounds" yaml:"bounds"`
}

// Inspection is the pre-analysis look at the inputs.
type Inspection struct {
	Counties []string       `json:"counties" yaml:"counties"` // first-seen order
	Table    *tabular.Table `json:"-" yaml:"-"`
	Layers   []LayerInfo    `json:"layers" yaml:"layers"`
}

// Inspect reports the distinct counties, reads ISL_adm1.csv, and describes
// each layer. A missing or unreadable CSV is a MissingInputError.
func (p *Pipeline) Inspect(ctx context.Context, set *layer.Set) (*Inspection, error) {
	log := zap.L().With(zap.String("component", "pipeline.inspect"))

	ins := &Inspection{Counties: set.Counties.UniqueStrings(layer.FieldCountyName)}
	log.Info("unique features",
		zap.String("field", layer.FieldCountyName),
		zap.Int("count", len(ins.Counties)),
	)

	csvPath := filepath.Join(p.paths.DataDir, layer.CountiesCSV)
	tbl, err := tabular.ReadCSV(ctx, csvPath)
	if err != nil {
		return nil, &layer.MissingInputError{Path: csvPath, Err: err}
	}
	ins.Table = tbl
	log.Info("county table read",
		zap.String("path", csvPath),
		zap.Int("rows", len(tbl.Rows)),
		zap.Strings("header", tbl.Header),
	)

	for _, l := range set.All() {
		ins.Layers = append(ins.Layers, Describe(l))
	}
	return ins, nil
}

// Describe summarizes l.
func Describe(l *layer.Layer) LayerInfo {
	xmin, ymin, xmax, ymax := l.Bounds()
	return LayerInfo{
		Name:     l.Name,
		CRS:      l.CRS,
		Features: l.Len(),
		Fields:   l.Fields,
		Bounds:   [4]float64{xmin, ymin, xmax, ymax},
	}
}
