// Package pipeline runs the loader, renderers, and spatial analysis in order.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/iceland-maps/internal/config"
	"github.com/sells-group/iceland-maps/internal/layer"
	"github.com/sells-group/iceland-maps/internal/render"
	"github.com/sells-group/iceland-maps/internal/spatial"
)

// PhaseStatus is the outcome of one stage.
type PhaseStatus string

const (
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
)

// PhaseResult records one stage run.
type PhaseResult struct {
	Name     string      `json:"name" yaml:"name"`
	Status   PhaseStatus `json:"status" yaml:"status"`
	Duration int64       `json:"duration_ms" yaml:"duration_ms"`
	Error    string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// Result collects whatever the stages produced.
type Result struct {
	Layers     *layer.Set
	Inspection *Inspection
	Reference  *render.ReferenceMap
	Analysis   *spatial.Result
	Choropleth *render.Choropleth
	Phases     []PhaseResult
}

// Pipeline runs the stages against the configured paths.
type Pipeline struct {
	paths config.PathsConfig
}

// New creates a Pipeline.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{paths: cfg.Paths}
}

// Run executes load, inspection, reference map, analysis, and choropleth.
// The first failing stage stops the run; earlier outputs stay on disk.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	log := zap.L().With(zap.String("data_dir", p.paths.DataDir))
	log.Info("pipeline: starting")

	res := &Result{}
	stages := []struct {
		name string
		fn   func() error
	}{
		{"load", func() (err error) {
			res.Layers, err = p.LoadLayers(ctx)
			return err
		}},
		{"inspect", func() (err error) {
			res.Inspection, err = p.Inspect(ctx, res.Layers)
			return err
		}},
		{"reference_map", func() (err error) {
			res.Reference, err = p.Counties(ctx, res.Layers)
			return err
		}},
		{"analysis", func() (err error) {
			res.Analysis, err = p.Analyze(ctx, res.Layers)
			return err
		}},
		{"choropleth", func() (err error) {
			res.Choropleth, err = p.Population(ctx)
			return err
		}},
	}

	for _, s := range stages {
		pr, err := trackPhase(ctx, s.name, s.fn)
		res.Phases = append(res.Phases, pr)
		if err != nil {
			return res, err
		}
	}

	log.Info("pipeline: complete", zap.Int("phases", len(res.Phases)))
	return res, nil
}

// trackPhase runs fn as the named stage after checking for cancellation.
func trackPhase(ctx context.Context, name string, fn func() error) (PhaseResult, error) {
	pr := PhaseResult{Name: name}
	if err := ctx.Err(); err != nil {
		pr.Status = PhaseStatusFailed
		pr.Error = err.Error()
		return pr, eris.Wrapf(err, "pipeline: %s cancelled", name)
	}

	start := time.Now()
	err := fn()
	pr.Duration = time.Since(start).Milliseconds()

	if err != nil {
		pr.Status = PhaseStatusFailed
		pr.Error = err.Error()
		zap.L().Error("pipeline: phase failed",
			zap.String("phase", name),
			zap.Int64("duration_ms", pr.Duration),
			zap.Error(err),
		)
		return pr, eris.Wrapf(err, "pipeline: %s", name)
	}

	pr.Status = PhaseStatusComplete
	zap.L().Info("pipeline: phase complete",
		zap.String("phase", name),
		zap.Int64("duration_ms", pr.Duration),
	)
	return pr, nil
}

// LoadLayers loads the six source layers in the target CRS.
func (p *Pipeline) LoadLayers(ctx context.Context) (*layer.Set, error) {
	return layer.LoadSet(ctx, p.paths.DataDir)
}

// Counties draws the reference map and saves it.
func (p *Pipeline) Counties(ctx context.Context, set *layer.Set) (*render.ReferenceMap, error) {
	m, err := render.DrawReferenceMap(ctx, set)
	if err != nil {
		return nil, err
	}
	if err := m.SavePNG(p.paths.CountiesPNG); err != nil {
		return nil, err
	}
	return m, nil
}

// Analyze computes lengths, the county join, and the per-county clip, then
// writes the clipped table.
func (p *Pipeline) Analyze(ctx context.Context, set *layer.Set) (*spatial.Result, error) {
	res, err := spatial.Analyze(ctx, set.Rivers, set.Counties)
	if err != nil {
		return nil, err
	}
	if err := spatial.WriteCSV(p.paths.ClippedCSV, res.Clipped); err != nil {
		return nil, err
	}
	return res, nil
}

// Population reloads the population layer in its native coordinates and
// draws the choropleth. Coordinates are drawn as stored; a warning is logged
// when they are not already in the target CRS.
func (p *Pipeline) Population(ctx context.Context) (*render.Choropleth, error) {
	log := zap.L().With(zap.String("component", "pipeline.population"))

	path := filepath.Join(p.paths.DataDir, layer.PopulationFile)
	pop, err := layer.LoadNative(ctx, path)
	if err != nil {
		return nil, err
	}

	same, err := layer.MatchesTarget(path, pop)
	if err != nil {
		return nil, err
	}
	if !same {
		log.Warn("population layer is not in the target CRS; drawing native coordinates",
			zap.String("path", path),
			zap.String("target", layer.TargetCRS),
		)
	}

	ch, err := render.DrawChoropleth(ctx, pop)
	if err != nil {
		return nil, err
	}
	if err := ch.SavePNG(p.paths.PopulationPNG); err != nil {
		return nil, err
	}
	return ch, nil
}
