package layer

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Source file names inside the data directory.
const (
	RoadsFile      = "roads.shp"
	WaterwaysFile  = "waterways.shp"
	PointsFile     = "points.shp"
	CountiesFile   = "ISL_adm1.shp"
	PopulationFile = "population.shp"
	OutlineFile    = "ISL_adm0.shp"
	CountiesCSV    = "ISL_adm1.csv"
)

// Set holds the six layers the pipeline works on, all in the target CRS.
type Set struct {
	Roads      *Layer
	Rivers     *Layer
	Points     *Layer
	Counties   *Layer
	Population *Layer
	Outline    *Layer
}

// LoadSet loads and reprojects the six source layers from dir. The first
// failure is returned; no partial set is produced.
func LoadSet(ctx context.Context, dir string) (*Set, error) {
	log := zap.L().With(zap.String("component", "layer.loader"), zap.String("dir", dir))

	var s Set
	targets := []struct {
		file string
		dst  **Layer
	}{
		{RoadsFile, &s.Roads},
		{WaterwaysFile, &s.Rivers},
		{PointsFile, &s.Points},
		{CountiesFile, &s.Counties},
		{PopulationFile, &s.Population},
		{OutlineFile, &s.Outline},
	}

	for _, t := range targets {
		l, err := Load(ctx, filepath.Join(dir, t.file))
		if err != nil {
			return nil, eris.Wrapf(err, "layer: load %s", t.file)
		}
		*t.dst = l
	}

	log.Info("layers loaded",
		zap.Int("roads", s.Roads.Len()),
		zap.Int("rivers", s.Rivers.Len()),
		zap.Int("points", s.Points.Len()),
		zap.Int("counties", s.Counties.Len()),
		zap.Int("population", s.Population.Len()),
		zap.Int("outline", s.Outline.Len()),
		zap.String("crs", TargetCRS),
	)
	return &s, nil
}

// All returns the layers in load order.
func (s *Set) All() []*Layer {
	return []*Layer{s.Roads, s.Rivers, s.Points, s.Counties, s.Population, s.Outline}
}
