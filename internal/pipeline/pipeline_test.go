package pipeline

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/iceland-maps/internal/config"
	"github.com/sells-group/iceland-maps/internal/layer"
	"github.com/sells-group/iceland-maps/internal/layer/layertest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	data := filepath.Join(root, "Iceland")
	require.NoError(t, os.MkdirAll(data, 0o755))
	layertest.Iceland(t, data)

	return &config.Config{
		Paths: config.PathsConfig{
			DataDir:       data,
			CountiesPNG:   filepath.Join(root, "Iceland_counties.png"),
			PopulationPNG: filepath.Join(root, "Iceland_population.png"),
			ClippedCSV:    filepath.Join(data, "Clipped.csv"),
		},
	}
}

func TestRun_ProducesOutputs(t *testing.T) {
	cfg := testConfig(t)

	res, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Phases, 5)
	for _, ph := range res.Phases {
		assert.Equal(t, PhaseStatusComplete, ph.Status, ph.Name)
	}
	assert.Equal(t, "load", res.Phases[0].Name)
	assert.Equal(t, "choropleth", res.Phases[4].Name)

	for _, path := range []string{cfg.Paths.CountiesPNG, cfg.Paths.PopulationPNG, cfg.Paths.ClippedCSV} {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Positive(t, info.Size(), path)
	}

	assert.Equal(t, 4, res.Reference.Legend.Len())
	assert.InDelta(t, 250000.0, res.Analysis.Summary.TotalLengthM, 1e-6)
	assert.InDelta(t, 200000.0, res.Analysis.Summary.RiverLengthM, 1e-6)
	assert.Equal(t, 3, res.Analysis.Summary.ClippedRows)
	assert.InDelta(t, 250000.0, res.Analysis.Summary.ClipLengthM, 1e-6)
	assert.Equal(t, 2, res.Choropleth.Filled)
}

func TestRun_ClippedCSV(t *testing.T) {
	cfg := testConfig(t)
	_, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	f, err := os.Open(cfg.Paths.ClippedCSV)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	header := rows[0]
	assert.Equal(t, "", header[0])
	assert.Contains(t, header, "geometry")
	assert.Equal(t, layer.FieldCountyName, header[len(header)-1])
	assert.Equal(t, "vesturland", rows[1][len(header)-1])
	assert.Equal(t, "vesturland", rows[2][len(header)-1])
	assert.Equal(t, "austurland", rows[3][len(header)-1])
}

func TestRun_Idempotent(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	firstPNG, err := os.ReadFile(cfg.Paths.CountiesPNG)
	require.NoError(t, err)
	firstCSV, err := os.ReadFile(cfg.Paths.ClippedCSV)
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.NoError(t, err)
	secondPNG, err := os.ReadFile(cfg.Paths.CountiesPNG)
	require.NoError(t, err)
	secondCSV, err := os.ReadFile(cfg.Paths.ClippedCSV)
	require.NoError(t, err)

	assert.Equal(t, firstPNG, secondPNG)
	assert.Equal(t, firstCSV, secondCSV)
}

func TestRun_MissingLayer(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Paths.DataDir, layer.RoadsFile)))

	res, err := New(cfg).Run(context.Background())
	require.Error(t, err)
	assert.True(t, layer.IsMissingInput(err))
	require.Len(t, res.Phases, 1)
	assert.Equal(t, PhaseStatusFailed, res.Phases[0].Status)

	_, statErr := os.Stat(cfg.Paths.CountiesPNG)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_MissingCSV(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Paths.DataDir, layer.CountiesCSV)))

	res, err := New(cfg).Run(context.Background())
	require.Error(t, err)
	assert.True(t, layer.IsMissingInput(err))
	require.Len(t, res.Phases, 2)
	assert.Equal(t, "inspect", res.Phases[1].Name)
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(cfg).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, res.Phases, 1)
	assert.Equal(t, PhaseStatusFailed, res.Phases[0].Status)
}

func TestInspect(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg)

	set, err := p.LoadLayers(context.Background())
	require.NoError(t, err)

	ins, err := p.Inspect(context.Background(), set)
	require.NoError(t, err)
	assert.Equal(t, []string{"vesturland", "austurland"}, ins.Counties)
	assert.Equal(t, []string{"ID_0", "ISO", "NAME_0", "ID_1", "NAME_1"}, ins.Table.Header)
	assert.Len(t, ins.Table.Rows, 2)

	require.Len(t, ins.Layers, 6)
	for _, li := range ins.Layers {
		assert.Equal(t, layer.TargetCRS, li.CRS, li.Name)
		assert.Positive(t, li.Features, li.Name)
	}
}

func TestPopulation_StandsAlone(t *testing.T) {
	cfg := testConfig(t)

	ch, err := New(cfg).Population(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ch.Filled)

	_, err = os.Stat(cfg.Paths.PopulationPNG)
	assert.NoError(t, err)
}

func TestDescribe(t *testing.T) {
	l := &layer.Layer{Name: "empty", CRS: layer.TargetCRS, Fields: []string{"a"}}
	li := Describe(l)
	assert.Equal(t, "empty", li.Name)
	assert.Equal(t, 0, li.Features)
	assert.Equal(t, [4]float64{}, li.Bounds)
}
