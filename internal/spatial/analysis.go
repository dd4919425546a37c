package spatial

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/iceland-maps/internal/layer"
)

// Result holds the tables and aggregates produced by Analyze.
type Result struct {
	Joined  *layer.Layer
	Clipped *layer.Layer
	Summary Summary
}

// Analyze computes river lengths, joins counties against rivers, and clips
// rivers by county. rivers gains a Length attribute.
func Analyze(ctx context.Context, rivers, counties *layer.Layer) (*Result, error) {
	log := zap.L().With(zap.String("component", "spatial.analysis"))

	log.Info("checking CRS before join",
		zap.String("rivers", rivers.CRS),
		zap.String("counties", counties.CRS),
	)

	if err := ComputeLengths(rivers); err != nil {
		return nil, eris.Wrap(err, "spatial: compute lengths")
	}

	var res Result
	res.Summary.TotalLengthM = SumLength(rivers)
	res.Summary.RiverLengthM = SumLengthWhere(rivers, layer.FieldType, "river")
	res.Summary.LengthByTypeKm = LengthByTypeKm(rivers)

	log.Info("waterway lengths",
		zap.Float64("total_length_m", res.Summary.TotalLengthM),
		zap.Float64("river_length_m", res.Summary.RiverLengthM),
	)

	joined, err := Join(ctx, counties, rivers)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: join counties with rivers")
	}
	res.Joined = joined
	res.Summary.JoinRows = joined.Len()
	res.Summary.JoinTotalLengthM = SumLength(joined)
	res.Summary.JoinLengthByCountyTypeKm = LengthByCountyTypeKm(joined)

	clipped, err := ClipByCounty(ctx, rivers, counties)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: clip rivers by county")
	}
	res.Clipped = clipped
	res.Summary.ClippedRows = clipped.Len()
	res.Summary.ClipSourceLengthM = SumLength(clipped)
	res.Summary.ClipLengthM = SumClippedLength(clipped)

	log.Info("analysis complete",
		zap.Int("join_rows", res.Summary.JoinRows),
		zap.Float64("join_total_length_m", res.Summary.JoinTotalLengthM),
		zap.Int("clipped_rows", res.Summary.ClippedRows),
		zap.Float64("clip_source_length_m", res.Summary.ClipSourceLengthM),
		zap.Float64("clip_length_m", res.Summary.ClipLengthM),
	)
	return &res, nil
}
