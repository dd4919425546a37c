package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/iceland-maps/internal/layer"
	"github.com/sells-group/iceland-maps/internal/pipeline"
	"github.com/sells-group/iceland-maps/internal/render"
	"github.com/sells-group/iceland-maps/internal/spatial"
)

// formatPhases writes one line per pipeline stage to w.
func formatPhases(out io.Writer, phases []pipeline.PhaseResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PHASE\tSTATUS\tDURATION\tERROR")
	_, _ = fmt.Fprintln(w, "-----\t------\t--------\t-----")
	for _, p := range phases {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%dms\t%s\n", p.Name, p.Status, p.Duration, p.Error)
	}
	_ = w.Flush()
}

// formatCountyStyles writes the county color assignment to w.
func formatCountyStyles(out io.Writer, styles []render.CountyStyle) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COUNTY\tLABEL\tCOLOR")
	_, _ = fmt.Fprintln(w, "------\t-----\t-----")
	for _, s := range styles {
		_, _ = fmt.Fprintf(w, "%s\t%s\t#%02x%02x%02x\n", s.Name, s.Label, s.Color.R, s.Color.G, s.Color.B)
	}
	_ = w.Flush()
}

// formatSummary writes the analysis aggregates to w.
func formatSummary(out io.Writer, s spatial.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total length (m):\t%.1f\n", s.TotalLengthM)
	_, _ = fmt.Fprintf(w, "River length (m):\t%.1f\n", s.RiverLengthM)
	_, _ = fmt.Fprintf(w, "Join rows:\t%d\n", s.JoinRows)
	_, _ = fmt.Fprintf(w, "Join total length (m):\t%.1f\n", s.JoinTotalLengthM)
	_, _ = fmt.Fprintf(w, "Clipped rows:\t%d\n", s.ClippedRows)
	_, _ = fmt.Fprintf(w, "Clip source length (m):\t%.1f\n", s.ClipSourceLengthM)
	_, _ = fmt.Fprintf(w, "Clipped length (m):\t%.1f\n", s.ClipLengthM)
	_ = w.Flush()

	_, _ = fmt.Fprintln(out, "\nLength by type (km)")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, t := range s.LengthByTypeKm {
		_, _ = fmt.Fprintf(w, "  %s\t%.3f\n", t.Type, t.Km)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out, "\nJoined length by county and type (km)")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range s.JoinLengthByCountyTypeKm {
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%.3f\n", c.County, c.Type, c.Km)
	}
	_ = w.Flush()
}

// writeYAML encodes v as YAML to w.
func writeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode yaml")
	}
	return eris.Wrap(enc.Close(), "close yaml encoder")
}

// formatInspection writes layer details, the CSV head and every CSV county
// name to w.
func formatInspection(out io.Writer, ins *pipeline.Inspection, rows int) {
	_, _ = fmt.Fprintf(out, "Unique counties: %d\n\n", len(ins.Counties))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LAYER\tFEATURES\tCRS\tBOUNDS")
	_, _ = fmt.Fprintln(w, "-----\t--------\t---\t------")
	for _, l := range ins.Layers {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%.0f %.0f %.0f %.0f\n",
			l.Name, l.Features, l.CRS, l.Bounds[0], l.Bounds[1], l.Bounds[2], l.Bounds[3])
	}
	_ = w.Flush()

	if ins.Table == nil {
		return
	}
	_, _ = fmt.Fprintf(out, "\nISL_adm1.csv (%d rows)\n", len(ins.Table.Rows))
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(ins.Table.Header, "\t"))
	for _, r := range ins.Table.Head(rows) {
		_, _ = fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	_ = w.Flush()

	if names := ins.Table.Column(layer.FieldCountyName); names != nil {
		_, _ = fmt.Fprintf(out, "\n%s: %s\n", layer.FieldCountyName, strings.Join(names, ", "))
	}
}
