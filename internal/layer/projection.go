package layer

import (
	"math"
	"os"
	"strings"

	"github.com/ctessum/geom/proj"
	"github.com/rotisserie/eris"
)

// sameCRSTolerance is the largest displacement, in target units, at which two
// references are treated as the same.
const sameCRSTolerance = 1.0

// TargetSR returns the parsed spatial reference of the target CRS.
func TargetSR() (*proj.SR, error) {
	sr, err := proj.Parse(TargetProj4)
	if err != nil {
		return nil, eris.Wrap(err, "layer: parse target projection")
	}
	return sr, nil
}

// readPRJ returns the contents of the .prj next to shpPath.
func readPRJ(shpPath string) (string, error) {
	prjPath := strings.TrimSuffix(shpPath, ".shp") + ".prj"
	data, err := os.ReadFile(prjPath)
	if err != nil {
		return "", eris.Wrapf(err, "layer: read %s", prjPath)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", eris.Errorf("layer: %s is empty", prjPath)
	}
	return text, nil
}

// transformTo builds a coordinate transform from the layer's .prj reference
// into dst. Any failure is a ProjectionError.
func transformTo(shpPath string, dst *proj.SR) (coordFunc, string, error) {
	text, err := readPRJ(shpPath)
	if err != nil {
		return nil, "", &ProjectionError{Path: shpPath, Err: err}
	}
	src, err := proj.Parse(text)
	if err != nil {
		return nil, "", &ProjectionError{Path: shpPath, Err: eris.Wrap(err, "layer: parse .prj")}
	}
	trans, err := src.NewTransform(dst)
	if err != nil {
		return nil, "", &ProjectionError{Path: shpPath, Err: eris.Wrap(err, "layer: build transform")}
	}
	// NewTransform returns a nil transformer when source and target match.
	if trans == nil {
		return identity, text, nil
	}
	return coordFunc(trans), text, nil
}

// MatchesTarget reports whether the layer's native coordinates already lie in
// the target CRS. It reprojects the layer's bounds center from the source
// .prj and compares. Layers without a readable .prj return false.
func MatchesTarget(shpPath string, l *Layer) (bool, error) {
	dst, err := TargetSR()
	if err != nil {
		return false, err
	}
	fn, _, err := transformTo(shpPath, dst)
	if err != nil {
		return false, nil
	}
	xmin, ymin, xmax, ymax := l.Bounds()
	cx, cy := (xmin+xmax)/2, (ymin+ymax)/2
	tx, ty, err := fn(cx, cy)
	if err != nil {
		return false, nil
	}
	return math.Hypot(tx-cx, ty-cy) <= sameCRSTolerance, nil
}
