package feed

import (
	"math"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// ParsePoint extracts longitude and latitude from a WKT point like "POINT (-114.08 51.05)".
// ok is false for anything that is not a non-empty two-dimensional point with finite coordinates.
func ParsePoint(s string) (lon, lat float64, ok bool) {
	g, err := wkt.Unmarshal(strings.TrimSpace(s))
	if err != nil {
		return 0, 0, false
	}
	p, isPoint := g.(*geom.Point)
	if !isPoint || p.Empty() || p.Layout() != geom.XY {
		return 0, 0, false
	}
	lon, lat = p.X(), p.Y()
	if !finite(lon) || !finite(lat) {
		return 0, 0, false
	}
	return lon, lat, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
