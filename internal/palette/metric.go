package palette

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Metric selects the color space in which nearest-color distances are
// computed. It is a ranking device only: distances order candidates but
// carry no absolute meaning, and the choice of metric never changes
// which behaviors are correct, only which palette entry looks closest.
type Metric int

const (
	// MetricRGB ranks by squared Euclidean distance on the native
	// 8-bit channels. Cheap and sufficient for palettes up to 256
	// entries.
	MetricRGB Metric = iota

	// MetricLab converts both colors to CIE Lab and ranks by squared
	// Euclidean distance there, which tracks perceived color
	// difference better than raw RGB.
	MetricLab
)

func (m Metric) String() string {
	switch m {
	case MetricLab:
		return "lab"
	default:
		return "rgb"
	}
}

// ParseMetric maps a configuration string to a Metric.
// Unknown values fall back to MetricRGB.
func ParseMetric(s string) Metric {
	if s == "lab" {
		return MetricLab
	}
	return MetricRGB
}

// Convert maps raw channel values into the metric's distance space.
//
// Channel values may fall outside [0,255] during error diffusion; the
// conversion accepts them as-is so that signed error fidelity is
// preserved through the nearest-color search.
func (m Metric) Convert(r, g, b float64) [3]float64 {
	if m == MetricLab {
		l, a, bb := colorful.Color{R: r / 255, G: g / 255, B: b / 255}.Lab()
		return [3]float64{l, a, bb}
	}
	return [3]float64{r, g, b}
}

// Projected is a palette whose entries have been pre-converted into a
// metric's distance space. Nearest-color search is the hot loop of
// quantization; projecting once per job avoids re-converting every
// palette entry for every pixel.
type Projected struct {
	pal    *Palette
	metric Metric
	points [][3]float64
}

// Project converts every entry into m's distance space once.
func (p *Palette) Project(m Metric) *Projected {
	pts := make([][3]float64, len(p.colors))
	for i, c := range p.colors {
		pts[i] = m.Convert(float64(c.R), float64(c.G), float64(c.B))
	}
	return &Projected{pal: p, metric: m, points: pts}
}

// Palette returns the underlying palette.
func (p *Projected) Palette() *Palette { return p.pal }

// Metric returns the metric the entries were projected with.
func (p *Projected) Metric() Metric { return p.metric }

// Len returns the number of entries.
func (p *Projected) Len() int { return len(p.points) }

// Points returns the projected entries in palette order.
// The slice is shared; callers must treat it as read-only.
func (p *Projected) Points() [][3]float64 { return p.points }
