package palette

import (
	"math"
	"testing"
)

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in   string
		want Metric
	}{
		{"rgb", MetricRGB},
		{"lab", MetricLab},
		{"", MetricRGB},
		{"nonsense", MetricRGB},
	}
	for _, tt := range tests {
		if got := ParseMetric(tt.in); got != tt.want {
			t.Errorf("ParseMetric(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMetricConvert_RGBIsIdentity(t *testing.T) {
	got := MetricRGB.Convert(12, 200, 255)
	want := [3]float64{12, 200, 255}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMetricConvert_RGBAcceptsOutOfRange(t *testing.T) {
	// Error diffusion produces effective colors outside [0,255]; the
	// conversion must pass them through unclamped.
	got := MetricRGB.Convert(-40, 300, 128)
	want := [3]float64{-40, 300, 128}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMetricConvert_LabKnownValues(t *testing.T) {
	// Black maps to L=0 and white to L=100 (both achromatic: a,b ~ 0).
	black := MetricLab.Convert(0, 0, 0)
	if math.Abs(black[0]) > 0.01 {
		t.Errorf("black L: got %f, want ~0", black[0])
	}
	white := MetricLab.Convert(255, 255, 255)
	if math.Abs(white[0]-1.0) > 0.01 {
		t.Errorf("white L: got %f, want ~1", white[0])
	}
	if math.Abs(white[1]) > 0.01 || math.Abs(white[2]) > 0.01 {
		t.Errorf("white a/b: got %f/%f, want ~0/~0", white[1], white[2])
	}
}

func TestProject(t *testing.T) {
	pal := FromColors([]Color{{}, {R: 255, G: 255, B: 255}, {R: 10, G: 20, B: 30}})

	for _, m := range []Metric{MetricRGB, MetricLab} {
		t.Run(m.String(), func(t *testing.T) {
			proj := pal.Project(m)
			if proj.Len() != pal.Len() {
				t.Fatalf("Len: got %d, want %d", proj.Len(), pal.Len())
			}
			if proj.Metric() != m {
				t.Errorf("Metric: got %v, want %v", proj.Metric(), m)
			}
			if proj.Palette() != pal {
				t.Error("Palette: projection lost its source palette")
			}
			// Projected points must equal converting each entry directly.
			for i := 0; i < pal.Len(); i++ {
				c := pal.At(i)
				want := m.Convert(float64(c.R), float64(c.G), float64(c.B))
				if proj.Points()[i] != want {
					t.Errorf("point %d: got %v, want %v", i, proj.Points()[i], want)
				}
			}
		})
	}
}
