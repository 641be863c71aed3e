package palette

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// ErrExtractFailed indicates adaptive palette extraction produced no
// usable colors (empty or fully transparent input).
var ErrExtractFailed = errors.New("palette extraction failed")

// maxSamples bounds the number of pixels fed to kmeans; larger images
// are subsampled on a regular grid to keep clustering tractable.
const maxSamples = 12000

// ExtractKMeans derives a k-color palette from an image by clustering
// its pixels in CIE Lab space and taking the cluster centers.
//
// This is the adaptive alternative to a fixed hardware color table: the
// resulting Palette feeds the same quantizer, but its values are chosen
// per image. Clustering seeds randomly, so two runs over the same image
// may produce slightly different palettes; entries are sorted darkest
// first so at least the ordering is stable.
func ExtractKMeans(img image.Image, k int) (*Palette, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: requested %d colors", ErrExtractFailed, k)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrExtractFailed)
	}

	step := 1
	if w*h > maxSamples {
		step = int(math.Sqrt(float64(w*h)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, maxSamples)
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			l, a, lb := colorful.Color{
				R: float64(r16) / 65535.0,
				G: float64(g16) / 65535.0,
				B: float64(b16) / 65535.0,
			}.Lab()
			dataset = append(dataset, clusters.Coordinates{l, a, lb})
		}
	}
	if len(dataset) == 0 {
		return nil, fmt.Errorf("%w: no opaque pixels", ErrExtractFailed)
	}
	if k > len(dataset) {
		k = len(dataset)
	}

	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil || len(cc) == 0 {
		return nil, fmt.Errorf("%w: kmeans: %v", ErrExtractFailed, err)
	}

	out := make([]Color, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Lab(c.Center[0], c.Center[1], c.Center[2]).Clamped()
		r, g, bb := col.RGB255()
		out = append(out, Color{R: r, G: g, B: bb})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: kmeans produced no centers", ErrExtractFailed)
	}
	sortByBrightness(out)
	return &Palette{colors: out}, nil
}

// ExtractDominant derives a k-color palette from an image's dominant
// colors. Deterministic, unlike ExtractKMeans, but tends to pick less
// diverse entries on images with one overwhelming hue.
func ExtractDominant(img image.Image, k int) (*Palette, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: requested %d colors", ErrExtractFailed, k)
	}
	found := dominantcolor.FindWeight(img, k)
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: no dominant colors found", ErrExtractFailed)
	}
	out := make([]Color, 0, len(found))
	for _, c := range found {
		out = append(out, Color{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B})
	}
	// FindWeight returns candidates strongest first; keep the k heaviest.
	if len(out) > k {
		out = out[:k]
	}
	sortByBrightness(out)
	return &Palette{colors: out}, nil
}

// sortByBrightness orders colors darkest to brightest by linear-RGB
// luminance, so entry 0 is the background/outline candidate.
func sortByBrightness(colors []Color) {
	sort.SliceStable(colors, func(i, j int) bool {
		return luminance(colors[i]) < luminance(colors[j])
	})
}

func luminance(c Color) float64 {
	r, g, b := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
