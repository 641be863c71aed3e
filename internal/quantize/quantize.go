// Package quantize maps image pixels onto their nearest palette
// entries, either directly or with Floyd-Steinberg error diffusion.
package quantize

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/epaper-convert/internal/palette"
)

// ErrEmptyPalette indicates a nearest-color search against a palette
// with zero entries.
var ErrEmptyPalette = errors.New("empty palette")

// Nearest returns the index and value of the palette entry closest to c
// under the projected metric.
//
// The full palette is scanned; on exact distance ties the lowest index
// (first occurrence in file order) wins. This tie-break is a contract,
// not an accident: it makes output reproducible regardless of how the
// search is scheduled.
func Nearest(c palette.Color, pal *palette.Projected) (int, palette.Color, error) {
	if pal.Len() == 0 {
		return 0, palette.Color{}, ErrEmptyPalette
	}
	idx := nearest(pal, pal.Metric().Convert(float64(c.R), float64(c.G), float64(c.B)))
	return idx, pal.Palette().At(idx), nil
}

// nearest is the hot loop: linear scan for the minimum squared distance.
// Strict less-than keeps the lowest index on ties.
func nearest(pal *palette.Projected, pt [3]float64) int {
	points := pal.Points()
	best := 0
	bestDist := distSq(pt, points[0])
	for i := 1; i < len(points); i++ {
		if d := distSq(pt, points[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func distSq(a, b [3]float64) float64 {
	d0 := a[0] - b[0]
	d1 := a[1] - b[1]
	d2 := a[2] - b[2]
	return d0*d0 + d1*d1 + d2*d2
}

// Direct replaces every pixel with its nearest palette entry.
//
// Pixels are independent in this mode, so quantizing an already
// quantized image is a no-op: palette entries are fixed points of the
// nearest-color search. The buffer is mutated in place and returned.
func Direct(img *image.NRGBA, pal *palette.Projected) (*image.NRGBA, error) {
	if pal.Len() == 0 {
		return nil, fmt.Errorf("direct quantization: %w", ErrEmptyPalette)
	}
	metric := pal.Metric()
	p := pal.Palette()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			o := x * 4
			idx := nearest(pal, metric.Convert(float64(row[o]), float64(row[o+1]), float64(row[o+2])))
			c := p.At(idx)
			row[o], row[o+1], row[o+2], row[o+3] = c.R, c.G, c.B, 0xFF
		}
	}
	return img, nil
}

// Floyd-Steinberg kernel weights in sixteenths. The accumulators store
// error in sixteenths too, so diffusion stays in integer arithmetic.
const (
	fsRight      = 7
	fsBelowLeft  = 3
	fsBelow      = 5
	fsBelowRight = 1
)

// FloydSteinberg quantizes with error diffusion.
//
// Pixels are processed in row-major order, left to right, top to
// bottom; the order is load-bearing because each pixel's effective
// color includes residual error diffused from earlier pixels. Per
// pixel:
//
//  1. effective = original + accumulated error (NOT clamped: the
//     nearest search must see the signed intermediate to preserve
//     error fidelity, so accumulators are int32)
//  2. the nearest palette entry to the effective color is written out
//  3. residual = effective minus chosen, split 7/16 right, 3/16
//     below-left, 5/16 below, 1/16 below-right; shares that would land
//     outside the image are dropped, not redistributed
//
// The output buffer only ever holds exact palette values; effective
// colors live in the accumulators, never in the image. Mutates img in
// place and returns it.
func FloydSteinberg(img *image.NRGBA, pal *palette.Projected) (*image.NRGBA, error) {
	if pal.Len() == 0 {
		return nil, fmt.Errorf("dithered quantization: %w", ErrEmptyPalette)
	}
	metric := pal.Metric()
	p := pal.Palette()
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	// Two rows of per-channel error, in sixteenths.
	curr := make([]int32, w*3)
	next := make([]int32, w*3)

	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			o := x * 4
			e := x * 3
			effR := int32(row[o]) + curr[e]/16
			effG := int32(row[o+1]) + curr[e+1]/16
			effB := int32(row[o+2]) + curr[e+2]/16

			idx := nearest(pal, metric.Convert(float64(effR), float64(effG), float64(effB)))
			c := p.At(idx)
			row[o], row[o+1], row[o+2], row[o+3] = c.R, c.G, c.B, 0xFF

			resR := effR - int32(c.R)
			resG := effG - int32(c.G)
			resB := effB - int32(c.B)

			if x+1 < w {
				curr[e+3] += resR * fsRight
				curr[e+4] += resG * fsRight
				curr[e+5] += resB * fsRight
			}
			if y+1 < h {
				if x > 0 {
					next[e-3] += resR * fsBelowLeft
					next[e-2] += resG * fsBelowLeft
					next[e-1] += resB * fsBelowLeft
				}
				next[e] += resR * fsBelow
				next[e+1] += resG * fsBelow
				next[e+2] += resB * fsBelow
				if x+1 < w {
					next[e+3] += resR * fsBelowRight
					next[e+4] += resG * fsBelowRight
					next[e+5] += resB * fsBelowRight
				}
			}
		}
		curr, next = next, curr
		for i := range next {
			next[i] = 0
		}
	}
	return img, nil
}
