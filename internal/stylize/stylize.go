// Package stylize renders the "stained glass" variant: an already
// quantized image gets its region boundaries detected and overdrawn in
// the palette's outline color, so flat color fields read as glass panes
// separated by leading.
package stylize

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/epaper-convert/internal/palette"
	"github.com/ironsheep/epaper-convert/internal/quantize"
)

// ErrEmptyImage indicates a zero-area input image.
var ErrEmptyImage = errors.New("empty image")

// Options configures edge detection for the overlay.
type Options struct {
	// ThresholdLow and ThresholdHigh are the hysteresis thresholds on
	// gradient magnitude (0-255 scale). Gradients below Low are
	// discarded; above High are always edges; in between they survive
	// only when connected to a strong edge.
	ThresholdLow  int
	ThresholdHigh int

	// BlurRadius smooths the image before gradient computation, which
	// suppresses speckle edges inside dithered regions. Zero disables
	// the blur.
	BlurRadius float64
}

// DefaultOptions returns the reference thresholds (100/200) with a
// light pre-blur.
func DefaultOptions() Options {
	return Options{ThresholdLow: 100, ThresholdHigh: 200, BlurRadius: 2}
}

// Apply detects edges on a quantized image and overlays them as
// outline pixels, mutating img in place and returning it.
//
// The outline color is not a bare RGB constant: it is the palette entry
// nearest to black under the projected metric, so the result still
// contains only palette values. The mask is dilated by one pass to
// thicken the leading. A uniform image has no gradients, produces an
// empty mask, and comes back unchanged.
func Apply(img *image.NRGBA, pal *palette.Projected, opts Options) (*image.NRGBA, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("stylize: %w", ErrEmptyImage)
	}

	_, outline, err := quantize.Nearest(palette.Color{}, pal)
	if err != nil {
		return nil, fmt.Errorf("stylize: %w", err)
	}

	mask := edgeMask(img, opts)
	dilated := effect.Dilate(mask, 1)

	db := dilated.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < b.Dx(); x++ {
			r, _, _, _ := dilated.At(db.Min.X+x, db.Min.Y+y).RGBA()
			if r>>8 < 128 {
				continue
			}
			o := x * 4
			row[o], row[o+1], row[o+2], row[o+3] = outline.R, outline.G, outline.B, 0xFF
		}
	}
	return img, nil
}

// edgeMask runs Canny edge detection and returns a binary mask with
// edges at 255.
//
// Pipeline: optional Gaussian blur, BT.601 luminance, Sobel gradients,
// non-maximum suppression, double-threshold hysteresis. Border pixels
// use clamped neighbors.
func edgeMask(img image.Image, opts Options) *image.Gray {
	src := img
	if opts.BlurRadius > 0 {
		src = blur.Gaussian(img, opts.BlurRadius)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gray := make([][]float64, height)
	for y := 0; y < height; y++ {
		gray[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := src.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			rf := float64(r>>8) / 255.0
			gf := float64(g>>8) / 255.0
			bf := float64(b>>8) / 255.0
			gray[y][x] = 0.299*rf + 0.587*gf + 0.114*bf
		}
	}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					gx += gray[py][px] * sobelX[ky+1][kx+1]
					gy += gray[py][px] * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression thins ridges to one pixel.
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	mask := image.NewGray(image.Rect(0, 0, width, height))
	lowThresh := float64(opts.ThresholdLow) / 255.0
	highThresh := float64(opts.ThresholdHigh) / 255.0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y][x]
			if val >= highThresh {
				mask.SetGray(x, y, color.Gray{Y: 255})
			} else if val >= lowThresh {
				hasStrongNeighbor := false
				for ky := -1; ky <= 1 && !hasStrongNeighbor; ky++ {
					for kx := -1; kx <= 1 && !hasStrongNeighbor; kx++ {
						py := clamp(y+ky, 0, height-1)
						px := clamp(x+kx, 0, width-1)
						if suppressed[py][px] >= highThresh {
							hasStrongNeighbor = true
						}
					}
				}
				if hasStrongNeighbor {
					mask.SetGray(x, y, color.Gray{Y: 255})
				}
			}
		}
	}
	return mask
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
