// Package layout computes crop plans: the set of target-canvas
// rectangles a source image of arbitrary aspect ratio is mapped onto.
//
// The plan is purely geometric. It never touches pixel data; callers
// feed each entry to a resize/crop primitive and quantize the results
// independently.
package layout

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimensions indicates a non-positive source or target
// dimension.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// Crop window labels in ascending vertical-offset order. When offsets
// collapse (short slide range), labels are assigned by position from
// the front of this list.
var cropLabels = [4]string{"top", "upper", "lower", "bottom"}

// ResizedLabel names the forced-resize entry appended after the crop
// windows of a tall-enough image.
const ResizedLabel = "resized"

// Entry is one output rectangle of a crop plan. Every entry is exactly
// the target canvas size.
type Entry struct {
	// Label distinguishes sibling outputs ("top", "upper", ...,
	// "resized"). Empty for a plan with a single output.
	Label string `json:"label,omitempty"`

	// X, Y locate the crop window inside the proportionally resized
	// image. Always zero for forced-resize entries.
	X int `json:"x"`
	Y int `json:"y"`

	// Width, Height are always the target canvas dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Forced marks a non-proportional resize instead of a crop window.
	Forced bool `json:"forced,omitempty"`

	// FromOriginal marks a forced resize sourced from the original
	// image (the too-short case) rather than the proportional resize.
	FromOriginal bool `json:"from_original,omitempty"`
}

// CropPlan is the ordered set of rectangles derived from one source
// image. Crop entries come first, sorted by ascending vertical offset,
// followed by at most one forced-resize entry.
type CropPlan struct {
	// SourceWidth, SourceHeight echo the planner input.
	SourceWidth  int `json:"source_width"`
	SourceHeight int `json:"source_height"`

	// ScaledWidth, ScaledHeight are the proportional resize dimensions
	// (width pinned to the target, height scaled to preserve aspect).
	// Crop entries index into an image of this size.
	ScaledWidth  int `json:"scaled_width"`
	ScaledHeight int `json:"scaled_height"`

	Entries []Entry `json:"entries"`
}

// Crops returns the crop-window entries, excluding forced resizes.
func (p *CropPlan) Crops() []Entry {
	out := make([]Entry, 0, len(p.Entries))
	for _, e := range p.Entries {
		if !e.Forced {
			out = append(out, e)
		}
	}
	return out
}

// Plan derives the crop plan for fitting a srcW×srcH image onto a
// dstW×dstH canvas.
//
// The proportional resize pins width to dstW and scales height to
// round(srcH·dstW/srcW). Two cases follow:
//
// Tall enough (proportional height ≥ dstH): the crop window can slide
// vertically over yMax = proportionalHeight - dstH pixels. Windows are
// placed at offsets {0, yMax/3, 2·yMax/3, yMax} (rounded), deduplicated
// in ascending order; when yMax is 0 all four collapse to a single
// window. A forced resize of the proportionally resized image down to
// exactly dstW×dstH is appended as one extra "resized" entry.
//
// Too short (proportional height < dstH): no crop can cover the canvas;
// the plan is a single forced resize of the original image, with an
// empty label so the caller names the lone output without a suffix.
//
// Every returned entry is exactly dstW×dstH. Fails with
// ErrInvalidDimensions if any argument is not positive.
func Plan(srcW, srcH, dstW, dstH int) (*CropPlan, error) {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return nil, fmt.Errorf("%w: source %dx%d, target %dx%d",
			ErrInvalidDimensions, srcW, srcH, dstW, dstH)
	}

	scaledH := int(math.Round(float64(srcH) * float64(dstW) / float64(srcW)))
	plan := &CropPlan{
		SourceWidth:  srcW,
		SourceHeight: srcH,
		ScaledWidth:  dstW,
		ScaledHeight: scaledH,
	}

	if scaledH < dstH {
		plan.Entries = []Entry{{
			Width:        dstW,
			Height:       dstH,
			Forced:       true,
			FromOriginal: true,
		}}
		return plan, nil
	}

	yMax := scaledH - dstH
	offsets := dedupeAscending([]int{
		0,
		int(math.Round(float64(yMax) / 3)),
		int(math.Round(2 * float64(yMax) / 3)),
		yMax,
	})

	for i, y := range offsets {
		label := cropLabels[i]
		if len(offsets) == 1 {
			label = ""
		}
		plan.Entries = append(plan.Entries, Entry{
			Label:  label,
			Y:      y,
			Width:  dstW,
			Height: dstH,
		})
	}
	plan.Entries = append(plan.Entries, Entry{
		Label:  ResizedLabel,
		Width:  dstW,
		Height: dstH,
		Forced: true,
	})
	return plan, nil
}

// dedupeAscending removes duplicates from an already ascending list.
func dedupeAscending(vals []int) []int {
	out := vals[:1]
	for _, v := range vals[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
