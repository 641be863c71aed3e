package palette

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// halfAndHalf builds an image whose left half is one color and right
// half another.
func halfAndHalf(w, h int, left, right color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, left)
			} else {
				img.Set(x, y, right)
			}
		}
	}
	return img
}

func isSortedDarkToBright(colors []Color) bool {
	for i := 1; i < len(colors); i++ {
		if luminance(colors[i]) < luminance(colors[i-1]) {
			return false
		}
	}
	return true
}

func TestExtractKMeans(t *testing.T) {
	img := halfAndHalf(64, 64,
		color.NRGBA{R: 10, G: 10, B: 10, A: 255},
		color.NRGBA{R: 240, G: 240, B: 240, A: 255})

	pal, err := ExtractKMeans(img, 2)
	if err != nil {
		t.Fatalf("ExtractKMeans failed: %v", err)
	}
	if pal.Len() < 1 || pal.Len() > 2 {
		t.Fatalf("Len: got %d, want 1 or 2", pal.Len())
	}
	if !isSortedDarkToBright(pal.Colors()) {
		t.Error("palette not sorted darkest first")
	}
}

func TestExtractKMeans_InvalidCount(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	if _, err := ExtractKMeans(img, 0); !errors.Is(err, ErrExtractFailed) {
		t.Errorf("got %v, want ErrExtractFailed", err)
	}
}

func TestExtractKMeans_EmptyImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	if _, err := ExtractKMeans(img, 4); !errors.Is(err, ErrExtractFailed) {
		t.Errorf("got %v, want ErrExtractFailed", err)
	}
}

func TestExtractDominant(t *testing.T) {
	img := halfAndHalf(64, 64,
		color.NRGBA{R: 200, G: 30, B: 30, A: 255},
		color.NRGBA{R: 30, G: 30, B: 200, A: 255})

	pal, err := ExtractDominant(img, 4)
	if err != nil {
		t.Fatalf("ExtractDominant failed: %v", err)
	}
	if pal.Len() < 1 || pal.Len() > 4 {
		t.Fatalf("Len: got %d, want 1..4", pal.Len())
	}
	if !isSortedDarkToBright(pal.Colors()) {
		t.Error("palette not sorted darkest first")
	}
}

func TestExtractDominant_InvalidCount(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	if _, err := ExtractDominant(img, -1); !errors.Is(err, ErrExtractFailed) {
		t.Errorf("got %v, want ErrExtractFailed", err)
	}
}
