// Package batch drives the conversion pipeline: decode, layout
// planning, resampling, quantization, optional stylization, and BMP
// output, for single images or whole directories.
package batch

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"

	"github.com/ironsheep/epaper-convert/internal/layout"
	"github.com/ironsheep/epaper-convert/internal/palette"
	"github.com/ironsheep/epaper-convert/internal/quantize"
	"github.com/ironsheep/epaper-convert/internal/stylize"
)

// ErrEncode indicates an output image could not be written.
var ErrEncode = errors.New("encode failed")

// stainedGlassColors is the palette size the stylized pipeline is
// defined for. Larger tables are truncated to their first 8 entries,
// smaller ones are rejected.
const stainedGlassColors = 8

// Adaptive palette modes. Empty means "use the configured palette
// file"; the other modes derive a palette from each source image.
const (
	AdaptiveOff      = ""
	AdaptiveKMeans   = "kmeans"
	AdaptiveDominant = "dominant"
)

// Config carries every knob of one conversion job. All defaults are
// explicit here rather than ambient process state, so a Processor is
// fully determined by its Config.
type Config struct {
	// PalettePath is the binary color table to quantize against.
	// Ignored when AdaptiveMode is set.
	PalettePath string

	// TargetWidth, TargetHeight define the output canvas.
	TargetWidth  int
	TargetHeight int

	// Metric selects the distance space for nearest-color search.
	Metric palette.Metric

	// Dither enables Floyd-Steinberg error diffusion; when false,
	// pixels are replaced by their nearest palette entry directly.
	Dither bool

	// Stylize enables the stained-glass rendering (8-color palette,
	// edge overlay). Stylized output skips dithering: the effect needs
	// flat regions, not dithered texture.
	Stylize bool

	// StylizeOptions configures edge detection for stylized output.
	StylizeOptions stylize.Options

	// AdaptiveMode derives the palette from each image (AdaptiveKMeans
	// or AdaptiveDominant) instead of loading PalettePath.
	AdaptiveMode string

	// AdaptiveColors is the palette size for adaptive modes.
	AdaptiveColors int
}

// DefaultConfig returns the reference settings: the N-color.act table,
// an 800x480 e-paper canvas, RGB metric, dithering on.
func DefaultConfig() Config {
	return Config{
		PalettePath:    "N-color.act",
		TargetWidth:    800,
		TargetHeight:   480,
		Metric:         palette.MetricRGB,
		Dither:         true,
		StylizeOptions: stylize.DefaultOptions(),
		AdaptiveColors: stainedGlassColors,
	}
}

// Processor converts images according to one Config.
type Processor struct {
	cfg    Config
	loader *Loader
	pal    *palette.Palette // nil in adaptive mode
}

// NewProcessor loads the configured palette (unless an adaptive mode is
// selected) and returns a ready processor.
func NewProcessor(cfg Config) (*Processor, error) {
	if cfg.AdaptiveMode != AdaptiveOff {
		return &Processor{cfg: cfg, loader: NewLoader()}, nil
	}
	pal, err := palette.LoadFile(cfg.PalettePath)
	if err != nil {
		return nil, err
	}
	return NewProcessorWithPalette(cfg, pal)
}

// NewProcessorWithPalette builds a processor against an explicit
// palette, bypassing the palette file.
func NewProcessorWithPalette(cfg Config, pal *palette.Palette) (*Processor, error) {
	if cfg.Stylize {
		var err error
		pal, err = pal.Truncate(stainedGlassColors)
		if err != nil {
			return nil, err
		}
	}
	return &Processor{cfg: cfg, loader: NewLoader(), pal: pal}, nil
}

// ProcessImage converts one source image into its full crop-plan output
// set and returns the written file paths in plan order.
//
// Plan entries share no mutable state (each is cropped or resized into
// a fresh buffer), so they are rendered concurrently, one goroutine per
// entry. The first error aborts the result set; files already written
// by sibling entries are left on disk for the caller to reconcile.
//
// Output naming follows the plan: a single-entry plan writes
// "<base>.bmp"; otherwise each entry writes "<base>_<label>.bmp".
func (p *Processor) ProcessImage(inputPath, outputBase string) ([]string, error) {
	img, err := p.loader.Load(inputPath)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()

	plan, err := layout.Plan(bounds.Dx(), bounds.Dy(), p.cfg.TargetWidth, p.cfg.TargetHeight)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inputPath, err)
	}

	proj, err := p.projectedPalette(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inputPath, err)
	}

	// Crop windows index into the proportional resize; materialize it
	// once and share it read-only across entries.
	var scaled *image.NRGBA
	if plan.ScaledHeight >= p.cfg.TargetHeight {
		scaled = imaging.Resize(img, plan.ScaledWidth, plan.ScaledHeight, imaging.Lanczos)
	}

	outputs := make([]string, len(plan.Entries))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, entry := range plan.Entries {
		wg.Add(1)
		go func(i int, entry layout.Entry) {
			defer wg.Done()
			outPath := entryPath(outputBase, entry, len(plan.Entries))
			if err := p.renderEntry(img, scaled, entry, proj, outPath); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			outputs[i] = outPath
		}(i, entry)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return outputs, nil
}

// ProcessDir converts every JPEG/PNG in dir, writing numbered outputs
// (1.bmp, 2.bmp, ...) alongside the sources. Each image is force
// resized straight to the target canvas; no crop plans are generated in
// directory mode.
func (p *Processor) ProcessDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var outputs []string
	for i, name := range names {
		img, err := p.loader.Load(filepath.Join(dir, name))
		if err != nil {
			return outputs, err
		}
		proj, err := p.projectedPalette(img)
		if err != nil {
			return outputs, fmt.Errorf("%s: %w", name, err)
		}

		buf := imaging.Resize(img, p.cfg.TargetWidth, p.cfg.TargetHeight, imaging.Lanczos)
		if err := p.finish(buf, proj); err != nil {
			return outputs, fmt.Errorf("%s: %w", name, err)
		}

		outPath := filepath.Join(dir, fmt.Sprintf("%d.bmp", i+1))
		if err := writeBMP(outPath, buf); err != nil {
			return outputs, err
		}
		outputs = append(outputs, outPath)
		p.loader.Evict(filepath.Join(dir, name))
	}
	return outputs, nil
}

// projectedPalette resolves the palette for one source image (fixed
// table or adaptive extraction) and projects it into metric space.
func (p *Processor) projectedPalette(img image.Image) (*palette.Projected, error) {
	pal := p.pal
	var err error
	switch p.cfg.AdaptiveMode {
	case AdaptiveOff:
	case AdaptiveKMeans:
		pal, err = palette.ExtractKMeans(img, p.cfg.AdaptiveColors)
	case AdaptiveDominant:
		pal, err = palette.ExtractDominant(img, p.cfg.AdaptiveColors)
	default:
		err = fmt.Errorf("unknown adaptive mode %q", p.cfg.AdaptiveMode)
	}
	if err != nil {
		return nil, err
	}
	return pal.Project(p.cfg.Metric), nil
}

// renderEntry materializes one plan entry into a fresh buffer,
// quantizes it and writes it out.
func (p *Processor) renderEntry(img, scaled *image.NRGBA, entry layout.Entry, proj *palette.Projected, outPath string) error {
	var buf *image.NRGBA
	switch {
	case entry.Forced && entry.FromOriginal:
		buf = imaging.Resize(img, entry.Width, entry.Height, imaging.Lanczos)
	case entry.Forced:
		buf = imaging.Resize(scaled, entry.Width, entry.Height, imaging.Lanczos)
	default:
		buf = imaging.Crop(scaled, image.Rect(entry.X, entry.Y, entry.X+entry.Width, entry.Y+entry.Height))
	}

	if err := p.finish(buf, proj); err != nil {
		return err
	}
	return writeBMP(outPath, buf)
}

// finish applies quantization and optional stylization in place.
func (p *Processor) finish(buf *image.NRGBA, proj *palette.Projected) error {
	var err error
	if p.cfg.Dither && !p.cfg.Stylize {
		_, err = quantize.FloydSteinberg(buf, proj)
	} else {
		_, err = quantize.Direct(buf, proj)
	}
	if err != nil {
		return err
	}
	if p.cfg.Stylize {
		if _, err := stylize.Apply(buf, proj, p.cfg.StylizeOptions); err != nil {
			return err
		}
	}
	return nil
}

// entryPath names one output file from the plan entry's label.
func entryPath(base string, entry layout.Entry, planSize int) string {
	if planSize == 1 || entry.Label == "" {
		return base + ".bmp"
	}
	return base + "_" + entry.Label + ".bmp"
}

// writeBMP encodes a quantized buffer as 24-bit BMP. The buffer is
// fully opaque by construction, which is what keeps the encoder on the
// 24-bit path.
func writeBMP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, path, err)
	}
	defer f.Close()

	if err := bmp.Encode(f, img); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, path, err)
	}
	return nil
}
