package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/epaper-convert/internal/batch"
	"github.com/ironsheep/epaper-convert/internal/palette"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Fprintln(os.Stderr, "epaper-convert - convert photos to fixed-palette e-paper images")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage: epaper-convert [options] <input> [output-base]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "  <input> is an image file or a directory. A file produces a set of")
	fmt.Fprintln(os.Stderr, "  800x480 crops plus a forced-resize variant, named from [output-base]")
	fmt.Fprintln(os.Stderr, "  (default: the input name without extension). A directory converts")
	fmt.Fprintln(os.Stderr, "  every JPEG/PNG inside it to numbered BMPs (1.bmp, 2.bmp, ...).")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Options:")
	flag.PrintDefaults()
}

func main() {
	// Handle --version before flag parsing so it works without any
	// other arguments.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("epaper-convert %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		}
	}

	palettePath := flag.String("palette", "N-color.act", "path to the binary color table (.act)")
	width := flag.Int("width", 800, "target canvas width")
	height := flag.Int("height", 480, "target canvas height")
	dither := flag.Bool("dither", true, "apply Floyd-Steinberg dithering")
	stylized := flag.Bool("stylize", false, "render the stained-glass variant (first 8 palette colors)")
	metric := flag.String("metric", "rgb", "color distance space: rgb or lab")
	adaptive := flag.String("adaptive", "", "derive the palette per image: kmeans or dominant")
	colors := flag.Int("colors", 8, "palette size for adaptive modes")
	flag.Usage = usage
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime)

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	cfg := batch.DefaultConfig()
	cfg.PalettePath = *palettePath
	cfg.TargetWidth = *width
	cfg.TargetHeight = *height
	cfg.Metric = palette.ParseMetric(*metric)
	cfg.Dither = *dither
	cfg.Stylize = *stylized
	cfg.AdaptiveMode = *adaptive
	cfg.AdaptiveColors = *colors

	proc, err := batch.NewProcessor(cfg)
	if err != nil {
		log.Fatalf("setup failed: %v", err)
	}

	info, err := os.Stat(input)
	if err != nil {
		log.Fatalf("cannot read input: %v", err)
	}

	var written []string
	if info.IsDir() {
		written, err = proc.ProcessDir(input)
	} else {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		if flag.NArg() >= 2 {
			out := flag.Arg(1)
			base = strings.TrimSuffix(out, filepath.Ext(out))
		}
		written, err = proc.ProcessImage(input, base)
	}
	if err != nil {
		log.Fatalf("conversion failed: %v", err)
	}
	for _, path := range written {
		log.Printf("wrote %s", path)
	}
}
