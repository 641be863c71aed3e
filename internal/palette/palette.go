package palette

import (
	"errors"
	"fmt"
	"os"
)

// Sentinel errors returned by palette loading and constraint checks.
// Callers should test them with errors.Is; the returned errors carry
// additional context (byte lengths, entry counts) in their messages.
var (
	// ErrInvalidFormat indicates the palette file length is unsupported.
	ErrInvalidFormat = errors.New("invalid palette format")

	// ErrTooSmall indicates the palette has fewer entries than a
	// consumer requires (see Palette.Truncate).
	ErrTooSmall = errors.New("palette has too few entries")
)

// Color is an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255. Palette entries and quantized
// pixel values are always exact Color values; perceptual representations
// are used only transiently for distance computation.
type Color struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex returns the color in "#RRGGBB" form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Palette is an immutable, ordered set of allowed output colors.
//
// The index of an entry is its palette index: entry i came from bytes
// [3i, 3i+3) of the source color table, and indexed-color output refers
// to entries by this position. Entries never reorder after loading.
type Palette struct {
	colors []Color
}

// Adobe color table (.act) sizes. A full table is 256 RGB triples;
// the legacy variant appends 4 bytes of metadata (color count and
// transparency index) which this loader discards.
const (
	actTableSize  = 768
	actLegacySize = 772
)

// Load parses a binary color table into a Palette.
//
// Accepted layouts:
//   - exactly 768 bytes: 256 RGB triples in file order
//   - exactly 772 bytes: as above, with 4 trailing metadata bytes ignored
//   - any other length that is a positive multiple of 3: a small palette
//     of length/3 entries (hardware palettes are often 7 or 8 colors)
//
// Any other length fails with ErrInvalidFormat. The parse is pure: the
// input slice is copied and never retained.
func Load(data []byte) (*Palette, error) {
	switch {
	case len(data) == actLegacySize:
		data = data[:actTableSize]
	case len(data) == actTableSize:
		// Full 256-entry table.
	case len(data) > 0 && len(data)%3 == 0:
		// Small palette variant.
	default:
		return nil, fmt.Errorf("%w: %d bytes (want 768, 772, or a positive multiple of 3)",
			ErrInvalidFormat, len(data))
	}

	colors := make([]Color, len(data)/3)
	for i := range colors {
		colors[i] = Color{R: data[3*i], G: data[3*i+1], B: data[3*i+2]}
	}
	return &Palette{colors: colors}, nil
}

// LoadFile reads a color table file and parses it with Load.
func LoadFile(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read palette file: %w", err)
	}
	pal, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pal, nil
}

// FromColors builds a Palette from an explicit color list.
// The slice is copied; entries keep their given order.
func FromColors(colors []Color) *Palette {
	p := &Palette{colors: make([]Color, len(colors))}
	copy(p.colors, colors)
	return p
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	return len(p.colors)
}

// At returns entry i. The caller must keep i within [0, Len()).
func (p *Palette) At(i int) Color {
	return p.colors[i]
}

// Colors returns a copy of the entries in palette order.
func (p *Palette) Colors() []Color {
	out := make([]Color, len(p.colors))
	copy(out, p.colors)
	return out
}

// Truncate constrains the palette to exactly k entries.
//
// Consumers that require a fixed palette size (the stained-glass
// renderer requires exactly 8 colors) apply this once after loading:
//
//   - fewer than k entries fails with ErrTooSmall
//   - more than k entries truncates deterministically to the first k
//   - exactly k entries returns the palette unchanged
//
// Truncation keeps file order, so the result is reproducible for a
// given color table. Callers that need every entry must not truncate.
func (p *Palette) Truncate(k int) (*Palette, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: requested %d entries", ErrTooSmall, k)
	}
	if len(p.colors) < k {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrTooSmall, len(p.colors), k)
	}
	if len(p.colors) == k {
		return p, nil
	}
	return &Palette{colors: p.colors[:k:k]}, nil
}
