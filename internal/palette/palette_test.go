package palette

import (
	"errors"
	"testing"
)

// buildACT builds a synthetic color table where entry i is (i, i, i),
// optionally padded with trailing metadata bytes.
func buildACT(entries int, trailing []byte) []byte {
	data := make([]byte, 0, entries*3+len(trailing))
	for i := 0; i < entries; i++ {
		data = append(data, byte(i), byte(i), byte(i))
	}
	return append(data, trailing...)
}

func TestLoad_FullTable(t *testing.T) {
	pal, err := Load(buildACT(256, nil))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if pal.Len() != 256 {
		t.Fatalf("Len: got %d, want 256", pal.Len())
	}
	for _, i := range []int{0, 1, 127, 255} {
		want := Color{R: uint8(i), G: uint8(i), B: uint8(i)}
		if got := pal.At(i); got != want {
			t.Errorf("entry %d: got %v, want %v", i, got, want)
		}
	}
}

func TestLoad_LegacyTable(t *testing.T) {
	// 772-byte variant: same 256 colors, 4 trailing metadata bytes ignored.
	full, err := Load(buildACT(256, nil))
	if err != nil {
		t.Fatalf("Load(768) failed: %v", err)
	}
	legacy, err := Load(buildACT(256, []byte{0, 8, 0xFF, 0xFF}))
	if err != nil {
		t.Fatalf("Load(772) failed: %v", err)
	}
	if legacy.Len() != 256 {
		t.Fatalf("Len: got %d, want 256", legacy.Len())
	}
	for i := 0; i < 256; i++ {
		if legacy.At(i) != full.At(i) {
			t.Fatalf("entry %d differs between 768 and 772 byte tables", i)
		}
	}
}

func TestLoad_SmallPalette(t *testing.T) {
	pal, err := Load([]byte{
		0, 0, 0,
		255, 255, 255,
		255, 0, 0,
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if pal.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", pal.Len())
	}
	if got := pal.At(2); got != (Color{R: 255}) {
		t.Errorf("entry 2: got %v, want {255 0 0}", got)
	}
}

func TestLoad_InvalidFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"767 bytes", buildACT(255, []byte{1, 2})},
		{"one byte", []byte{42}},
		{"not multiple of three", []byte{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.data)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("got %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	pal, err := Load(buildACT(16, nil))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	t.Run("larger palette truncates to first k", func(t *testing.T) {
		got, err := pal.Truncate(8)
		if err != nil {
			t.Fatalf("Truncate failed: %v", err)
		}
		if got.Len() != 8 {
			t.Fatalf("Len: got %d, want 8", got.Len())
		}
		for i := 0; i < 8; i++ {
			if got.At(i) != pal.At(i) {
				t.Errorf("entry %d reordered by truncation", i)
			}
		}
	})

	t.Run("exact size is unchanged", func(t *testing.T) {
		got, err := pal.Truncate(16)
		if err != nil {
			t.Fatalf("Truncate failed: %v", err)
		}
		if got != pal {
			t.Error("Truncate to exact size should return the same palette")
		}
	})

	t.Run("too few entries fails", func(t *testing.T) {
		if _, err := pal.Truncate(17); !errors.Is(err, ErrTooSmall) {
			t.Errorf("got %v, want ErrTooSmall", err)
		}
	})

	t.Run("non-positive k fails", func(t *testing.T) {
		if _, err := pal.Truncate(0); !errors.Is(err, ErrTooSmall) {
			t.Errorf("got %v, want ErrTooSmall", err)
		}
	})
}

func TestFromColors_Copies(t *testing.T) {
	src := []Color{{R: 1}, {G: 2}}
	pal := FromColors(src)
	src[0] = Color{R: 99}
	if pal.At(0) != (Color{R: 1}) {
		t.Error("FromColors must copy its input")
	}
}

func TestColorHex(t *testing.T) {
	tests := []struct {
		color Color
		want  string
	}{
		{Color{}, "#000000"},
		{Color{R: 255, G: 255, B: 255}, "#FFFFFF"},
		{Color{R: 255, G: 128, B: 64}, "#FF8040"},
	}
	for _, tt := range tests {
		if got := tt.color.Hex(); got != tt.want {
			t.Errorf("Hex(%v): got %s, want %s", tt.color, got, tt.want)
		}
	}
}
