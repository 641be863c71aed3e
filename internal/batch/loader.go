package batch

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
)

// ErrDecode indicates an input image could not be opened or decoded.
var ErrDecode = errors.New("decode failed")

// Loader caches decoded source images so a multi-crop job reads each
// input from disk once.
//
// Decoded images are stored as NRGBA working buffers keyed by path.
// Loader is safe for concurrent use. Cached buffers are shared: the
// pipeline never mutates them, it always resizes or crops into fresh
// buffers first. Entries stay cached until Evict or Clear.
type Loader struct {
	mu     sync.RWMutex
	images map[string]*image.NRGBA
}

// NewLoader returns an empty, ready-to-use loader.
func NewLoader() *Loader {
	return &Loader{images: make(map[string]*image.NRGBA)}
}

// Load returns the decoded image at path, reading from disk on first
// use. JPEG, PNG, GIF, TIFF and BMP inputs are supported; the decoded
// result is normalized to NRGBA with EXIF orientation applied.
func (l *Loader) Load(path string) (*image.NRGBA, error) {
	l.mu.RLock()
	if img, ok := l.images[path]; ok {
		l.mu.RUnlock()
		return img, nil
	}
	l.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	buf := imaging.Clone(img)

	l.mu.Lock()
	l.images[path] = buf
	l.mu.Unlock()

	return buf, nil
}

// Evict drops one cached image by its load path.
func (l *Loader) Evict(path string) {
	l.mu.Lock()
	delete(l.images, path)
	l.mu.Unlock()
}

// Clear drops every cached image.
func (l *Loader) Clear() {
	l.mu.Lock()
	l.images = make(map[string]*image.NRGBA)
	l.mu.Unlock()
}
