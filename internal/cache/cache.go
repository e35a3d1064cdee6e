package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"

	"github.com/ironsheep/image-loader-mcp/internal/transform"
)

// Sentinel errors for cache operations.
var (
	// ErrInvalidKey is returned when a key is not a descriptor key.
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrNilEntry is returned by Put when the entry is nil.
	ErrNilEntry = errors.New("nil cache entry")
)

// Store is a keyed result store.
//
// Get reports a miss as (nil, false, nil); errors are reserved for failures of
// the backing medium.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Put(ctx context.Context, key string, e *Entry) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Entry is one cached raster.
type Entry struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Density int    `json:"density"`
	Format  string `json:"format,omitempty"` // format of the decoded source
	PNG     []byte `json:"png"`
}

// EncodeEntry snapshots r into an Entry.
func EncodeEntry(r *transform.Raster) (*Entry, error) {
	if r == nil || r.Released() {
		return nil, fmt.Errorf("encode entry: %w", transform.ErrInvalidImage)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Image()); err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	return &Entry{
		Width:   r.Width(),
		Height:  r.Height(),
		Density: r.Density(),
		PNG:     buf.Bytes(),
	}, nil
}

// Raster decodes the entry into a new caller-owned raster.
func (e *Entry) Raster() (*transform.Raster, error) {
	img, err := png.Decode(bytes.NewReader(e.PNG))
	if err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	if b := img.Bounds(); b.Dx() != e.Width || b.Dy() != e.Height {
		return nil, fmt.Errorf("decode entry: image is %dx%d, entry says %dx%d",
			b.Dx(), b.Dy(), e.Width, e.Height)
	}
	return transform.NewRaster(img, e.Density)
}

// Size returns the encoded payload size in bytes.
func (e *Entry) Size() int {
	return len(e.PNG)
}
