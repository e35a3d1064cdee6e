package transform

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
)

// Sentinel errors for precondition violations and resource exhaustion.
var (
	// ErrInvalidImage is returned for nil, empty or released rasters.
	ErrInvalidImage = errors.New("invalid image")

	// ErrInvalidDimensions is returned for non-positive target sizes.
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrInvalidArgument is returned for other out-of-range operation arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAllocation is matched by every *AllocationError.
	ErrAllocation = errors.New("allocation failed")
)

const bytesPerPixel = 4

// Raster is a decoded NRGBA bitmap with density metadata.
//
// A Raster is owned by one holder at a time. Release drops the pixel buffer; a
// released raster is rejected by every operation.
type Raster struct {
	img     *image.NRGBA
	density int

	budget *Budget
	size   int64
}

// NewRaster wraps a decoded image for use with the engine.
//
// *image.NRGBA images anchored at the origin are adopted without copying; anything
// else is converted. The returned raster is caller owned and not accounted against
// any budget.
func NewRaster(img image.Image, density int) (*Raster, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrInvalidImage, b)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = imaging.Clone(img)
	}
	return &Raster{img: nrgba, density: density}, nil
}

// Image returns the pixel buffer, or nil after Release.
func (r *Raster) Image() *image.NRGBA {
	return r.img
}

// Width returns the width in pixels.
func (r *Raster) Width() int {
	if r.img == nil {
		return 0
	}
	return r.img.Rect.Dx()
}

// Height returns the height in pixels.
func (r *Raster) Height() int {
	if r.img == nil {
		return 0
	}
	return r.img.Rect.Dy()
}

// Density returns the density metadata.
func (r *Raster) Density() int {
	return r.density
}

// Released reports whether Release has been called.
func (r *Raster) Released() bool {
	return r.img == nil
}

// Release drops the pixel buffer and returns its bytes to the owning budget.
// Calling Release more than once is a no-op.
func (r *Raster) Release() {
	if r == nil || r.img == nil {
		return
	}
	r.img = nil
	if r.budget != nil {
		r.budget.free(r.size)
		r.budget = nil
	}
}

func (r *Raster) check() error {
	if r == nil {
		return fmt.Errorf("%w: nil raster", ErrInvalidImage)
	}
	if r.img == nil {
		return fmt.Errorf("%w: raster already released", ErrInvalidImage)
	}
	if r.img.Rect.Dx() <= 0 || r.img.Rect.Dy() <= 0 {
		return fmt.Errorf("%w: empty raster", ErrInvalidImage)
	}
	return nil
}

// AllocationError reports a buffer that would exceed the engine budget.
type AllocationError struct {
	Requested int64
	InUse     int64
	Limit     int64
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocation of %s exceeds budget (%s of %s in use)",
		humanize.IBytes(uint64(e.Requested)), humanize.IBytes(uint64(e.InUse)), humanize.IBytes(uint64(e.Limit)))
}

// Is makes errors.Is(err, ErrAllocation) match.
func (e *AllocationError) Is(target error) bool {
	return target == ErrAllocation
}

// Budget accounts the bytes of live engine-allocated rasters.
//
// A zero or negative limit means unlimited; usage is still tracked.
type Budget struct {
	limit int64
	inUse atomic.Int64
}

// NewBudget creates a budget capped at limit bytes.
func NewBudget(limit int64) *Budget {
	return &Budget{limit: limit}
}

// Limit returns the configured cap in bytes.
func (b *Budget) Limit() int64 {
	return b.limit
}

// InUse returns the bytes held by unreleased rasters.
func (b *Budget) InUse() int64 {
	return b.inUse.Load()
}

func (b *Budget) reserve(n int64) error {
	for {
		cur := b.inUse.Load()
		if b.limit > 0 && cur+n > b.limit {
			return &AllocationError{Requested: n, InUse: cur, Limit: b.limit}
		}
		if b.inUse.CompareAndSwap(cur, cur+n) {
			return nil
		}
	}
}

func (b *Budget) free(n int64) {
	b.inUse.Add(-n)
}

func rasterBytes(width, height int) int64 {
	return int64(width) * int64(height) * bytesPerPixel
}
