package transform

import (
	"fmt"
	"image"
	"io"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Engine applies transforms using a scaler and a buffer budget.
type Engine struct {
	scaler Scaler
	budget *Budget
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithScaler sets the resampler used by sizing operations.
func WithScaler(s Scaler) Option {
	return func(e *Engine) {
		if s != nil {
			e.scaler = s
		}
	}
}

// WithBudget sets the allocation budget.
func WithBudget(b *Budget) Option {
	return func(e *Engine) {
		if b != nil {
			e.budget = b
		}
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine. Without options it uses Lanczos resampling, an
// unlimited budget and a discarding logger.
func New(opts ...Option) *Engine {
	e := &Engine{
		scaler: DefaultScaler(),
		budget: NewBudget(0),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Budget returns the engine's allocation budget.
func (e *Engine) Budget() *Budget {
	return e.budget
}

// produce reserves a width x height buffer, runs fn to fill it, and wraps the
// result as an engine-owned raster. fn may return a different size (rotations);
// the reservation is corrected afterwards.
func (e *Engine) produce(width, height, density int, fn func() *image.NRGBA) (*Raster, error) {
	want := rasterBytes(width, height)
	if err := e.budget.reserve(want); err != nil {
		e.logger.Warn("buffer allocation refused", "width", width, "height", height, "err", err)
		return nil, err
	}

	img := fn()
	got := rasterBytes(img.Rect.Dx(), img.Rect.Dy())
	if got != want {
		e.budget.inUse.Add(got - want)
	}

	e.logger.Debug("allocated raster", "width", img.Rect.Dx(), "height", img.Rect.Dy(),
		"size", humanize.IBytes(uint64(got)), "in_use", humanize.IBytes(uint64(e.budget.InUse())))
	return &Raster{img: img, density: density, budget: e.budget, size: got}, nil
}

func (e *Engine) scale(src *Raster, width, height int) (*Raster, error) {
	return e.produce(width, height, src.density, func() *image.NRGBA {
		return e.scaler.Scale(src.img, width, height)
	})
}

func checkTarget(src *Raster, width, height int) error {
	if err := src.check(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: target %dx%d must be positive", ErrInvalidDimensions, width, height)
	}
	return nil
}

var defaultEngine = New()

// Default returns the package-level engine used by the top-level functions.
func Default() *Engine {
	return defaultEngine
}

// InvertColors inverts img using the default engine.
func InvertColors(img *Raster) (*Raster, error) { return defaultEngine.InvertColors(img) }

// ToGrayscale desaturates img using the default engine.
func ToGrayscale(img *Raster) (*Raster, error) { return defaultEngine.ToGrayscale(img) }

// ApplyColorFilter applies m to img using the default engine.
func ApplyColorFilter(img *Raster, m ColorMatrix) (*Raster, error) {
	return defaultEngine.ApplyColorFilter(img, m)
}

// MirrorHorizontal mirrors img using the default engine.
func MirrorHorizontal(img *Raster) (*Raster, error) { return defaultEngine.MirrorHorizontal(img) }

// MirrorVertical mirrors img using the default engine.
func MirrorVertical(img *Raster) (*Raster, error) { return defaultEngine.MirrorVertical(img) }

// Rotate rotates img using the default engine.
func Rotate(img *Raster, degrees float64) (*Raster, error) { return defaultEngine.Rotate(img, degrees) }

// RoundCorners rounds img's corners using the default engine.
func RoundCorners(img *Raster, radius float64) (*Raster, error) {
	return defaultEngine.RoundCorners(img, radius)
}

// CropToCenter crops and scales img using the default engine.
func CropToCenter(img *Raster, width, height int) (*Raster, error) {
	return defaultEngine.CropToCenter(img, width, height)
}

// FitToCenter letterboxes img using the default engine.
func FitToCenter(img *Raster, width, height int) (*Raster, error) {
	return defaultEngine.FitToCenter(img, width, height)
}

// ScaleToFit scales img into a frame using the default engine.
func ScaleToFit(img *Raster, width, height int, upscale bool) (*Raster, error) {
	return defaultEngine.ScaleToFit(img, width, height, upscale)
}
