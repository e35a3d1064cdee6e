package transform

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// Scaler resamples an image to an exact size.
//
// Scale must always return a newly allocated buffer, never src itself.
type Scaler interface {
	Scale(src *image.NRGBA, width, height int) *image.NRGBA
}

// ImagingScaler resamples with a disintegration/imaging filter.
type ImagingScaler struct {
	Filter imaging.ResampleFilter
}

// Scale implements Scaler.
func (s ImagingScaler) Scale(src *image.NRGBA, width, height int) *image.NRGBA {
	return imaging.Resize(src, width, height, s.Filter)
}

// NfntScaler resamples with an nfnt/resize interpolation function.
type NfntScaler struct {
	Interpolation resize.InterpolationFunction
}

// Scale implements Scaler.
func (s NfntScaler) Scale(src *image.NRGBA, width, height int) *image.NRGBA {
	out := resize.Resize(uint(width), uint(height), src, s.Interpolation)
	if nrgba, ok := out.(*image.NRGBA); ok && nrgba != src && nrgba.Rect.Min == (image.Point{}) {
		return nrgba
	}
	return imaging.Clone(out)
}

// DefaultScaler returns Lanczos resampling.
func DefaultScaler() Scaler {
	return ImagingScaler{Filter: imaging.Lanczos}
}

var scalers = map[string]Scaler{
	"lanczos":       ImagingScaler{Filter: imaging.Lanczos},
	"catmullrom":    ImagingScaler{Filter: imaging.CatmullRom},
	"linear":        ImagingScaler{Filter: imaging.Linear},
	"box":           ImagingScaler{Filter: imaging.Box},
	"nearest":       ImagingScaler{Filter: imaging.NearestNeighbor},
	"nfnt-bilinear": NfntScaler{Interpolation: resize.Bilinear},
	"nfnt-bicubic":  NfntScaler{Interpolation: resize.Bicubic},
	"nfnt-lanczos3": NfntScaler{Interpolation: resize.Lanczos3},
}

// ScalerByName returns the scaler registered under name (case-insensitive).
// An empty name selects the default.
func ScalerByName(name string) (Scaler, error) {
	if name == "" {
		return DefaultScaler(), nil
	}
	s, ok := scalers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown filter %q (available: %s)",
			ErrInvalidArgument, name, strings.Join(ScalerNames(), ", "))
	}
	return s, nil
}

// ScalerNames lists the registered scaler names in sorted order.
func ScalerNames() []string {
	names := make([]string, 0, len(scalers))
	for n := range scalers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
