package transform

import (
	"fmt"
	"image"
	"math"

	bildtransform "github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// MirrorHorizontal returns a copy of img reflected about its vertical axis.
func (e *Engine) MirrorHorizontal(img *Raster) (*Raster, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	return e.produce(img.Width(), img.Height(), img.density, func() *image.NRGBA {
		return imaging.FlipH(img.img)
	})
}

// MirrorVertical returns a copy of img reflected about its horizontal axis.
func (e *Engine) MirrorVertical(img *Raster) (*Raster, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	return e.produce(img.Width(), img.Height(), img.density, func() *image.NRGBA {
		return imaging.FlipV(img.img)
	})
}

// Rotate returns a copy of img rotated clockwise by degrees about its center.
//
// Multiples of 90 are exact pixel permutations. Other angles are resampled into
// the rotated bounding box; uncovered pixels are transparent.
func (e *Engine) Rotate(img *Raster, degrees float64) (*Raster, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return nil, fmt.Errorf("%w: rotation angle %v", ErrInvalidArgument, degrees)
	}

	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	w, h := img.Width(), img.Height()

	// imaging rotates counter-clockwise.
	switch d {
	case 0:
		return e.produce(w, h, img.density, func() *image.NRGBA { return imaging.Clone(img.img) })
	case 90:
		return e.produce(h, w, img.density, func() *image.NRGBA { return imaging.Rotate270(img.img) })
	case 180:
		return e.produce(w, h, img.density, func() *image.NRGBA { return imaging.Rotate180(img.img) })
	case 270:
		return e.produce(h, w, img.density, func() *image.NRGBA { return imaging.Rotate90(img.img) })
	}

	rw, rh := rotatedBounds(w, h, d)
	return e.produce(rw, rh, img.density, func() *image.NRGBA {
		rotated := bildtransform.Rotate(img.img, d, &bildtransform.RotationOptions{ResizeBounds: true})
		return imaging.Clone(rotated)
	})
}

// rotatedBounds estimates the bounding box of a w x h rectangle rotated by degrees.
func rotatedBounds(w, h int, degrees float64) (int, int) {
	rad := degrees * math.Pi / 180
	sin, cos := math.Abs(math.Sin(rad)), math.Abs(math.Cos(rad))
	rw := int(math.Ceil(float64(w)*cos + float64(h)*sin))
	rh := int(math.Ceil(float64(w)*sin + float64(h)*cos))
	return max(rw, 1), max(rh, 1)
}

// RoundCorners returns a copy of img clipped to a rounded rectangle.
//
// Pixels outside the rounded rectangle become fully transparent. The radius is
// capped at half the shorter side; a zero radius yields a plain copy.
func (e *Engine) RoundCorners(img *Raster, radius float64) (*Raster, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: corner radius %v", ErrInvalidArgument, radius)
	}

	w, h := img.Width(), img.Height()
	radius = math.Min(radius, float64(min(w, h))/2)

	return e.produce(w, h, img.density, func() *image.NRGBA {
		if radius == 0 {
			return imaging.Clone(img.img)
		}
		dc := gg.NewContext(w, h)
		dc.DrawRoundedRectangle(0, 0, float64(w), float64(h), radius)
		dc.SetRGBA(1, 1, 1, 1)
		dc.Fill()
		return applyCoverage(imaging.Clone(img.img), dc.AsMask())
	})
}

// applyCoverage scales the alpha of every pixel in dst by the matching mask
// value. Fully covered pixels keep their exact values.
func applyCoverage(dst *image.NRGBA, mask *image.Alpha) *image.NRGBA {
	b := dst.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()*4]
		mrow := mask.Pix[y*mask.Stride : y*mask.Stride+b.Dx()]
		for x, m := range mrow {
			px := row[x*4 : x*4+4 : x*4+4]
			switch m {
			case 0xff:
			case 0:
				px[0], px[1], px[2], px[3] = 0, 0, 0, 0
			default:
				px[3] = uint8((uint32(px[3])*uint32(m) + 127) / 255)
			}
		}
	}
	return dst
}
