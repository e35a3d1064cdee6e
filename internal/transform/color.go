package transform

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ColorMatrix is a 4x5 row-major matrix applied to non-premultiplied RGBA
// components in the 0-255 range:
//
//	R' = m[0]*R  + m[1]*G  + m[2]*B  + m[3]*A  + m[4]
//	G' = m[5]*R  + m[6]*G  + m[7]*B  + m[8]*A  + m[9]
//	B' = m[10]*R + m[11]*G + m[12]*B + m[13]*A + m[14]
//	A' = m[15]*R + m[16]*G + m[17]*B + m[18]*A + m[19]
//
// Results are rounded and clamped to 0-255.
type ColorMatrix [20]float64

// IdentityMatrix leaves every pixel unchanged.
func IdentityMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// InvertMatrix maps each color channel c to 255-c and keeps alpha.
func InvertMatrix() ColorMatrix {
	return ColorMatrix{
		-1, 0, 0, 0, 255,
		0, -1, 0, 0, 255,
		0, 0, -1, 0, 255,
		0, 0, 0, 1, 0,
	}
}

// SaturationMatrix scales saturation: 0 is grayscale, 1 is identity.
// Luminance weights are 0.213, 0.715 and 0.072.
func SaturationMatrix(sat float64) ColorMatrix {
	inv := 1 - sat
	r := 0.213 * inv
	g := 0.715 * inv
	b := 0.072 * inv
	return ColorMatrix{
		r + sat, g, b, 0, 0,
		r, g + sat, b, 0, 0,
		r, g, b + sat, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Then returns the matrix that applies m first and next second.
func (m ColorMatrix) Then(next ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for i := 0; i < 4; i++ {
		for j := 0; j < 5; j++ {
			var v float64
			for k := 0; k < 4; k++ {
				v += next[i*5+k] * m[k*5+j]
			}
			if j == 4 {
				v += next[i*5+4]
			}
			out[i*5+j] = v
		}
	}
	return out
}

// Apply transforms a single color.
func (m ColorMatrix) Apply(c color.NRGBA) color.NRGBA {
	r, g, b, a := float64(c.R), float64(c.G), float64(c.B), float64(c.A)
	row := func(i int) uint8 {
		return clampChannel(m[i]*r + m[i+1]*g + m[i+2]*b + m[i+3]*a + m[i+4])
	}
	return color.NRGBA{R: row(0), G: row(5), B: row(10), A: row(15)}
}

func clampChannel(v float64) uint8 {
	v += 0.5
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// InvertColors returns a copy of img with every color channel inverted.
func (e *Engine) InvertColors(img *Raster) (*Raster, error) {
	return e.ApplyColorFilter(img, InvertMatrix())
}

// ToGrayscale returns a desaturated copy of img.
func (e *Engine) ToGrayscale(img *Raster) (*Raster, error) {
	return e.ApplyColorFilter(img, SaturationMatrix(0))
}

// ApplyColorFilter returns a copy of img with m applied to every pixel.
// The output always has the input's dimensions and is always a new raster.
func (e *Engine) ApplyColorFilter(img *Raster, m ColorMatrix) (*Raster, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	return e.produce(img.Width(), img.Height(), img.density, func() *image.NRGBA {
		return imaging.AdjustFunc(img.img, m.Apply)
	})
}
