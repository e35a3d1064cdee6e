package transform

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Step operation names.
const (
	OpInvert           = "invert"
	OpGrayscale        = "grayscale"
	OpColorFilter      = "color_filter"
	OpMirrorHorizontal = "mirror_horizontal"
	OpMirrorVertical   = "mirror_vertical"
	OpRotate           = "rotate"
	OpRoundCorners     = "round_corners"
	OpCropCenter       = "crop_center"
	OpFitCenter        = "fit_center"
	OpScaleToFit       = "scale_to_fit"
)

// Ops lists every supported step operation.
var Ops = []string{
	OpInvert, OpGrayscale, OpColorFilter, OpMirrorHorizontal, OpMirrorVertical,
	OpRotate, OpRoundCorners, OpCropCenter, OpFitCenter, OpScaleToFit,
}

// Step is a serialisable request for one engine operation.
//
// Only the fields relevant to Op are read.
type Step struct {
	Op         string    `json:"op"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	Upscale    bool      `json:"upscale,omitempty"`
	Degrees    float64   `json:"degrees,omitempty"`
	Radius     float64   `json:"radius,omitempty"`
	Matrix     []float64 `json:"matrix,omitempty"`
	Background string    `json:"background,omitempty"` // hex color for fit_center, empty = transparent
}

// Validate checks the step's arguments without touching any image.
func (s Step) Validate() error {
	switch s.Op {
	case OpInvert, OpGrayscale, OpMirrorHorizontal, OpMirrorVertical, OpRotate:
		return nil
	case OpColorFilter:
		if len(s.Matrix) != len(ColorMatrix{}) {
			return fmt.Errorf("%w: color_filter needs %d matrix values, got %d",
				ErrInvalidArgument, len(ColorMatrix{}), len(s.Matrix))
		}
		return nil
	case OpRoundCorners:
		if s.Radius < 0 {
			return fmt.Errorf("%w: negative corner radius %v", ErrInvalidArgument, s.Radius)
		}
		return nil
	case OpCropCenter, OpFitCenter, OpScaleToFit:
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("%w: %s target %dx%d must be positive", ErrInvalidDimensions, s.Op, s.Width, s.Height)
		}
		if s.Op == OpFitCenter {
			if _, err := ParseColor(s.Background); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidArgument, s.Op)
	}
}

// Apply runs the step on img.
func (s Step) Apply(e *Engine, img *Raster) (*Raster, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	switch s.Op {
	case OpInvert:
		return e.InvertColors(img)
	case OpGrayscale:
		return e.ToGrayscale(img)
	case OpColorFilter:
		var m ColorMatrix
		copy(m[:], s.Matrix)
		return e.ApplyColorFilter(img, m)
	case OpMirrorHorizontal:
		return e.MirrorHorizontal(img)
	case OpMirrorVertical:
		return e.MirrorVertical(img)
	case OpRotate:
		return e.Rotate(img, s.Degrees)
	case OpRoundCorners:
		return e.RoundCorners(img, s.Radius)
	case OpCropCenter:
		return e.CropToCenter(img, s.Width, s.Height)
	case OpFitCenter:
		bg, _ := ParseColor(s.Background)
		return e.FitToCenterOn(img, s.Width, s.Height, bg)
	default:
		return e.ScaleToFit(img, s.Width, s.Height, s.Upscale)
	}
}

// CanonicalString returns a stable textual form of the step, listing only the
// arguments its operation reads.
func (s Step) CanonicalString() string {
	switch s.Op {
	case OpColorFilter:
		vals := make([]string, len(s.Matrix))
		for i, v := range s.Matrix {
			vals[i] = formatFloat(v)
		}
		return fmt.Sprintf("%s(%s)", s.Op, strings.Join(vals, ","))
	case OpRotate:
		return fmt.Sprintf("%s(%s)", s.Op, formatFloat(s.Degrees))
	case OpRoundCorners:
		return fmt.Sprintf("%s(%s)", s.Op, formatFloat(s.Radius))
	case OpCropCenter:
		return fmt.Sprintf("%s(%dx%d)", s.Op, s.Width, s.Height)
	case OpFitCenter:
		bg := "transparent"
		if c, err := ParseColor(s.Background); err == nil {
			if nc := color.NRGBAModel.Convert(c).(color.NRGBA); nc.A != 0 {
				bg = fmt.Sprintf("#%02x%02x%02x", nc.R, nc.G, nc.B)
			}
		}
		return fmt.Sprintf("%s(%dx%d,%s)", s.Op, s.Width, s.Height, bg)
	case OpScaleToFit:
		return fmt.Sprintf("%s(%dx%d,upscale=%t)", s.Op, s.Width, s.Height, s.Upscale)
	default:
		return s.Op
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseColor parses "#rrggbb" or "#rgb" (the leading # is optional) into an
// opaque color. Empty and "transparent" give color.Transparent.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "transparent" {
		return color.Transparent, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("%w: color %q: %v", ErrInvalidArgument, s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Pipeline is an ordered list of steps.
type Pipeline []Step

// Validate checks every step.
func (p Pipeline) Validate() error {
	for i, s := range p {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

// CanonicalString joins the steps' canonical forms with ";".
func (p Pipeline) CanonicalString() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.CanonicalString()
	}
	return strings.Join(parts, ";")
}

// Apply runs the steps in order. Intermediate results that are neither img nor
// the final output are released as soon as the next step has consumed them,
// and on failure.
func (p Pipeline) Apply(e *Engine, img *Raster) (*Raster, error) {
	cur := img
	for i, s := range p {
		next, err := s.Apply(e, cur)
		if err != nil {
			if cur != img {
				cur.Release()
			}
			return nil, fmt.Errorf("step %d (%s): %w", i, s.Op, err)
		}
		if next != cur && cur != img {
			cur.Release()
		}
		cur = next
	}
	return cur, nil
}
