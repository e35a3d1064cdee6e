package transform

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func markedRaster(t *testing.T, width, height int) *Raster {
	t.Helper()
	r := createSolidRaster(t, width, height, white)
	r.Image().SetNRGBA(0, 0, red)
	return r
}

func TestMirrorHorizontal(t *testing.T) {
	src := markedRaster(t, 4, 3)
	out, err := MirrorHorizontal(src)
	if err != nil {
		t.Fatalf("MirrorHorizontal failed: %v", err)
	}
	if out.Width() != 4 || out.Height() != 3 {
		t.Fatalf("dimensions: got %dx%d", out.Width(), out.Height())
	}
	if got := pixelAt(out, 3, 0); got != red {
		t.Errorf("marker should move to (3,0), got %v", got)
	}
	if got := pixelAt(out, 0, 0); got != white {
		t.Errorf("(0,0) should be white, got %v", got)
	}
	if out.Density() != src.Density() {
		t.Errorf("density: got %d, want %d", out.Density(), src.Density())
	}
}

func TestMirrorVertical(t *testing.T) {
	src := markedRaster(t, 4, 3)
	out, err := MirrorVertical(src)
	if err != nil {
		t.Fatalf("MirrorVertical failed: %v", err)
	}
	if got := pixelAt(out, 0, 2); got != red {
		t.Errorf("marker should move to (0,2), got %v", got)
	}
}

func TestMirror_RoundTrip(t *testing.T) {
	src := createPatternRaster(t, 31, 17)
	ops := map[string]func(*Raster) (*Raster, error){
		"horizontal": MirrorHorizontal,
		"vertical":   MirrorVertical,
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			once, err := op(src)
			if err != nil {
				t.Fatalf("mirror failed: %v", err)
			}
			twice, err := op(once)
			if err != nil {
				t.Fatalf("mirror failed: %v", err)
			}
			if twice == src {
				t.Error("mirror should always allocate")
			}
			if !bytes.Equal(twice.Image().Pix, src.Image().Pix) {
				t.Error("mirroring twice should restore the original pixels")
			}
		})
	}
}

func TestRotate_RightAngles(t *testing.T) {
	tests := []struct {
		degrees      float64
		wantW, wantH int
		markX, markY int
	}{
		{90, 2, 4, 1, 0},
		{-270, 2, 4, 1, 0},
		{180, 4, 2, 3, 1},
		{270, 2, 4, 0, 3},
		{-90, 2, 4, 0, 3},
		{360, 4, 2, 0, 0},
		{0, 4, 2, 0, 0},
	}
	for _, tt := range tests {
		t.Run(formatFloat(tt.degrees), func(t *testing.T) {
			src := markedRaster(t, 4, 2)
			out, err := Rotate(src, tt.degrees)
			if err != nil {
				t.Fatalf("Rotate failed: %v", err)
			}
			if out == src {
				t.Error("Rotate should always allocate")
			}
			if out.Width() != tt.wantW || out.Height() != tt.wantH {
				t.Fatalf("dimensions: got %dx%d, want %dx%d", out.Width(), out.Height(), tt.wantW, tt.wantH)
			}
			if got := pixelAt(out, tt.markX, tt.markY); got != red {
				t.Errorf("marker should be at (%d,%d), got %v there", tt.markX, tt.markY, got)
			}
		})
	}
}

func TestRotate_ArbitraryAngle(t *testing.T) {
	src := createSolidRaster(t, 100, 50, red)
	out, err := Rotate(src, 45)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if out.Width() <= 100 || out.Height() <= 50 {
		t.Errorf("45 degree rotation should expand the bounds, got %dx%d", out.Width(), out.Height())
	}
	if got := pixelAt(out, 0, 0); got.A != 0 {
		t.Errorf("uncovered corner should be transparent, got %v", got)
	}
	if got := pixelAt(out, out.Width()/2, out.Height()/2); got.A == 0 {
		t.Error("center should be covered by the rotated image")
	}
	if out.Density() != src.Density() {
		t.Errorf("density: got %d, want %d", out.Density(), src.Density())
	}
}

func TestRotate_InvalidAngle(t *testing.T) {
	src := createSolidRaster(t, 4, 4, red)
	for _, d := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := Rotate(src, d); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Rotate(%v): got %v, want ErrInvalidArgument", d, err)
		}
	}
}

func TestRoundCorners(t *testing.T) {
	src := createSolidRaster(t, 100, 60, blue)
	out, err := RoundCorners(src, 20)
	if err != nil {
		t.Fatalf("RoundCorners failed: %v", err)
	}
	if out.Width() != 100 || out.Height() != 60 {
		t.Fatalf("dimensions: got %dx%d", out.Width(), out.Height())
	}

	corners := []image.Point{{0, 0}, {99, 0}, {0, 59}, {99, 59}, {2, 2}}
	for _, p := range corners {
		if got := pixelAt(out, p.X, p.Y); got.A != 0 {
			t.Errorf("corner pixel %v should be fully transparent, got %v", p, got)
		}
	}

	inside := []image.Point{{50, 30}, {50, 0}, {0, 30}, {20, 20}}
	for _, p := range inside {
		if got := pixelAt(out, p.X, p.Y); got != blue {
			t.Errorf("inner pixel %v: got %v, want %v", p, got, blue)
		}
	}
	if out.Density() != src.Density() {
		t.Errorf("density: got %d, want %d", out.Density(), src.Density())
	}
}

func TestRoundCorners_KeepsTranslucentPixels(t *testing.T) {
	c := color.NRGBA{200, 101, 53, 77}
	src := createSolidRaster(t, 40, 30, c)
	out, err := RoundCorners(src, 8)
	if err != nil {
		t.Fatalf("RoundCorners failed: %v", err)
	}
	for y := 8; y < 22; y++ {
		for x := 0; x < 40; x++ {
			if got := pixelAt(out, x, y); got != c {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, c)
			}
		}
	}
	if got := pixelAt(out, 0, 0); got.A != 0 {
		t.Errorf("corner should be transparent, got %v", got)
	}
}

func TestRoundCorners_ZeroRadius(t *testing.T) {
	src := createPatternRaster(t, 20, 20)
	out, err := RoundCorners(src, 0)
	if err != nil {
		t.Fatalf("RoundCorners failed: %v", err)
	}
	if out == src {
		t.Error("RoundCorners should always allocate")
	}
	if !bytes.Equal(out.Image().Pix, src.Image().Pix) {
		t.Error("zero radius should copy the image unchanged")
	}
}

func TestRoundCorners_HugeRadiusIsCapped(t *testing.T) {
	src := createSolidRaster(t, 40, 40, green)
	out, err := RoundCorners(src, 1000)
	if err != nil {
		t.Fatalf("RoundCorners failed: %v", err)
	}
	// Capped at 20: the result is a circle.
	if got := pixelAt(out, 20, 20); got != green {
		t.Errorf("center: got %v", got)
	}
	if got := pixelAt(out, 3, 3); got.A != 0 {
		t.Errorf("outside the circle should be transparent, got %v", got)
	}
}

func TestRoundCorners_NegativeRadius(t *testing.T) {
	src := createSolidRaster(t, 4, 4, color.NRGBA{1, 2, 3, 255})
	if _, err := RoundCorners(src, -1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}
