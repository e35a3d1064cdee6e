package transform

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// GCD returns the greatest common divisor of two non-negative integers.
func GCD(a, b int) int {
	for a > 0 && b > 0 {
		if a > b {
			a %= b
		} else {
			b %= a
		}
	}
	return a + b
}

// ReducedRatio returns width:height in lowest terms.
func ReducedRatio(width, height int) (int, int) {
	d := GCD(width, height)
	if d == 0 {
		return 0, 0
	}
	return width / d, height / d
}

// CropToCenter crops the centered region of img with the target's aspect ratio
// and scales it to exactly width x height.
//
// If img already has the target size it is returned unchanged. If the reduced
// ratios match, img is only scaled. If the crop window already has the target
// size it is returned without resampling.
func (e *Engine) CropToCenter(img *Raster, width, height int) (*Raster, error) {
	if err := checkTarget(img, width, height); err != nil {
		return nil, err
	}
	sw, sh := img.Width(), img.Height()
	if sw == width && sh == height {
		return img, nil
	}

	srw, srh := ReducedRatio(sw, sh)
	trw, trh := ReducedRatio(width, height)
	if srw == trw && srh == trh {
		return e.scale(img, width, height)
	}

	var window image.Rectangle
	if cropWidth := max(trw*sh/trh, 1); cropWidth > sw {
		cropHeight := max(trh*sw/trw, 1)
		top := (sh - cropHeight) / 2
		window = image.Rect(0, top, sw, top+cropHeight)
	} else {
		left := (sw - cropWidth) / 2
		window = image.Rect(left, 0, left+cropWidth, sh)
	}
	e.logger.Debug("crop to center", "source", img.img.Rect.Size(), "window", window,
		"target", image.Pt(width, height))

	cropped, err := e.produce(window.Dx(), window.Dy(), img.density, func() *image.NRGBA {
		return imaging.Crop(img.img, window)
	})
	if err != nil {
		return nil, err
	}
	if window.Dx() == width && window.Dy() == height {
		return cropped, nil
	}
	defer cropped.Release()

	return e.scale(cropped, width, height)
}

// FitToCenter scales img to fit inside a transparent width x height frame,
// preserving its aspect ratio, and centers it there.
func (e *Engine) FitToCenter(img *Raster, width, height int) (*Raster, error) {
	return e.FitToCenterOn(img, width, height, color.Transparent)
}

// FitToCenterOn is FitToCenter with the frame filled with background.
//
// If img already has the target size it is returned unchanged. If the reduced
// ratios match, img is scaled to fill the whole frame.
func (e *Engine) FitToCenterOn(img *Raster, width, height int, background color.Color) (*Raster, error) {
	if err := checkTarget(img, width, height); err != nil {
		return nil, err
	}
	if background == nil {
		background = color.Transparent
	}
	sw, sh := img.Width(), img.Height()
	if sw == width && sh == height {
		return img, nil
	}

	srw, srh := ReducedRatio(sw, sh)
	trw, trh := ReducedRatio(width, height)
	if srw == trw && srh == trh {
		return e.scale(img, width, height)
	}

	var slot image.Rectangle
	if fitWidth := max(srw*height/srh, 1); fitWidth > width {
		fitHeight := max(srh*width/srw, 1)
		top := (height - fitHeight) / 2
		slot = image.Rect(0, top, width, top+fitHeight)
	} else {
		left := (width - fitWidth) / 2
		slot = image.Rect(left, 0, left+fitWidth, height)
	}
	e.logger.Debug("fit to center", "source", img.img.Rect.Size(), "slot", slot,
		"target", image.Pt(width, height))

	content := img
	if slot.Dx() != sw || slot.Dy() != sh {
		scaled, err := e.scale(img, slot.Dx(), slot.Dy())
		if err != nil {
			return nil, err
		}
		defer scaled.Release()
		content = scaled
	}

	return e.produce(width, height, img.density, func() *image.NRGBA {
		frame := imaging.New(width, height, background)
		draw.Draw(frame, slot, content.img, image.Point{}, draw.Over)
		return frame
	})
}

// ScaleToFit scales img so it fits inside width x height, preserving its aspect
// ratio. The result may be smaller than the frame on one axis.
//
// img is returned unchanged when it already has the target size, when it is
// smaller on both axes and upscale is false, or when it already matches the
// target along the constraining axis.
func (e *Engine) ScaleToFit(img *Raster, width, height int, upscale bool) (*Raster, error) {
	if err := checkTarget(img, width, height); err != nil {
		return nil, err
	}
	sw, sh := img.Width(), img.Height()
	if sw == width && sh == height {
		return img, nil
	}
	if !upscale && sw < width && sh < height {
		return img, nil
	}

	srw, srh := ReducedRatio(sw, sh)
	trw, trh := ReducedRatio(width, height)
	if srw == trw && srh == trh {
		return e.scale(img, width, height)
	}

	fitWidth := max(srw*height/srh, 1)
	if fitWidth > width {
		if sw == width {
			return img, nil
		}
		return e.scale(img, width, max(srh*width/srw, 1))
	}
	if sh == height {
		return img, nil
	}
	return e.scale(img, fitWidth, height)
}
