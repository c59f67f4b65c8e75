package scanning

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// cropRegion cuts a fractional region out of a rendered page
func cropRegion(img image.Image, r Region) image.Image {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	rect := image.Rect(
		b.Min.X+int(r.X0*w),
		b.Min.Y+int(r.Y0*h),
		b.Min.X+int(r.X1*w),
		b.Min.Y+int(r.Y1*h),
	)
	return imaging.Crop(img, rect)
}

// enhanceForOCR applies grayscale, contrast and sharpening to help recognition
// of faint scans
func enhanceForOCR(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 30)
	out = imaging.Sharpen(out, 1.5)
	return out
}

// encodePNG encodes an image as PNG
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
