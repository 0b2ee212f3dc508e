// Package raster turns the raw samples of one slice into a windowed 8-bit
// grayscale image and writes it to disk.
package raster

import (
	"image"

	"gonum.org/v1/gonum/floats"
)

// Window is a linear clamping transform. Samples are limited to
// [Center-Width, Center+Width] before normalization.
type Window struct {
	Center float64
	Width  float64
}

// DefaultWindow is applied to raw stored CT values.
var DefaultWindow = Window{Center: 1000, Width: 400}

func (w Window) Lower() float64 { return w.Center - w.Width }
func (w Window) Upper() float64 { return w.Center + w.Width }

// Apply clamps v into the window.
func (w Window) Apply(v float64) float64 {
	if v < w.Lower() {
		return w.Lower()
	}
	if v > w.Upper() {
		return w.Upper()
	}
	return v
}

// Grid is a row-major array of samples.
type Grid struct {
	Rows    int
	Cols    int
	Samples []float64
}

// Normalize clamps every sample into the window, then shifts and scales so the
// clamped minimum becomes 0 and the maximum 255, truncating to uint8. A
// constant clamped image has no range to stretch and comes out all zero.
func Normalize(samples []float64, w Window) []uint8 {
	out := make([]uint8, len(samples))
	if len(samples) == 0 {
		return out
	}

	clamped := make([]float64, len(samples))
	for i, v := range samples {
		clamped[i] = w.Apply(v)
	}

	lo, hi := floats.Min(clamped), floats.Max(clamped)
	if hi == lo {
		return out
	}

	// Dividing before scaling maps the maximum to exactly 255.
	for i, v := range clamped {
		out[i] = uint8((v - lo) / (hi - lo) * 255.0)
	}

	return out
}

// Gray renders the windowed grid as an 8-bit grayscale image.
func Gray(g Grid, w Window) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	copy(img.Pix, Normalize(g.Samples, w))
	return img
}
