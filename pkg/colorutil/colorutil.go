// Package colorutil provides shared color utilities for the slice annotator.
package colorutil

import (
	"image/color"
)

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Orange  = color.RGBA{R: 255, G: 165, B: 0, A: 255}
)

// WithOpacity returns the color with its alpha set from an opacity in
// [0,1].
func WithOpacity(c color.RGBA, opacity float64) color.RGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(opacity * 255)
	return c
}

// Blend alpha-blends src over dst using the src alpha channel.
func Blend(dst, src color.RGBA) color.RGBA {
	a := float64(src.A) / 255.0
	inv := 1 - a
	return color.RGBA{
		R: uint8(float64(src.R)*a + float64(dst.R)*inv),
		G: uint8(float64(src.G)*a + float64(dst.G)*inv),
		B: uint8(float64(src.B)*a + float64(dst.B)*inv),
		A: 255,
	}
}

// Lighten moves a color toward white by the given fraction in [0,1].
// Used to render highlighted annotations more prominently.
func Lighten(c color.RGBA, fraction float64) color.RGBA {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return color.RGBA{
		R: uint8(float64(c.R) + (255-float64(c.R))*fraction),
		G: uint8(float64(c.G) + (255-float64(c.G))*fraction),
		B: uint8(float64(c.B) + (255-float64(c.B))*fraction),
		A: c.A,
	}
}
