// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gfx draws rectangles, lines and monospaced text onto a monochrome
// Canvas.
//
// All drawing is done in place and clipped to the Canvas bounds. Later draws
// overwrite earlier ones pixel-wise, so inverted text is drawn by filling a
// rectangle On first, then drawing the text with an Off foreground over it.
package gfx

import (
	"image"

	"github.com/GermanBionicSystems/oledmon/sh1106/image1bit"
)

// Canvas is a monochrome drawing target.
//
// *image1bit.Frame and *sh1106.Dev implement it.
type Canvas interface {
	Bounds() image.Rectangle
	SetBit(x, y int, b image1bit.Bit)
}

// Color is an optional pixel value. The zero value paints nothing.
type Color uint8

// Possible colors.
const (
	Transparent Color = iota
	Off
	On
)

func (c Color) String() string {
	switch c {
	case Off:
		return "Off"
	case On:
		return "On"
	default:
		return "Transparent"
	}
}

func (c Color) bit() image1bit.Bit {
	return image1bit.Bit(c == On)
}

// PrimitiveStyle describes how rectangles and lines are painted.
type PrimitiveStyle struct {
	Fill        Color
	Stroke      Color
	StrokeWidth int
}

// TextStyle describes how text is painted. A nil Font means Font6x12.
type TextStyle struct {
	Font       *Font
	Foreground Color
	// Background paints the glyph cell pixels not covered by the glyph. It is
	// transparent by default.
	Background Color
}

func set(c Canvas, x, y int, col Color) {
	c.SetBit(x, y, col.bit())
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
