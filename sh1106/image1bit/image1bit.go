// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package image1bit implements the 128x64 monochrome framebuffer used by the
// SH1106 controller.
//
// The pixel color is periph's ssd1306 image1bit.Bit. The memory layout mirrors
// the controller RAM: each byte holds 8 vertically contiguous pixels with the
// least significant bit at the top, and the 8 horizontal bands (pages) of 128
// bytes follow each other. It is sometimes called "vertical LSB".
package image1bit

import (
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Panel geometry.
const (
	Width    = 128
	Height   = 64
	Pages    = Height / 8
	PageSize = Width
	Size     = Pages * PageSize
)

// Bit is the 1 bit color of periph's SSD1306 image type, so a Frame can be
// drawn with the same colors as the other periph displays.
type Bit = image1bit.Bit

// Possible bitness.
const (
	On  = image1bit.On
	Off = image1bit.Off
)

// BitModel is the color Model for 1 bit color.
var BitModel = image1bit.BitModel

// Frame is a fixed size page-packed monochrome bitmap.
//
// The zero value is a cleared frame ready to use.
type Frame struct {
	Pix [Size]byte
}

// Rect is the area covered by a Frame. Min is always {0, 0}.
var Rect = image.Rect(0, 0, Width, Height)

// ColorModel implements image.Image.
func (f *Frame) ColorModel() color.Model {
	return BitModel
}

// Bounds implements image.Image.
func (f *Frame) Bounds() image.Rectangle {
	return Rect
}

// At implements image.Image.
func (f *Frame) At(x, y int) color.Color {
	return f.BitAt(x, y)
}

// BitAt is the efficient version of At. Pixels outside the frame are Off.
func (f *Frame) BitAt(x, y int) Bit {
	if !inside(x, y) {
		return Off
	}
	offset, mask := f.offset(x, y)
	return Bit(f.Pix[offset]&mask != 0)
}

// Set implements draw.Image.
func (f *Frame) Set(x, y int, c color.Color) {
	f.SetBit(x, y, BitModel.Convert(c).(Bit))
}

// SetBit is the efficient version of Set. Writes outside the frame are
// ignored.
func (f *Frame) SetBit(x, y int, b Bit) {
	if !inside(x, y) {
		return
	}
	offset, mask := f.offset(x, y)
	if b {
		f.Pix[offset] |= mask
	} else {
		f.Pix[offset] &^= mask
	}
}

// Clear turns every pixel Off.
func (f *Frame) Clear() {
	f.Pix = [Size]byte{}
}

// Page returns the 128 bytes of page p. It panics if p is out of range.
func (f *Frame) Page(p int) []byte {
	return f.Pix[p*PageSize : (p+1)*PageSize]
}

func (f *Frame) offset(x, y int) (int, byte) {
	return (y/8)*PageSize + x, 1 << uint(y&7)
}

func inside(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

var _ draw.Image = &Frame{}
