// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gfx

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/bitmapfont/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	firstGlyph = 0x20
	lastGlyph  = 0x7E
	maxCell    = 16
)

// Font is a monospace bitmap glyph table covering printable 7-bit ASCII.
//
// Each glyph is a fixed Width x Height cell. Runes outside the table render
// as a blank cell.
type Font struct {
	Width  int
	Height int

	// glyphs[r][y] bit x is the pixel at column x, row y of rune r.
	glyphs [lastGlyph + 1][maxCell]uint16
}

// The built-in fonts.
var (
	// Font6x12 is the ASCII half of the 12px bitmapfont.
	Font6x12 = NewFont(bitmapfont.Face, 6, 12)
	// Font7x13 is the X11 fixed font shipped with golang.org/x/image.
	Font7x13 = NewFont(basicfont.Face7x13, 7, 13)
)

// NewFont rasterizes the printable ASCII glyphs of face into width x height
// cells. The ink box shared by all the glyphs is centered in the cell, so
// every glyph keeps the same baseline.
//
// It panics if the cell is larger than 16x16.
func NewFont(face font.Face, width, height int) *Font {
	if width < 1 || width > maxCell || height < 1 || height > maxCell {
		panic(fmt.Sprintf("gfx: invalid cell %dx%d", width, height))
	}
	var masks [lastGlyph + 1]*image.Alpha
	var ink image.Rectangle
	for r := rune(firstGlyph); r <= lastGlyph; r++ {
		masks[r] = rasterize(face, r)
		ink = ink.Union(inkBounds(masks[r]))
	}
	f := &Font{Width: width, Height: height}
	off := image.Pt((width-ink.Dx())/2, (height-ink.Dy())/2).Sub(ink.Min)
	cell := image.Rect(0, 0, width, height)
	for r := rune(firstGlyph); r <= lastGlyph; r++ {
		m := masks[r]
		b := m.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				p := image.Pt(x, y).Add(off)
				if m.AlphaAt(x, y).A >= 0x80 && p.In(cell) {
					f.glyphs[r][p.Y] |= 1 << uint(p.X)
				}
			}
		}
	}
	return f
}

// rasterize draws r with the dot at the origin of a scratch mask.
func rasterize(face font.Face, r rune) *image.Alpha {
	m := image.NewAlpha(image.Rect(-2*maxCell, -2*maxCell, 2*maxCell, 2*maxCell))
	d := &font.Drawer{
		Dst:  m,
		Src:  image.Opaque,
		Face: face,
	}
	d.DrawString(string(r))
	return m
}

func inkBounds(m *image.Alpha) image.Rectangle {
	var ink image.Rectangle
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if m.AlphaAt(x, y).A >= 0x80 {
				ink = ink.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return ink
}

func (f *Font) String() string {
	return fmt.Sprintf("Font%dx%d", f.Width, f.Height)
}

// Bit reports whether the pixel at (x, y) of the glyph cell for r is part of
// the glyph.
func (f *Font) Bit(r rune, x, y int) bool {
	if r < firstGlyph || r > lastGlyph || x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return false
	}
	return f.glyphs[r][y]&(1<<uint(x)) != 0
}

// Text draws s with the top-left corner of the first glyph cell at origin.
// Glyph i is placed at origin.X + i*Width.
//
// It returns the position following the last cell.
func Text(c Canvas, origin image.Point, s string, st TextStyle) image.Point {
	f := st.Font
	if f == nil {
		f = Font6x12
	}
	x := origin.X
	for _, r := range s {
		f.draw(c, x, origin.Y, r, st)
		x += f.Width
	}
	return image.Pt(x, origin.Y)
}

func (f *Font) draw(c Canvas, x0, y0 int, r rune, st TextStyle) {
	cell := image.Rect(x0, y0, x0+f.Width, y0+f.Height)
	if !cell.Overlaps(c.Bounds()) {
		return
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			col := st.Background
			if f.Bit(r, x, y) {
				col = st.Foreground
			}
			if col != Transparent {
				set(c, x0+x, y0+y, col)
			}
		}
	}
}
