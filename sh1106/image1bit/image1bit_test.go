// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package image1bit

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestBit(t *testing.T) {
	if r, g, b, a := On.RGBA(); r != 65535 || g != 65535 || b != 65535 || a != 65535 {
		t.Fatal("On is not white")
	}
	if r, g, b, a := Off.RGBA(); r != 0 || g != 0 || b != 0 || a != 65535 {
		t.Fatal("Off is not black")
	}
	if s := On.String(); s != "On" {
		t.Fatal(s)
	}
	if s := Off.String(); s != "Off" {
		t.Fatal(s)
	}
}

func TestBitModel(t *testing.T) {
	data := []struct {
		c    color.Color
		want Bit
	}{
		{On, On},
		{Off, Off},
		{color.White, On},
		{color.Black, Off},
		{color.NRGBA{0x80, 0x80, 0x80, 0xFF}, On},
		{color.NRGBA{0x7F, 0x7F, 0x7F, 0xFF}, Off},
	}
	for i, line := range data {
		if got := BitModel.Convert(line.c); got != line.want {
			t.Fatalf("#%d: Convert(%v) = %v, want %v", i, line.c, got, line.want)
		}
	}
}

func TestSetBitRoundTrip(t *testing.T) {
	for _, v := range []Bit{On, Off} {
		for y := 0; y < Height; y++ {
			for x := 0; x < Width; x++ {
				f := &Frame{}
				if v == Off {
					for i := range f.Pix {
						f.Pix[i] = 0xFF
					}
				}
				before := f.Pix
				f.SetBit(x, y, v)
				if got := f.BitAt(x, y); got != v {
					t.Fatalf("BitAt(%d, %d) = %v, want %v", x, y, got, v)
				}
				diff := 0
				for i := range f.Pix {
					if f.Pix[i] != before[i] {
						diff++
						if i != (y/8)*Width+x {
							t.Fatalf("SetBit(%d, %d) changed byte %d", x, y, i)
						}
					}
				}
				if diff != 1 {
					t.Fatalf("SetBit(%d, %d) changed %d bytes", x, y, diff)
				}
			}
		}
	}
}

func TestSetBitOutside(t *testing.T) {
	f := &Frame{}
	f.SetBit(3, 3, On)
	before := f.Pix
	for _, p := range []image.Point{
		{-1, 0}, {0, -1}, {Width, 0}, {0, Height}, {-1000, 1000}, {Width, Height},
	} {
		f.SetBit(p.X, p.Y, On)
		f.Set(p.X, p.Y, color.White)
		if f.Pix != before {
			t.Fatalf("SetBit(%v) modified the frame", p)
		}
		if f.BitAt(p.X, p.Y) != Off {
			t.Fatalf("BitAt(%v) is On", p)
		}
	}
}

func TestLayout(t *testing.T) {
	f := &Frame{}
	f.SetBit(0, 0, On)
	if f.Pix[0] != 0x01 {
		t.Fatalf("top-left: %#x", f.Pix[0])
	}
	f.Clear()
	f.SetBit(127, 63, On)
	if f.Pix[Size-1] != 0x80 {
		t.Fatalf("bottom-right: %#x", f.Pix[Size-1])
	}
	if got := f.Page(7)[127]; got != 0x80 {
		t.Fatalf("Page(7)[127] = %#x", got)
	}
	f.SetBit(5, 9, On)
	if f.Page(1)[5] != 0x02 {
		t.Fatalf("Page(1)[5] = %#x", f.Page(1)[5])
	}
}

func TestClear(t *testing.T) {
	f := &Frame{}
	draw.Draw(f, f.Bounds(), image.White, image.Point{}, draw.Src)
	for i, b := range f.Pix {
		if b != 0xFF {
			t.Fatalf("Pix[%d] = %#x after white fill", i, b)
		}
	}
	f.Clear()
	if f.Pix != [Size]byte{} {
		t.Fatal("Clear left bits set")
	}
}
