// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gfx

import (
	"image"
	"math/bits"
)

// Rectangle draws the inclusive rectangle with corners p0 and p1. The corners
// can be given in any order.
//
// The fill is painted first, then the stroke on the inside of the box.
func Rectangle(c Canvas, p0, p1 image.Point, s PrimitiveStyle) {
	x0, x1 := min(p0.X, p1.X), max(p0.X, p1.X)
	y0, y1 := min(p0.Y, p1.Y), max(p0.Y, p1.Y)
	if s.Fill != Transparent {
		fill(c, x0, y0, x1, y1, s.Fill)
	}
	w := s.StrokeWidth
	if s.Stroke == Transparent || w < 1 {
		return
	}
	// 2*w >= size, written so it holds for any int corners.
	if uint64(w) > span(x0, x1)/2 || uint64(w) > span(y0, y1)/2 {
		fill(c, x0, y0, x1, y1, s.Stroke)
		return
	}
	fill(c, x0, y0, x1, y0+w-1, s.Stroke)
	fill(c, x0, y1-w+1, x1, y1, s.Stroke)
	fill(c, x0, y0+w, x0+w-1, y1-w, s.Stroke)
	fill(c, x1-w+1, y0+w, x1, y1-w, s.Stroke)
}

// fill paints the inclusive box, clipped to the canvas.
func fill(c Canvas, x0, y0, x1, y1 int, col Color) {
	b := c.Bounds()
	x0, y0 = max(x0, b.Min.X), max(y0, b.Min.Y)
	x1, y1 = min(x1, b.Max.X-1), min(y1, b.Max.Y-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			set(c, x, y, col)
		}
	}
}

// span returns |b-a| without overflowing.
func span(a, b int) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(b) - uint64(a)
}

// Line draws a line from p0 to p1 using Bresenham's algorithm over the part of
// the segment that can reach the canvas.
//
// The end points are put in a canonical order first so the pixels drawn do not
// depend on the direction. A stroke wider than 1 is drawn as a stack of
// parallel lines centered on the main one.
func Line(c Canvas, p0, p1 image.Point, s PrimitiveStyle) {
	w := s.StrokeWidth
	if s.Stroke == Transparent || w < 1 {
		return
	}
	if p1.X < p0.X || (p1.X == p0.X && p1.Y < p0.Y) {
		p0, p1 = p1, p0
	}
	steep := span(p0.Y, p1.Y) > span(p0.X, p1.X)
	lo := -(w - 1) / 2
	hi := lo + w - 1

	// Pixels of the main line whose stroke can touch the canvas.
	b := c.Bounds()
	reach := b
	if steep {
		reach.Min.X, reach.Max.X = b.Min.X-hi, b.Max.X-lo
	} else {
		reach.Min.Y, reach.Max.Y = b.Min.Y-hi, b.Max.Y-lo
	}
	p0, p1, ok := clip(p0, p1, reach)
	if !ok {
		return
	}

	dx := p1.X - p0.X
	dy := abs(p1.Y - p0.Y)
	sy := 1
	if p1.Y < p0.Y {
		sy = -1
	}
	x, y := p0.X, p0.Y
	e := dx - dy
	for {
		if steep {
			for o := max(lo, b.Min.X-x); o <= min(hi, b.Max.X-1-x); o++ {
				set(c, x+o, y, s.Stroke)
			}
		} else {
			for o := max(lo, b.Min.Y-y); o <= min(hi, b.Max.Y-1-y); o++ {
				set(c, x, y+o, s.Stroke)
			}
		}
		if x == p1.X && y == p1.Y {
			return
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x++
		}
		if e2 < dx {
			e += dx
			y += sy
		}
	}
}

// Outcodes of a point relative to a clipping rectangle.
const (
	left = 1 << iota
	right
	above
	below
)

func outcode(p image.Point, r image.Rectangle) int {
	c := 0
	if p.X < r.Min.X {
		c |= left
	} else if p.X >= r.Max.X {
		c |= right
	}
	if p.Y < r.Min.Y {
		c |= above
	} else if p.Y >= r.Max.Y {
		c |= below
	}
	return c
}

// clip returns the part of the segment p0-p1 inside r (Cohen-Sutherland).
// Intersections are computed exactly on the original segment and rounded to
// the nearest pixel. Segments fully inside r are returned unchanged.
func clip(p0, p1 image.Point, r image.Rectangle) (image.Point, image.Point, bool) {
	a, b := p0, p1
	// Each move puts one coordinate on an edge; rounding near a corner can
	// leave the other one a pixel out, which drawing clips anyway.
	for i := 0; i < 4; i++ {
		ca, cb := outcode(a, r), outcode(b, r)
		if ca|cb == 0 {
			break
		}
		if ca&cb != 0 {
			return a, b, false
		}
		if ca != 0 {
			a = onEdge(p0, p1, ca, r)
		} else {
			b = onEdge(p0, p1, cb, r)
		}
	}
	return a, b, true
}

// onEdge returns the point of p0-p1 on the edge of r given by code.
func onEdge(p0, p1 image.Point, code int, r image.Rectangle) image.Point {
	switch {
	case code&left != 0:
		return image.Pt(r.Min.X, along(p0.Y, p1.Y, span(p0.X, r.Min.X), span(p0.X, p1.X)))
	case code&right != 0:
		return image.Pt(r.Max.X-1, along(p0.Y, p1.Y, span(p0.X, r.Max.X-1), span(p0.X, p1.X)))
	case code&above != 0:
		return image.Pt(along(p0.X, p1.X, span(p0.Y, r.Min.Y), span(p0.Y, p1.Y)), r.Min.Y)
	default:
		return image.Pt(along(p0.X, p1.X, span(p0.Y, r.Max.Y-1), span(p0.Y, p1.Y)), r.Max.Y-1)
	}
}

// along returns v0 + (v1-v0)*num/den rounded to nearest, for num <= den.
func along(v0, v1 int, num, den uint64) int {
	if den == 0 {
		return v0
	}
	hi, lo := bits.Mul64(span(v0, v1), num)
	lo, carry := bits.Add64(lo, den/2, 0)
	q, _ := bits.Div64(hi+carry, lo, den)
	// The result lies between v0 and v1, so the wrapping arithmetic is exact.
	if v1 < v0 {
		return int(uint64(v0) - q)
	}
	return int(uint64(v0) + q)
}
