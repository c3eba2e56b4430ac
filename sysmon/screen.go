// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sysmon

import (
	"image"

	"github.com/GermanBionicSystems/oledmon/gfx"
)

// Title is the inverted header text.
const Title = " SYSTEM MONITOR "

var (
	headerStyle = gfx.PrimitiveStyle{Fill: gfx.On}
	titleStyle  = gfx.TextStyle{Font: gfx.Font6x12, Foreground: gfx.Off}
	textStyle   = gfx.TextStyle{Font: gfx.Font6x12, Foreground: gfx.On}
	ruleStyle   = gfx.PrimitiveStyle{Stroke: gfx.On, StrokeWidth: 1}
)

// Paint draws the monitor screen: an inverted header bar, the two data lines
// and a horizontal rule.
func Paint(c gfx.Canvas, s Stats) {
	gfx.Rectangle(c, image.Pt(0, 0), image.Pt(127, 13), headerStyle)
	gfx.Text(c, image.Pt(10, 2), Title, titleStyle)
	gfx.Text(c, image.Pt(5, 25), s.CPULine(), textStyle)
	gfx.Text(c, image.Pt(5, 40), s.RAMLine(), textStyle)
	gfx.Line(c, image.Pt(0, 55), image.Pt(127, 55), ruleStyle)
}
