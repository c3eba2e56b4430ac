// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oledsim emulates a SH1106 OLED panel sitting on an I²C bus.
//
// Panel implements i2c.Bus: it acknowledges its own address only, decodes the
// control byte protocol into the 132 columns RAM of the controller and can
// print the visible 128x64 window to a terminal using ANSI color codes, or
// snapshot it as an image.
//
// Useful to run the whole display pipeline on a workstation.
package oledsim

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"
	"syscall"

	"github.com/GermanBionicSystems/oledmon/sh1106/image1bit"
	"github.com/fogleman/gg"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Columns is the width of the controller RAM.
const Columns = 132

// VisibleOffset is the RAM column shown at the left edge of the panel.
const VisibleOffset = 2

// Opts represents the options available for the emulator.
type Opts struct {
	// Addr is the address the panel answers to. Defaults to 0x3C.
	Addr uint16
	// Out receives Render output. Defaults to a colorable stdout.
	Out     io.Writer
	Palette *ansi256.Palette

	_ struct{}
}

// Panel is the emulated controller.
type Panel struct {
	addr    uint16
	w       io.Writer
	palette ansi256.Palette

	mu       sync.Mutex
	ram      [image1bit.Pages][Columns]byte
	page     int
	col      int
	on       bool
	inverted bool
	txs      int

	buf bytes.Buffer
}

// New returns a powered off Panel with a cleared RAM.
func New(opts *Opts) *Panel {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	addr := opts.Addr
	if addr == 0 {
		addr = 0x3C
	}
	return &Panel{addr: addr, w: w, palette: *p}
}

func (p *Panel) String() string {
	return fmt.Sprintf("oledsim(0x%02X)", p.addr)
}

// Tx implements i2c.Bus.
//
// Other addresses get ENXIO, like the Linux i2c-dev driver returns for a
// missing acknowledge.
func (p *Panel) Tx(addr uint16, w, r []byte) error {
	if addr != p.addr {
		return syscall.ENXIO
	}
	if len(r) != 0 {
		return errors.New("oledsim: reads are not supported")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txs++
	if len(w) == 0 {
		return nil
	}
	switch w[0] {
	case 0x00:
		return p.commands(w[1:])
	case 0x40:
		p.data(w[1:])
		return nil
	default:
		return fmt.Errorf("oledsim: unknown control byte 0x%02X", w[0])
	}
}

// SetSpeed implements i2c.Bus.
func (p *Panel) SetSpeed(f physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser.
func (p *Panel) Close() error {
	return nil
}

// commandArgs is the number of argument bytes following multi-byte commands.
var commandArgs = map[byte]int{
	0x20: 1, // Memory mode, SSD1306 compatibility
	0x81: 1, // Contrast
	0xA8: 1, // Multiplex ratio
	0xAD: 1, // DC-DC
	0xD3: 1, // Display offset
	0xD5: 1, // Clock divide
	0xD9: 1, // Pre-charge
	0xDA: 1, // COM pins
	0xDB: 1, // VCOMH
}

func (p *Panel) commands(c []byte) error {
	for i := 0; i < len(c); i++ {
		b := c[i]
		if n, ok := commandArgs[b]; ok {
			if i+n >= len(c) {
				return fmt.Errorf("oledsim: command 0x%02X is missing its argument", b)
			}
			i += n
			continue
		}
		switch {
		case b <= 0x0F:
			p.col = p.col&0xF0 | int(b)
		case b <= 0x1F:
			p.col = p.col&0x0F | int(b&0x0F)<<4
		case b >= 0x40 && b <= 0x7F:
			// Start line is not emulated.
		case b == 0xA6:
			p.inverted = false
		case b == 0xA7:
			p.inverted = true
		case b == 0xAE:
			p.on = false
		case b == 0xAF:
			p.on = true
		case b >= 0xB0 && b <= 0xB7:
			p.page = int(b & 0x07)
		}
	}
	return nil
}

func (p *Panel) data(d []byte) {
	for _, b := range d {
		if p.col >= Columns {
			return
		}
		p.ram[p.page][p.col] = b
		p.col++
	}
}

// On reports whether the display is powered on.
func (p *Panel) On() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on
}

// Transactions returns the number of transactions addressed to the panel.
func (p *Panel) Transactions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.txs
}

// RAM returns byte col of page of the controller RAM. It returns 0 outside
// the RAM.
func (p *Panel) RAM(page, col int) byte {
	if page < 0 || page >= len(p.ram) || col < 0 || col >= Columns {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ram[page][col]
}

// Frame returns a copy of the visible window. Display power and inversion are
// not applied.
func (p *Panel) Frame() *image1bit.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := &image1bit.Frame{}
	for page := 0; page < image1bit.Pages; page++ {
		copy(f.Page(page), p.ram[page][VisibleOffset:VisibleOffset+image1bit.PageSize])
	}
	return f
}

// lit returns what the panel shows at (x, y).
func (p *Panel) lit(f *image1bit.Frame, x, y int) bool {
	return p.on && bool(f.BitAt(x, y)) != p.inverted
}

// Render prints the panel to Opts.Out.
func (p *Panel) Render() error {
	f := p.Frame()
	p.mu.Lock()
	defer p.mu.Unlock()
	// This code is designed to minimize the amount of memory allocated per call.
	p.buf.Reset()
	_, _ = p.buf.WriteString("\033[0m")
	for y := 0; y < image1bit.Height; y++ {
		for x := 0; x < image1bit.Width; x++ {
			c := color.NRGBA{0, 0, 0, 255}
			if p.lit(f, x, y) {
				c = color.NRGBA{255, 255, 255, 255}
			}
			_, _ = io.WriteString(&p.buf, p.palette.Block(c))
		}
		_, _ = p.buf.WriteString("\033[0m\n")
	}
	_, err := p.buf.WriteTo(p.w)
	return err
}

// Snapshot returns the panel as seen by a viewer, each pixel drawn as a
// scale x scale square.
func (p *Panel) Snapshot(scale int) image.Image {
	if scale < 1 {
		scale = 1
	}
	f := p.Frame()
	p.mu.Lock()
	defer p.mu.Unlock()
	dc := gg.NewContext(image1bit.Width*scale, image1bit.Height*scale)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGB(1, 1, 1)
	for y := 0; y < image1bit.Height; y++ {
		for x := 0; x < image1bit.Width; x++ {
			if p.lit(f, x, y) {
				dc.DrawRectangle(float64(x*scale), float64(y*scale), float64(scale), float64(scale))
			}
		}
	}
	dc.Fill()
	return dc.Image()
}

// SavePNG writes Snapshot(scale) to path.
func (p *Panel) SavePNG(path string, scale int) error {
	return gg.SavePNG(path, p.Snapshot(scale))
}

var _ i2c.BusCloser = &Panel{}
