// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1106

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"time"

	"github.com/GermanBionicSystems/oledmon/i2cbus"
	"github.com/GermanBionicSystems/oledmon/sh1106/image1bit"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

const (
	_CHARGEPUMP          = 0xAD
	_COMSCANDEC          = 0xC8
	_COMSCANINC          = 0xC0
	_DISPLAYALLON_RESUME = 0xA4
	_DISPLAYOFF          = 0xAE
	_DISPLAYON           = 0xAF
	_INVERTDISPLAY       = 0xA7
	_MEMORYMODE          = 0x20
	_NORMALDISPLAY       = 0xA6
	_PAGESTARTADDRESS    = 0xB0
	_SEGREMAP            = 0xA0
	_SETCOMPINS          = 0xDA
	_SETCONTRAST         = 0x81
	_SETDISPLAYCLOCKDIV  = 0xD5
	_SETDISPLAYOFFSET    = 0xD3
	_SETHIGHCOLUMN       = 0x10
	_SETLOWCOLUMN        = 0x00
	_SETMULTIPLEX        = 0xA8
	_SETPRECHARGE        = 0xD9
	_SETSEGMENTREMAP     = 0xA1
	_SETSTARTLINE        = 0x40
	_SETVCOMDETECT       = 0xDB
)

const (
	i2cCmd  = 0x00 // I²C transaction has stream of command bytes
	i2cData = 0x40 // I²C transaction has stream of data bytes
)

// Addresses selectable with the SA0 pin.
const (
	DefaultAddr   = 0x3C
	AlternateAddr = 0x3D
)

// State is the driver state.
type State int

// Possible states.
const (
	Uninitialized State = iota
	Initialized
	Dirty
	Clean
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Dirty:
		return "dirty"
	case Clean:
		return "clean"
	default:
		return "uninitialized"
	}
}

// ErrNotInitialized is returned when uploading before Init.
var ErrNotInitialized = errors.New("sh1106: not initialized")

// TransportError wraps a bus failure. The panel content is unspecified
// afterward; the next Flush starts over from page 0.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sh1106: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Opts defines the options for the device.
type Opts struct {
	// The I²C address of the display.
	Addr uint16
	// Timeout bounds every bus transaction.
	Timeout time.Duration
	// ColumnOffset is the first visible column of the controller RAM. It is 2
	// for a 128 pixels wide panel.
	ColumnOffset byte
	// Contrast is the initial contrast level.
	Contrast byte
	// MirrorVertical corresponds to the COM scan direction. Try toggling this
	// if the display is flipped vertically.
	MirrorVertical bool
	// MirrorHorizontal corresponds to the segment remap. Try toggling this if
	// the display is flipped horizontally.
	MirrorHorizontal bool
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Addr:         DefaultAddr,
	Timeout:      time.Second,
	ColumnOffset: 2,
	Contrast:     0x80,
}

// Dev is an open handle to the display controller.
type Dev struct {
	c    conn.Conn
	opts Opts
	log  logrus.FieldLogger

	frame  image1bit.Frame
	state  State
	halted bool
}

// NewI2C claims the Transport for the display at opts.Addr and returns a Dev
// bound to it. The bus is released by Close.
//
// The display is not initialized; call Init.
func NewI2C(t *i2cbus.Transport, opts *Opts, log logrus.FieldLogger) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultAddr
	}
	c, err := t.Claim(addr, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("sh1106: %w", err)
	}
	return New(c, opts, log), nil
}

// New returns a Dev that sends its traffic through c. Every Tx on c must be
// a complete I²C write to the display.
func New(c conn.Conn, opts *Opts, log logrus.FieldLogger) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dev{c: c, opts: *opts, log: log}
}

func (d *Dev) String() string {
	return fmt.Sprintf("SH1106.Dev{%s, %s}", d.c, image1bit.Rect.Max)
}

// State returns the current driver state.
func (d *Dev) State() State {
	return d.state
}

// Init sends the initialization sequence as a single command burst.
//
// It can be called again at any time; the framebuffer is kept.
func (d *Dev) Init() error {
	if err := d.sendCommand(d.initCmd()...); err != nil {
		return &TransportError{Op: "init", Err: err}
	}
	d.halted = false
	if d.state == Uninitialized {
		d.state = Initialized
	}
	d.log.WithField("state", d.state).Debug("sh1106: initialized")
	return nil
}

func (d *Dev) initCmd() []byte {
	segRemap := byte(_SETSEGMENTREMAP)
	if d.opts.MirrorHorizontal {
		segRemap = _SEGREMAP
	}
	comScan := byte(_COMSCANDEC)
	if d.opts.MirrorVertical {
		comScan = _COMSCANINC
	}
	return []byte{
		_DISPLAYOFF,
		_SETDISPLAYCLOCKDIV, 0x80, // Divide ratio 1, oscillator frequency +0%
		_SETMULTIPLEX, image1bit.Height - 1,
		_SETDISPLAYOFFSET, 0x00,
		_SETSTARTLINE | 0x00,
		_CHARGEPUMP, 0x8B, // DC-DC converter on
		_MEMORYMODE, 0x02, // Page addressing
		segRemap,
		comScan,
		_SETCOMPINS, 0x12, // Alternative COM pin configuration
		_SETCONTRAST, d.opts.Contrast,
		_SETPRECHARGE, 0xF1, // Pre-charge 1 DCLK, discharge 15 DCLK
		_SETVCOMDETECT, 0x40,
		_DISPLAYALLON_RESUME,
		_NORMALDISPLAY,
		_DISPLAYON,
	}
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return image1bit.Rect
}

// SetBit sets one pixel of the framebuffer. Pixels outside the panel are
// ignored.
func (d *Dev) SetBit(x, y int, b image1bit.Bit) {
	d.frame.SetBit(x, y, b)
	d.touch()
}

// BitAt returns one pixel of the framebuffer.
func (d *Dev) BitAt(x, y int) image1bit.Bit {
	return d.frame.BitAt(x, y)
}

// Clear turns every pixel of the framebuffer Off.
func (d *Dev) Clear() {
	d.frame.Clear()
	d.touch()
}

func (d *Dev) touch() {
	if d.state != Uninitialized {
		d.state = Dirty
	}
}

// Draw implements display.Drawer.
//
// It draws synchronously, once this function returns, the display is updated.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if img, ok := src.(*image1bit.Frame); ok && r == image1bit.Rect && sp == (image.Point{}) {
		// Full frame, same encoding: fast path!
		d.frame.Pix = img.Pix
	} else {
		draw.Src.Draw(&d.frame, r, src, sp)
	}
	d.touch()
	return d.Flush()
}

// Write writes a buffer of pixels to the display.
//
// The format is the content of image1bit.Frame.Pix: each byte represents 8
// vertical pixels, in horizontal bands of 8 pixels high.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != image1bit.Size {
		return 0, fmt.Errorf("sh1106: invalid pixel stream length; expected %d bytes, got %d bytes", image1bit.Size, len(pixels))
	}
	copy(d.frame.Pix[:], pixels)
	d.touch()
	if err := d.Flush(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Flush uploads the framebuffer, one page at a time: page and column address
// commands, then the 128 bytes of the page.
func (d *Dev) Flush() error {
	if d.state == Uninitialized {
		return ErrNotInitialized
	}
	off := d.opts.ColumnOffset
	for page := 0; page < image1bit.Pages; page++ {
		err := d.sendCommand(
			_PAGESTARTADDRESS|byte(page),
			_SETHIGHCOLUMN|((off>>4)&0x0F),
			_SETLOWCOLUMN|(off&0x0F),
		)
		if err != nil {
			return &TransportError{Op: fmt.Sprintf("page %d address", page), Err: err}
		}
		if err := d.sendData(d.frame.Page(page)); err != nil {
			return &TransportError{Op: fmt.Sprintf("page %d data", page), Err: err}
		}
	}
	d.state = Clean
	d.log.Debug("sh1106: flushed")
	return nil
}

// SetContrast changes the screen contrast.
func (d *Dev) SetContrast(level byte) error {
	if err := d.sendCommand(_SETCONTRAST, level); err != nil {
		return &TransportError{Op: "contrast", Err: err}
	}
	d.opts.Contrast = level
	return nil
}

// Invert the display (black on white vs white on black).
func (d *Dev) Invert(blackOnWhite bool) error {
	b := byte(_NORMALDISPLAY)
	if blackOnWhite {
		b = _INVERTDISPLAY
	}
	if err := d.sendCommand(b); err != nil {
		return &TransportError{Op: "invert", Err: err}
	}
	return nil
}

// Halt turns off the display.
//
// Sending any other command afterward reenables the display.
func (d *Dev) Halt() error {
	d.halted = false
	if err := d.sendCommand(_DISPLAYOFF); err != nil {
		return &TransportError{Op: "halt", Err: err}
	}
	d.halted = true
	return nil
}

// Close releases the bus when the Dev was created by NewI2C.
func (d *Dev) Close() error {
	if c, ok := d.c.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (d *Dev) sendData(c []byte) error {
	if d.halted {
		// Transparently enable the display.
		if err := d.sendCommand(); err != nil {
			return err
		}
	}
	var buf [1 + image1bit.PageSize]byte
	buf[0] = i2cData
	n := copy(buf[1:], c)
	return d.c.Tx(buf[:1+n], nil)
}

func (d *Dev) sendCommand(c ...byte) error {
	if d.halted {
		// Transparently enable the display.
		c = append([]byte{_DISPLAYON}, c...)
		d.halted = false
	}
	return d.c.Tx(append([]byte{i2cCmd}, c...), nil)
}

var _ display.Drawer = &Dev{}
