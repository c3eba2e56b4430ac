// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1106

import (
	"errors"
	"image"
	"syscall"
	"testing"

	"github.com/GermanBionicSystems/oledmon/i2cbus"
	"github.com/GermanBionicSystems/oledmon/sh1106/image1bit"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus/hooks/test"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

var initSeq = []byte{
	0x00,
	0xAE,
	0xD5, 0x80,
	0xA8, 0x3F,
	0xD3, 0x00,
	0x40,
	0xAD, 0x8B,
	0x20, 0x02,
	0xA1,
	0xC8,
	0xDA, 0x12,
	0x81, 0x80,
	0xD9, 0xF1,
	0xDB, 0x40,
	0xA4,
	0xA6,
	0xAF,
}

func newRecorded(t *testing.T) (*Dev, *i2ctest.Record) {
	t.Helper()
	rec := &i2ctest.Record{}
	log, _ := test.NewNullLogger()
	d := New(&i2c.Dev{Bus: rec, Addr: DefaultAddr}, nil, log)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	rec.Ops = nil
	return d, rec
}

// pages splits the recorded flush into the 8 command and data bursts.
func pages(t *testing.T, ops []i2ctest.IO) (cmds, data [][]byte) {
	t.Helper()
	if len(ops) != 2*image1bit.Pages {
		t.Fatalf("%d transactions, want %d", len(ops), 2*image1bit.Pages)
	}
	for i, op := range ops {
		if op.Addr != DefaultAddr {
			t.Fatalf("op %d went to 0x%02X", i, op.Addr)
		}
		if i%2 == 0 {
			cmds = append(cmds, op.W)
		} else {
			data = append(data, op.W)
		}
	}
	return cmds, data
}

func TestInit(t *testing.T) {
	rec := &i2ctest.Record{}
	log, _ := test.NewNullLogger()
	d := New(&i2c.Dev{Bus: rec, Addr: DefaultAddr}, nil, log)
	if d.State() != Uninitialized {
		t.Fatal(d.State())
	}
	for i := 0; i < 2; i++ {
		if err := d.Init(); err != nil {
			t.Fatal(err)
		}
		if d.State() != Initialized {
			t.Fatal(d.State())
		}
	}
	want := []i2ctest.IO{
		{Addr: DefaultAddr, W: initSeq},
		{Addr: DefaultAddr, W: initSeq},
	}
	if diff := cmp.Diff(want, rec.Ops); diff != "" {
		t.Fatalf("ops (-want +got):\n%s", diff)
	}
}

func TestFlush_notInitialized(t *testing.T) {
	rec := &i2ctest.Record{}
	d := New(&i2c.Dev{Bus: rec, Addr: DefaultAddr}, nil, nil)
	d.SetBit(0, 0, image1bit.On)
	if d.State() != Uninitialized {
		t.Fatal(d.State())
	}
	if err := d.Flush(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("got %v", err)
	}
	if len(rec.Ops) != 0 {
		t.Fatalf("%d transactions before init", len(rec.Ops))
	}
}

func TestFlush_empty(t *testing.T) {
	d, rec := newRecorded(t)
	d.Clear()
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	cmds, data := pages(t, rec.Ops)
	total := 0
	for p := 0; p < image1bit.Pages; p++ {
		if diff := cmp.Diff([]byte{0x00, 0xB0 | byte(p), 0x10, 0x02}, cmds[p]); diff != "" {
			t.Fatalf("page %d command (-want +got):\n%s", p, diff)
		}
		want := make([]byte, 1+image1bit.PageSize)
		want[0] = 0x40
		if diff := cmp.Diff(want, data[p]); diff != "" {
			t.Fatalf("page %d data (-want +got):\n%s", p, diff)
		}
		total += len(cmds[p]) + len(data[p])
	}
	if total != 8*(4+129) {
		t.Fatalf("payload is %d bytes", total)
	}
}

func TestFlush_corners(t *testing.T) {
	data := []struct {
		x, y  int
		page  int
		index int
		value byte
	}{
		{0, 0, 0, 0, 0x01},
		{127, 63, 7, 127, 0x80},
		{64, 17, 2, 64, 0x02},
	}
	for _, line := range data {
		d, rec := newRecorded(t)
		d.SetBit(line.x, line.y, image1bit.On)
		if err := d.Flush(); err != nil {
			t.Fatal(err)
		}
		_, bursts := pages(t, rec.Ops)
		for p, b := range bursts {
			for i, v := range b[1:] {
				want := byte(0)
				if p == line.page && i == line.index {
					want = line.value
				}
				if v != want {
					t.Fatalf("(%d, %d): page %d byte %d = %#x, want %#x", line.x, line.y, p, i, v, want)
				}
			}
		}
	}
}

func TestFlush_columnOffset(t *testing.T) {
	rec := &i2ctest.Record{}
	opts := DefaultOpts
	opts.ColumnOffset = 0x12
	d := New(&i2c.Dev{Bus: rec, Addr: DefaultAddr}, &opts, nil)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	rec.Ops = nil
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	cmds, _ := pages(t, rec.Ops)
	if diff := cmp.Diff([]byte{0x00, 0xB3, 0x11, 0x02}, cmds[3]); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestState(t *testing.T) {
	d, _ := newRecorded(t)
	if d.State() != Initialized {
		t.Fatal(d.State())
	}
	d.SetBit(1, 1, image1bit.On)
	if d.State() != Dirty {
		t.Fatal(d.State())
	}
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	if d.State() != Clean {
		t.Fatal(d.State())
	}
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	if d.State() != Clean {
		t.Fatal(d.State())
	}
	if d.BitAt(1, 1) != image1bit.On {
		t.Fatal("Init lost the framebuffer")
	}
	d.Clear()
	if d.State() != Dirty {
		t.Fatal(d.State())
	}
	for s, want := range map[State]string{Uninitialized: "uninitialized", Initialized: "initialized", Dirty: "dirty", Clean: "clean"} {
		if s.String() != want {
			t.Fatal(s)
		}
	}
}

// failBus fails every transaction after the first ok ones.
type failBus struct {
	ok  int
	err error
	n   int
}

func (f *failBus) String() string { return "fail" }

func (f *failBus) Tx(addr uint16, w, r []byte) error {
	f.n++
	if f.n > f.ok {
		return f.err
	}
	return nil
}

func (f *failBus) SetSpeed(physic.Frequency) error { return nil }

func TestFlush_transportError(t *testing.T) {
	b := &failBus{ok: 3, err: syscall.ENXIO}
	log, _ := test.NewNullLogger()
	tr, err := i2cbus.New(b, nil, log)
	if err != nil {
		t.Fatal(err)
	}
	d, err := NewI2C(tr, nil, log)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	d.SetBit(0, 0, image1bit.On)
	err = d.Flush()
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("got %v", err)
	}
	if te.Op != "page 1 address" {
		t.Fatalf("failed at %q", te.Op)
	}
	if !errors.Is(err, i2cbus.ErrNack) {
		t.Fatalf("%v is not a nack", err)
	}
	if d.State() != Dirty {
		t.Fatal(d.State())
	}
	// A retry starts from page 0.
	b.ok, b.n = 100, 0
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	if b.n != 16 {
		t.Fatalf("%d transactions", b.n)
	}
	if d.State() != Clean {
		t.Fatal(d.State())
	}
}

func TestInit_transportError(t *testing.T) {
	log, _ := test.NewNullLogger()
	d := New(&i2c.Dev{Bus: &failBus{err: syscall.ETIMEDOUT}, Addr: DefaultAddr}, nil, log)
	err := d.Init()
	var te *TransportError
	if !errors.As(err, &te) || te.Op != "init" {
		t.Fatalf("got %v", err)
	}
	if d.State() != Uninitialized {
		t.Fatal(d.State())
	}
}

func TestNewI2C_claims(t *testing.T) {
	log, _ := test.NewNullLogger()
	tr, _ := i2cbus.New(&i2ctest.Record{}, nil, log)
	d, err := NewI2C(tr, nil, log)
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Write(0x68, []byte{0}, 0); !errors.Is(err, i2cbus.ErrClaimed) {
		t.Fatalf("got %v", err)
	}
	if _, err := NewI2C(tr, nil, log); !errors.Is(err, i2cbus.ErrClaimed) {
		t.Fatalf("got %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if err := tr.Write(0x68, []byte{0}, 0); err != nil {
		t.Fatal(err)
	}
}

func TestHalt(t *testing.T) {
	d, rec := newRecorded(t)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if err := d.SetContrast(0x10); err != nil {
		t.Fatal(err)
	}
	if err := d.Invert(true); err != nil {
		t.Fatal(err)
	}
	want := []i2ctest.IO{
		{Addr: DefaultAddr, W: []byte{0x00, 0xAE}},
		{Addr: DefaultAddr, W: []byte{0x00, 0xAF, 0x81, 0x10}},
		{Addr: DefaultAddr, W: []byte{0x00, 0xA7}},
	}
	if diff := cmp.Diff(want, rec.Ops); diff != "" {
		t.Fatalf("ops (-want +got):\n%s", diff)
	}
}

func TestDraw(t *testing.T) {
	d, rec := newRecorded(t)
	img := &image1bit.Frame{}
	img.SetBit(2, 8, image1bit.On)
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	_, data := pages(t, rec.Ops)
	if data[1][1+2] != 0x01 {
		t.Fatalf("page 1: %#x", data[1][3])
	}

	// Generic path.
	rec.Ops = nil
	if err := d.Draw(image.Rect(0, 0, 4, 4), image.White, image.Point{}); err != nil {
		t.Fatal(err)
	}
	_, data = pages(t, rec.Ops)
	if diff := cmp.Diff([]byte{0x0F, 0x0F, 0x0F, 0x0F, 0x00}, data[0][1:6]); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if data[1][3] != 0x01 {
		t.Fatal("Draw lost previous content")
	}
}

func TestWrite(t *testing.T) {
	d, rec := newRecorded(t)
	if _, err := d.Write(make([]byte, 10)); err == nil {
		t.Fatal("expected length error")
	}
	pix := make([]byte, image1bit.Size)
	pix[image1bit.Size-1] = 0xFF
	if n, err := d.Write(pix); err != nil || n != image1bit.Size {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	_, data := pages(t, rec.Ops)
	if data[7][128] != 0xFF {
		t.Fatalf("%#x", data[7][128])
	}
	if d.BitAt(127, 56) != image1bit.On {
		t.Fatal("framebuffer not updated")
	}
}

func TestString(t *testing.T) {
	d, _ := newRecorded(t)
	if s := d.String(); s == "" {
		t.Fatal("empty String()")
	}
	if d.ColorModel() != image1bit.BitModel {
		t.Fatal("ColorModel")
	}
}
