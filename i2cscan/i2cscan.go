// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cscan probes every 7-bit address of an I²C bus and reports the
// ones that acknowledge.
//
// Any write that completes is treated as presence. Reserved addresses,
// including the general call address 0x00, are reported as-is.
package i2cscan

import (
	"errors"
	"time"

	"github.com/GermanBionicSystems/oledmon/i2cbus"
	"github.com/sirupsen/logrus"
)

// Writer is the part of i2cbus.Transport used to probe.
type Writer interface {
	Write(addr uint16, w []byte, timeout time.Duration) error
}

// Opts controls the scan.
type Opts struct {
	// Probe is written to each address. It may be empty for a zero-length
	// write on adapters that support SMBus quick commands.
	Probe []byte
	// Timeout bounds each probe.
	Timeout time.Duration
	// Delay is slept between probes so slow peripherals are not overwhelmed.
	Delay time.Duration
}

// DefaultOpts writes a single 0x00 byte with a 1s timeout and 10ms between
// probes.
var DefaultOpts = Opts{
	Probe:   []byte{0x00},
	Timeout: time.Second,
	Delay:   10 * time.Millisecond,
}

// Scan probes addresses 0x00 to 0x7F in ascending order and returns the ones
// that answered. Each one is logged as it is found.
//
// Per-address failures (NACK, timeout, anything else) only skip the address.
// Scan only fails when the bus is claimed by a device.
func Scan(w Writer, opts *Opts, log logrus.FieldLogger) ([]uint16, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.Info("Scanning I2C bus...")
	var found []uint16
	for addr := uint16(0); addr <= i2cbus.MaxAddr; addr++ {
		err := w.Write(addr, opts.Probe, opts.Timeout)
		switch {
		case err == nil:
			log.Infof("Found device at 0x%02X", addr)
			found = append(found, addr)
		case errors.Is(err, i2cbus.ErrClaimed):
			return found, err
		default:
			log.WithError(err).Debugf("i2cscan: 0x%02X", addr)
		}
		if opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}
	}
	return found, nil
}
