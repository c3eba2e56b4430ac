// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sysmon is the system monitor application: it scans the I²C bus,
// paints a static monitor screen on a SH1106 OLED and idles.
package sysmon

import (
	"context"
	"time"

	"github.com/GermanBionicSystems/oledmon/i2cbus"
	"github.com/GermanBionicSystems/oledmon/i2cscan"
	"github.com/GermanBionicSystems/oledmon/sh1106"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
)

// Boot brings up the transport on bus, scans it, then initializes, paints
// and flushes the display.
//
// On success the returned Dev owns the bus. Any error aborts the sequence.
func Boot(bus i2c.Bus, cfg *Config, s Stats, log logrus.FieldLogger) (*sh1106.Dev, []uint16, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	t, err := i2cbus.New(bus, cfg.BusConfig(), log)
	if err != nil {
		return nil, nil, err
	}
	found, err := i2cscan.Scan(t, cfg.ScanOpts(), log)
	if err != nil {
		return nil, found, err
	}
	d, err := sh1106.NewI2C(t, cfg.DisplayOpts(), log)
	if err != nil {
		return nil, found, err
	}
	if err := d.Init(); err != nil {
		_ = d.Close()
		return nil, found, err
	}
	d.Clear()
	Paint(d, s)
	if err := d.Flush(); err != nil {
		_ = d.Close()
		return nil, found, err
	}
	log.Info("Success: Display updated.")
	return d, found, nil
}

// Idle sleeps in interval steps until ctx is done.
func Idle(ctx context.Context, interval time.Duration, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			log.Debug("sysmon: idle")
		}
	}
}
