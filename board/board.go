// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package board hands out the process wide peripherals.
//
// The peripherals can be taken exactly once per process. Whoever holds them
// owns the I²C bus.
package board

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// ErrPeripheralUnavailable is returned once the peripherals were taken.
var ErrPeripheralUnavailable = errors.New("board: peripherals already taken")

// Peripherals is the set of buses owned by the application.
type Peripherals struct {
	I2C0 i2c.BusCloser
}

// Close closes the buses. The peripherals stay taken.
func (p *Peripherals) Close() error {
	if p.I2C0 == nil {
		return nil
	}
	return p.I2C0.Close()
}

var (
	mu    sync.Mutex
	taken bool
)

// Take initializes the host drivers and opens the I²C bus by name. Use "" for
// the first available bus.
func Take(bus string) (*Peripherals, error) {
	return take(func() (i2c.BusCloser, error) {
		if _, err := host.Init(); err != nil {
			return nil, err
		}
		return i2creg.Open(bus)
	})
}

// TakeBus takes the peripherals with b as the I²C bus, for hosts without one.
func TakeBus(b i2c.BusCloser) (*Peripherals, error) {
	return take(func() (i2c.BusCloser, error) {
		return b, nil
	})
}

func take(open func() (i2c.BusCloser, error)) (*Peripherals, error) {
	mu.Lock()
	defer mu.Unlock()
	if taken {
		return nil, ErrPeripheralUnavailable
	}
	b, err := open()
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	taken = true
	return &Peripherals{I2C0: b}, nil
}
