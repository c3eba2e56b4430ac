// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cbus serializes write transactions on an I²C bus and bounds each
// of them with a timeout.
//
// The Transport can be used directly, for example to probe every address on
// the bus, until a device driver claims it. Once claimed, only the returned
// Dev handle may issue traffic, until it is closed.
package i2cbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// MaxAddr is the highest 7-bit address.
const MaxAddr = 0x7F

// Config is the bus configuration.
type Config struct {
	// SDA and SCL are the expected data and clock pin names. They are checked
	// against the bus when it reports its pins. Empty disables the check.
	SDA string
	SCL string
	// Frequency is the bus clock. 0 keeps the bus default.
	Frequency physic.Frequency
	// PullUps records whether pull-ups are enabled on SDA/SCL. On Linux hosts
	// they are part of the board wiring and can't be changed from userland.
	PullUps bool
}

// DefaultConfig matches an ESP32 style wiring: SDA on GPIO21, SCL on GPIO22,
// standard mode clock.
var DefaultConfig = Config{
	SDA:       "GPIO21",
	SCL:       "GPIO22",
	Frequency: 100 * physic.KiloHertz,
	PullUps:   true,
}

// Transport owns an I²C bus.
type Transport struct {
	bus i2c.Bus
	log logrus.FieldLogger

	// sem is held for the whole duration of a host transaction, including one
	// that outlived its timeout.
	sem chan struct{}

	mu    sync.Mutex
	owner *Dev
}

// New returns a Transport for b. cfg may be nil to use DefaultConfig, log may
// be nil to use the standard logger.
func New(b i2c.Bus, cfg *Config, log logrus.FieldLogger) (*Transport, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if p, ok := b.(i2c.Pins); ok {
		if err := checkPin("SDA", p.SDA(), cfg.SDA); err != nil {
			return nil, err
		}
		if err := checkPin("SCL", p.SCL(), cfg.SCL); err != nil {
			return nil, err
		}
	}
	if cfg.Frequency != 0 {
		if err := b.SetSpeed(cfg.Frequency); err != nil {
			log.WithError(err).Warnf("i2cbus: keeping %s default speed", b)
		}
	}
	log.WithFields(logrus.Fields{
		"bus":      b.String(),
		"sda":      cfg.SDA,
		"scl":      cfg.SCL,
		"freq":     cfg.Frequency.String(),
		"pull_ups": cfg.PullUps,
	}).Debug("i2cbus: ready")
	return &Transport{bus: b, log: log, sem: make(chan struct{}, 1)}, nil
}

func (t *Transport) String() string {
	return t.bus.String()
}

// Write issues START, address+W, w, STOP to the peripheral at addr.
//
// timeout bounds the whole transaction, including the wait for a previous
// transaction to complete. 0 means no timeout.
//
// It fails with ErrClaimed while a Dev handle is live.
func (t *Transport) Write(addr uint16, w []byte, timeout time.Duration) error {
	return t.tx(nil, addr, w, timeout)
}

// Claim returns the exclusive handle to the peripheral at addr. Only one
// handle can be live at a time; closing it returns bus access to the
// Transport.
//
// timeout applies to every transaction done through the handle.
func (t *Transport) Claim(addr uint16, timeout time.Duration) (*Dev, error) {
	if addr > MaxAddr {
		return nil, fmt.Errorf("i2cbus: invalid 7-bit address 0x%X", addr)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.owner != nil {
		return nil, ErrClaimed
	}
	t.owner = &Dev{t: t, addr: addr, timeout: timeout}
	return t.owner, nil
}

func (t *Transport) release(d *Dev) {
	t.mu.Lock()
	if t.owner == d {
		t.owner = nil
	}
	t.mu.Unlock()
}

func (t *Transport) ownedBy(d *Dev) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.owner == d
}

// tx runs one write on behalf of owner, nil for the Transport itself.
func (t *Transport) tx(owner *Dev, addr uint16, w []byte, timeout time.Duration) error {
	if addr > MaxAddr {
		return fmt.Errorf("i2cbus: invalid 7-bit address 0x%X", addr)
	}
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case t.sem <- struct{}{}:
	case <-expired:
		return &BusError{Kind: Timeout, Addr: addr}
	}
	// Checked with the bus held, so no write starts after a Claim.
	if !t.ownedBy(owner) {
		<-t.sem
		return ErrClaimed
	}
	if expired == nil {
		defer func() { <-t.sem }()
		return t.wrap(addr, t.bus.Tx(addr, w, nil))
	}

	// The host call can outlive the timeout; it must not see the caller's
	// buffer being reused.
	buf := append([]byte(nil), w...)
	done := make(chan error, 1)
	go func() {
		defer func() { <-t.sem }()
		done <- t.bus.Tx(addr, buf, nil)
	}()
	select {
	case err := <-done:
		return t.wrap(addr, err)
	case <-expired:
		t.log.WithField("addr", fmt.Sprintf("0x%02X", addr)).Debug("i2cbus: transaction timed out")
		return &BusError{Kind: Timeout, Addr: addr}
	}
}

func (t *Transport) wrap(addr uint16, err error) error {
	if err == nil {
		return nil
	}
	return &BusError{Kind: classify(err), Addr: addr, Err: err}
}

func checkPin(name string, p gpio.PinIO, want string) error {
	if want == "" || p == nil || p == gpio.INVALID {
		return nil
	}
	if p.Name() == want || fmt.Sprintf("GPIO%d", p.Number()) == want {
		return nil
	}
	return fmt.Errorf("i2cbus: %s is %s, expected %s", name, p.Name(), want)
}

// Dev is the exclusive handle to one peripheral on a claimed Transport.
type Dev struct {
	t       *Transport
	addr    uint16
	timeout time.Duration
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s(0x%02X)", d.t, d.addr)
}

// Addr returns the peripheral address.
func (d *Dev) Addr() uint16 {
	return d.addr
}

// Tx implements conn.Conn. The transport is write only, r must be empty.
func (d *Dev) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("i2cbus: reads are not supported")
	}
	return d.t.tx(d, d.addr, w, d.timeout)
}

// Write implements io.Writer.
func (d *Dev) Write(b []byte) (int, error) {
	if err := d.Tx(b, nil); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Duplex implements conn.Conn.
func (d *Dev) Duplex() conn.Duplex {
	return conn.Half
}

// Close releases the claim on the Transport. Transactions on a closed Dev
// fail with ErrClaimed.
func (d *Dev) Close() error {
	d.t.release(d)
	return nil
}

var _ conn.Conn = &Dev{}
