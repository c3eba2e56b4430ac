// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cbus

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
)

// Kind is the reason a bus transaction failed.
type Kind int

// Possible failure kinds.
const (
	Other Kind = iota
	// Nack means the peripheral did not acknowledge its address or a byte.
	Nack
	// Timeout means the transaction did not complete in time.
	Timeout
	// Arbitration means another master won the bus.
	Arbitration
)

func (k Kind) String() string {
	switch k {
	case Nack:
		return "nack"
	case Timeout:
		return "timeout"
	case Arbitration:
		return "arbitration lost"
	default:
		return "bus error"
	}
}

// Sentinels usable with errors.Is against a *BusError.
var (
	ErrNack        = errors.New("i2cbus: no acknowledge")
	ErrTimeout     = errors.New("i2cbus: timeout")
	ErrArbitration = errors.New("i2cbus: arbitration lost")
	// ErrClaimed is returned when the bus is owned by a device handle.
	ErrClaimed = errors.New("i2cbus: bus is claimed by a device")
)

// BusError is returned by every failed transaction.
type BusError struct {
	Kind Kind
	Addr uint16
	// Err is the error reported by the host, nil for timeouts detected by the
	// Transport itself.
	Err error
}

func (e *BusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("i2cbus: %s at 0x%02X: %v", e.Kind, e.Addr, e.Err)
	}
	return fmt.Sprintf("i2cbus: %s at 0x%02X", e.Kind, e.Addr)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel corresponding to e.Kind.
func (e *BusError) Is(target error) bool {
	switch target {
	case ErrNack:
		return e.Kind == Nack
	case ErrTimeout:
		return e.Kind == Timeout
	case ErrArbitration:
		return e.Kind == Arbitration
	}
	return false
}

// classify maps a host error onto a Kind.
//
// The Linux i2c-dev driver reports a missing acknowledge as ENXIO or
// EREMOTEIO depending on the adapter, some adapters use EIO. periph's sysfs
// layer flattens the errno into text so both forms are checked.
func classify(err error) Kind {
	var be *BusError
	if errors.As(err, &be) {
		return be.Kind
	}
	switch {
	case errors.Is(err, syscall.ENXIO), errors.Is(err, syscall.EIO):
		return Nack
	case errors.Is(err, syscall.ETIMEDOUT):
		return Timeout
	case errors.Is(err, syscall.EAGAIN):
		return Arbitration
	}
	s := err.Error()
	switch {
	case strings.Contains(s, "remote I/O error"),
		strings.Contains(s, "no such device or address"),
		strings.Contains(s, "input/output error"):
		return Nack
	case strings.Contains(s, "timed out"):
		return Timeout
	case strings.Contains(s, "resource temporarily unavailable"):
		return Arbitration
	}
	return Other
}
