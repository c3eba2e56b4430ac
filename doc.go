// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oledmon is a container for the packages of a system monitor shown
// on a SH1106 OLED display over I²C.
//
// The display pipeline is: i2cbus (transport), i2cscan (bus probing),
// sh1106/image1bit (framebuffer), gfx (drawing), sh1106 (controller driver)
// and sysmon (application). cmd/oledmon is the executable.
package oledmon
