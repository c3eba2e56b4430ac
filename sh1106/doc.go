// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sh1106 controls a 128x64 monochrome OLED display via a SH1106
// controller over I²C.
//
// The driver keeps a host side framebuffer. Drawing only touches the
// framebuffer; Flush uploads it page by page.
//
// The SH1106 has 132 columns of RAM for a 128 column panel, the visible window
// starts at column 2. Leaving the offset out shifts the image 2 pixels and
// wraps the leftmost strip. A SSD1306 has no offset.
//
// # State
//
// A Dev starts Uninitialized. Init moves it to Initialized, any draw marks it
// Dirty and a successful Flush marks it Clean. Flush fails with
// ErrNotInitialized before Init.
//
// # Datasheets
//
// https://cdn.velleman.eu/downloads/29/infosheets/sh1106_datasheet.pdf
package sh1106
