// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package physic declares the handful of physical units used by the SPI
// transport.
package physic

import (
	"strconv"
	"time"
)

// Frequency is a measurement of cycles per second, stored as an int64 micro
// Hertz.
type Frequency int64

// String returns the frequency formatted in Hertz.
func (f Frequency) String() string {
	return strconv.FormatInt(int64(f/Hertz), 10) + "Hz"
}

// Duration returns the duration of one cycle at this frequency.
func (f Frequency) Duration() time.Duration {
	if f == 0 {
		return 0
	}
	return time.Second * time.Duration(Hertz) / time.Duration(f)
}

const (
	// MicroHertz is 1.
	MicroHertz Frequency = 1
	MilliHertz Frequency = 1000 * MicroHertz
	Hertz      Frequency = 1000 * MilliHertz
	KiloHertz  Frequency = 1000 * Hertz
	MegaHertz  Frequency = 1000 * KiloHertz
	GigaHertz  Frequency = 1000 * MegaHertz
)
