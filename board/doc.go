// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package board drives a pair of FPGA radio digitizer boards (a master and
// an optional slave) over a four-byte SPI command/response protocol.
//
// Each board samples eight analog channels, runs an on-FPGA phased-array
// trigger, and stores triggered waveforms in four ring buffers. This package
// configures a board, arms its trigger, detects which ring buffers hold
// events, reads out synchronized master/slave event pairs, keeps the
// software event count consistent with the hardware's, and runs the
// reset/ADC-alignment procedure.
//
// The SPI transaction engine (precomputed frame tables, bounded transfer
// batching, the synchronized master/slave command protocol, the
// buffer-ready/read-next state machine, and the two-board metadata
// assembly) is the core of the package; configuration setters and the CLI
// under cmd/beaconctl are thin callers on top of it.
package board
