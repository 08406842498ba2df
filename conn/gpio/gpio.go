// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpio defines digital pins.
//
// The GPIO pins are described in their logical functionality, not in their
// physical position.
package gpio

import (
	"errors"
	"fmt"
	"time"

	"github.com/beacontau/beacon/conn/pin"
)

// Level is the level of the pin: Low or High.
type Level bool

const (
	// Low represents 0v.
	Low Level = false
	// High represents Vin, generally 3.3v or 5v.
	High Level = true
)

func (l Level) String() string {
	if l == Low {
		return "Low"
	}
	return "High"
}

// Pull specifies the internal pull-up or pull-down for a pin set as input.
type Pull uint8

// Acceptable pull values.
const (
	Float        Pull = 0 // Let the input float
	Down         Pull = 1 // Apply pull-down
	Up           Pull = 2 // Apply pull-up
	PullNoChange Pull = 3 // Do not change the previous pull resistor setting or an unknown value
)

func (i Pull) String() string {
	switch i {
	case Float:
		return "Float"
	case Down:
		return "Down"
	case Up:
		return "Up"
	default:
		return "PullNoChange"
	}
}

// Edge specifies if an input pin should have edge detection enabled.
//
// Only enable it when needed, since this causes system interrupts.
type Edge uint8

// Acceptable edge detection values.
const (
	NoEdge  Edge = 0
	Rising  Edge = 1
	Falling Edge = 2
	Both    Edge = 3
)

func (i Edge) String() string {
	switch i {
	case NoEdge:
		return "None"
	case Rising:
		return "Rising"
	case Falling:
		return "Falling"
	default:
		return "Both"
	}
}

// PinIn is an input GPIO pin.
//
// host/sysfs.Pin implements it. The board package reads no input line:
// Wait learns of ready buffers by polling the STATUS register.
type PinIn interface {
	pin.Pin
	// In sets up a pin as an input. Use NoEdge if WaitForEdge will not be
	// called, to avoid generating unneeded hardware interrupts.
	In(pull Pull, edge Edge) error
	// Read returns the current pin level.
	Read() Level
	// WaitForEdge waits for the next edge, or returns false if timeout
	// elapses first. A negative timeout waits forever.
	WaitForEdge(timeout time.Duration) bool
}

// PinOut is an output GPIO pin.
//
// The driver uses this for the board power-enable line.
type PinOut interface {
	pin.Pin
	// Out sets a pin as output if it wasn't already and sets the level.
	Out(l Level) error
}

// PinIO is a GPIO pin that supports both input and output.
type PinIO interface {
	pin.Pin
	In(pull Pull, edge Edge) error
	Read() Level
	WaitForEdge(timeout time.Duration) bool
	Out(l Level) error
}

// INVALID implements PinIO and fails on all access.
var INVALID PinIO = invalidPin{}

// BasicPin implements Pin as a non-functional pin, used for testing and as a
// placeholder when a board has no interrupt line wired up.
type BasicPin struct {
	N string
}

func (b *BasicPin) String() string     { return b.N }
func (b *BasicPin) Name() string       { return b.N }
func (b *BasicPin) Number() int        { return -1 }
func (b *BasicPin) Function() string   { return "" }
func (b *BasicPin) In(Pull, Edge) error {
	return fmt.Errorf("%s cannot be used as input", b.N)
}
func (b *BasicPin) Read() Level                          { return Low }
func (b *BasicPin) WaitForEdge(timeout time.Duration) bool { return false }
func (b *BasicPin) Out(Level) error {
	return fmt.Errorf("%s cannot be used as output", b.N)
}

var errInvalidPin = errors.New("gpio: invalid pin")

type invalidPin struct{}

func (invalidPin) Number() int                          { return -1 }
func (invalidPin) String() string                       { return "INVALID" }
func (invalidPin) Name() string                          { return "INVALID" }
func (invalidPin) Function() string                      { return "" }
func (invalidPin) In(Pull, Edge) error                   { return errInvalidPin }
func (invalidPin) Read() Level                           { return Low }
func (invalidPin) WaitForEdge(timeout time.Duration) bool { return false }
func (invalidPin) Out(Level) error                       { return errInvalidPin }

var _ PinIn = INVALID
var _ PinOut = INVALID
var _ PinIO = INVALID
