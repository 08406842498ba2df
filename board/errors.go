// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import "errors"

// Sentinel errors checkable with errors.Is. Desync is deliberately not one
// of these: a cross-board or counter mismatch is recorded in Header.Sync and
// logged, never returned as an error, per the readout contract.
var (
	// ErrLockHeld is returned by Open when another process already holds the
	// exclusive advisory lock on a device node.
	ErrLockHeld = errors.New("board: device node is locked by another process")

	// ErrBusy describes a wait already in progress on the handle. Wait
	// itself reports this case as WaitBusy with a nil error.
	ErrBusy = errors.New("board: a wait is already in progress on this handle")

	// ErrCancelled describes a wait ended by the cancellation flag, set
	// either before the call or during the poll loop. Wait itself reports
	// this case as WaitCancelled with a nil error.
	ErrCancelled = errors.New("board: wait was cancelled")

	// ErrNoSlave is returned by operations that require a slave board when
	// the handle was opened without one.
	ErrNoSlave = errors.New("board: no slave board configured")

	// ErrCalibrationExhausted is returned by Reset when ADC lane alignment
	// exceeds its retry budget without ever accepting a calibration pulse.
	ErrCalibrationExhausted = errors.New("board: ADC alignment exhausted its retry budget")

	// ErrClosed describes use of a handle after Close. Methods do not check
	// for a closed handle and do not return it; Close alone tracks the
	// closed state, and a second Close returns nil.
	ErrClosed = errors.New("board: handle is closed")
)
