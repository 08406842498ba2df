// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import (
	"sync/atomic"
	"time"
)

// defaultPollInterval is how often Wait re-reads STATUS while polling for a
// ready buffer.
const defaultPollInterval = 500 * time.Microsecond

// Cancel requests that any in-progress or future Wait call return
// immediately with WaitCancelled. It is safe to call from a different
// goroutine than the one blocked in Wait, and from a signal handler's
// equivalent (it only performs an atomic store, no allocation or locking).
func (d *Device) Cancel() {
	atomic.StoreInt32(&d.cancelled, 1)
}

// resetCancel clears a pending cancellation so a later Wait is not
// immediately preempted by a stale request.
func (d *Device) resetCancel() {
	atomic.StoreInt32(&d.cancelled, 0)
}

// Wait blocks until the master board reports a ready buffer, the timeout
// elapses, or Cancel is called. Only the master's STATUS is polled; the
// slave's ready mask is not consulted. A non-positive timeout waits forever.
//
// Only one Wait may be outstanding on a Device at a time; a second call
// while one is already running returns WaitBusy immediately. Concurrency is
// enforced with an atomic compare-and-swap rather than a mutex so that a
// busy check never blocks: Wait callers want to know immediately, not queue
// up behind each other.
//
// A cancellation requested before Wait is called is consumed by this call
// and does not leak into the next one.
func (d *Device) Wait(timeout time.Duration) (WaitStatus, uint8, error) {
	if !atomic.CompareAndSwapInt32(&d.waiting, 0, 1) {
		return WaitBusy, 0, nil
	}
	defer atomic.StoreInt32(&d.waiting, 0)

	if atomic.CompareAndSwapInt32(&d.cancelled, 1, 0) {
		return WaitCancelled, 0, nil
	}

	interval := d.pollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	deadline := time.Now().Add(timeout)
	for {
		st, err := d.master.readStatus()
		if err != nil {
			return WaitReady, 0, err
		}
		if st.readyMask != 0 {
			return WaitReady, st.readyMask, nil
		}
		if atomic.CompareAndSwapInt32(&d.cancelled, 1, 0) {
			return WaitCancelled, 0, nil
		}
		if timeout > 0 && time.Now().After(deadline) {
			return WaitTimedOut, 0, nil
		}
		time.Sleep(interval)
	}
}
