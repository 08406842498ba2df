// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import (
	"sync"
	"testing"
	"time"
)

func TestWaitReadyWhenStatusNonzero(t *testing.T) {
	d, mc, _ := newFakeDevice(false)
	d.pollInterval = time.Millisecond
	mc.set(regStatus, 0x05)

	status, mask, err := d.Wait(time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if status != WaitReady {
		t.Fatalf("status = %v, want WaitReady", status)
	}
	if mask != 0x5 {
		t.Fatalf("mask = %#x, want 0x5", mask)
	}
}

func TestWaitTimesOut(t *testing.T) {
	d, _, _ := newFakeDevice(false)
	d.pollInterval = time.Millisecond

	status, _, err := d.Wait(5 * time.Millisecond)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if status != WaitTimedOut {
		t.Fatalf("status = %v, want WaitTimedOut", status)
	}
}

func TestWaitConsumesPendingCancelBeforePolling(t *testing.T) {
	d, mc, _ := newFakeDevice(false)
	d.pollInterval = time.Millisecond
	mc.set(regStatus, 0x01)

	d.Cancel()
	status, _, err := d.Wait(time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if status != WaitCancelled {
		t.Fatalf("status = %v, want WaitCancelled", status)
	}

	// The cancellation was consumed: a fresh Wait call is not preempted by
	// the earlier request.
	status2, _, err := d.Wait(time.Second)
	if err != nil {
		t.Fatalf("Wait (second call): %v", err)
	}
	if status2 != WaitReady {
		t.Fatalf("status = %v, want WaitReady (cancellation must not leak across calls)", status2)
	}
}

func TestWaitCancelDuringPoll(t *testing.T) {
	d, _, _ := newFakeDevice(false)
	d.pollInterval = time.Millisecond

	done := make(chan struct{})
	var status WaitStatus
	go func() {
		var err error
		status, _, err = d.Wait(time.Second)
		if err != nil {
			t.Errorf("Wait: %v", err)
		}
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	d.Cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Cancel")
	}
	if status != WaitCancelled {
		t.Fatalf("status = %v, want WaitCancelled", status)
	}
}

func TestWaitSingleWaiterReturnsBusy(t *testing.T) {
	d, _, _ := newFakeDevice(false)
	d.pollInterval = time.Millisecond

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.Wait(50 * time.Millisecond)
	}()
	time.Sleep(5 * time.Millisecond)

	status, _, err := d.Wait(time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if status != WaitBusy {
		t.Fatalf("status = %v, want WaitBusy", status)
	}
	wg.Wait()
}
