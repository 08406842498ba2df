// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import (
	"bytes"
	"testing"
	"time"
)

// TestReadEventComputesEventNumberAndApproxTriggerTime exercises a full
// ReadEvent against scripted registers matching a hardware event counter of
// 1, trigger counter of 7, and 468750 trigger-time ticks (15ms at
// BoardClockHz): the event number must come from the event counter, not the
// trigger counter, and the approximate trigger time must be the alignment
// epoch plus that duration.
func TestReadEventComputesEventNumberAndApproxTriggerTime(t *testing.T) {
	d, mc, _ := newFakeDevice(false)
	d.eventNumberBase = 1000
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d.resetEpoch = epoch

	mc.set(regEventCounterLow, 1)
	mc.set(regEventCounterHigh, 0)
	mc.set(regTrigCounterLow, 7)
	mc.set(regTrigTimeLow, 468750)
	mc.set(regTrigTimeHigh, 0)
	mc.set(regChannelBeamMasks, 0x1) // channel 0 only
	mc.setWaveform(0, []byte{1, 2, 3, 4})

	h, ev, err := d.ReadEvent(0x1, 4, 0)
	if err != nil {
		t.Fatalf("ReadEvent: %v", err)
	}

	if h.EventNumber != 1001 {
		t.Fatalf("EventNumber = %d, want 1001 (base 1000 + event counter 1)", h.EventNumber)
	}
	if h.TrigNumber != 7 {
		t.Fatalf("TrigNumber = %d, want 7", h.TrigNumber)
	}
	want := epoch.Add(15 * time.Millisecond)
	if !h.ApproxTriggerTime.Equal(want) {
		t.Fatalf("ApproxTriggerTime = %v, want %v", h.ApproxTriggerTime, want)
	}
	if !bytes.Equal(ev.Data[Master][0], []byte{1, 2, 3, 4}) {
		t.Fatalf("Data[Master][0] = %v, want [1 2 3 4]", ev.Data[Master][0])
	}
	if !bytes.Equal(ev.Data[Master][1], make([]byte, 4)) {
		t.Fatalf("Data[Master][1] = %v, want [0 0 0 0] (masked off, zero-filled)", ev.Data[Master][1])
	}
	if d.nextReadBuffer != 1 {
		t.Fatalf("nextReadBuffer = %d, want 1 after reading buffer 0", d.nextReadBuffer)
	}
}

func TestPickBufferCursorOrderNotMaskOrder(t *testing.T) {
	d, _, _ := newFakeDevice(false)
	d.nextReadBuffer = 2

	// Buffers 0 and 2 are both ready; the cursor sits at 2, so 2 comes
	// first even though bit 0 is numerically lower.
	got := d.pickBuffer(0x05)
	if got != 2 {
		t.Fatalf("pickBuffer = %d, want 2 (cursor order)", got)
	}
}

func TestPickBufferWrapsAround(t *testing.T) {
	d, _, _ := newFakeDevice(false)
	d.nextReadBuffer = 3

	got := d.pickBuffer(0x01) // only buffer 0 ready
	if got != 0 {
		t.Fatalf("pickBuffer = %d, want 0", got)
	}
}

func TestPickBufferNoneReady(t *testing.T) {
	d, _, _ := newFakeDevice(false)
	if got := d.pickBuffer(0); got != -1 {
		t.Fatalf("pickBuffer = %d, want -1", got)
	}
}

func TestCheckDesyncWithinTolerance(t *testing.T) {
	d, _, _ := newFakeDevice(true)
	h := &Header{TrigTimeTicks: [2]uint64{1000, 1001}}
	d.checkDesync(h, 1, 1)
	if h.Sync != 0 {
		t.Fatalf("Sync = %#x, want 0 for a 1-tick difference within tolerance", h.Sync)
	}
}

func TestCheckDesyncBeyondTolerance(t *testing.T) {
	d, _, _ := newFakeDevice(true)
	h := &Header{TrigTimeTicks: [2]uint64{1000, 1005}}
	d.checkDesync(h, 1, 1)
	if h.Sync&SyncTrigTimeMismatch == 0 {
		t.Fatalf("Sync = %#x, want SyncTrigTimeMismatch set for a 5-tick difference", h.Sync)
	}
}

func TestCheckDesyncHwBufferMismatch(t *testing.T) {
	d, _, _ := newFakeDevice(true)
	h := &Header{}
	d.checkDesync(h, 1, 2)
	if h.Sync&SyncHwBufferMismatch == 0 {
		t.Fatalf("Sync = %#x, want SyncHwBufferMismatch set", h.Sync)
	}
}

func TestReadChannelAssemblesBufferLength(t *testing.T) {
	_, mc, _ := newFakeDevice(false)
	g := newGateway(newBatcher(mc), Master)

	const length = 17 // not a multiple of bytesPerChunkRead*NumChunk
	d := &Device{master: g}
	data, err := d.readChannel(g, 0, length)
	if err != nil {
		t.Fatalf("readChannel: %v", err)
	}
	if len(data) != length {
		t.Fatalf("len(data) = %d, want %d", len(data), length)
	}
}
