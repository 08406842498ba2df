// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import "testing"

func TestBatcherQueuesUntilFlush(t *testing.T) {
	_, mc, _ := newFakeDevice(false)
	b := newBatcher(mc)

	b.queue(newWriteFrame(regPretrigger, 0, 0, 1))
	b.queue(newWriteFrame(regTrigMask, 0, 0, 2))
	if b.pending() != 2 {
		t.Fatalf("pending = %d, want 2 before flush", b.pending())
	}
	if len(mc.sentFrames()) != 0 {
		t.Fatalf("frames sent before flush")
	}

	if err := b.flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if b.pending() != 0 {
		t.Fatalf("pending = %d, want 0 after flush", b.pending())
	}
	if len(mc.sentFrames()) != 2 {
		t.Fatalf("got %d frames sent, want 2", len(mc.sentFrames()))
	}
}

func TestBatcherAutoFlushesAtCap(t *testing.T) {
	_, mc, _ := newFakeDevice(false)
	b := newBatcher(mc)

	for i := 0; i < maxXfers; i++ {
		b.queue(newWriteFrame(regPretrigger, 0, 0, byte(i)))
	}
	if b.pending() != maxXfers {
		t.Fatalf("pending = %d, want %d", b.pending(), maxXfers)
	}

	b.queue(newWriteFrame(regPretrigger, 0, 0, 0xff))
	if b.pending() != 1 {
		t.Fatalf("pending after overflow append = %d, want 1 (prior batch auto-flushed)", b.pending())
	}
	if len(mc.sentFrames()) != maxXfers {
		t.Fatalf("got %d frames sent, want %d flushed before the new one queued", len(mc.sentFrames()), maxXfers)
	}
}
