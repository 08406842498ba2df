// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import "testing"

func TestSyncWriteOrdering(t *testing.T) {
	d, mc, sc := newFakeDevice(true)

	if err := d.syncWrite(regTrigMask, 0x7); err != nil {
		t.Fatalf("syncWrite: %v", err)
	}

	master := mc.sentFrames()
	if len(master) != 3 {
		t.Fatalf("master got %d frames, want 3 (SYNC_ON, write, SYNC_OFF)", len(master))
	}
	if int(master[0][0]) != regSync || master[0][3] != 1 {
		t.Fatalf("master[0] = %v, want SYNC_ON", master[0])
	}
	if int(master[1][0]) != regTrigMask {
		t.Fatalf("master[1] = %v, want the command", master[1])
	}
	if int(master[2][0]) != regSync || master[2][3] != 0 {
		t.Fatalf("master[2] = %v, want SYNC_OFF", master[2])
	}

	slave := sc.sentFrames()
	if len(slave) != 1 {
		t.Fatalf("slave got %d frames, want 1", len(slave))
	}
	if int(slave[0][0]) != regTrigMask {
		t.Fatalf("slave[0] = %v, want the command", slave[0])
	}
}

func TestSyncWriteWithoutSlaveIsPlainWrite(t *testing.T) {
	d, mc, _ := newFakeDevice(false)

	if err := d.syncWrite(regTrigMask, 0x3); err != nil {
		t.Fatalf("syncWrite: %v", err)
	}

	sent := mc.sentFrames()
	if len(sent) != 1 {
		t.Fatalf("got %d frames, want 1 (no SYNC framing without a slave)", len(sent))
	}
	if int(sent[0][0]) != regTrigMask {
		t.Fatalf("sent[0] = %v, want the command", sent[0])
	}
}
