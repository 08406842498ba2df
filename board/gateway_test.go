// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import "testing"

func TestGatewayWriteThenReadRegister(t *testing.T) {
	_, mc, _ := newFakeDevice(false)
	g := newGateway(newBatcher(mc), Master)

	if err := g.writeRegister(regPPSCounter, 0xabcdef); err != nil {
		t.Fatalf("writeRegister: %v", err)
	}
	v, err := g.readRegister(regPPSCounter)
	if err != nil {
		t.Fatalf("readRegister: %v", err)
	}
	if v != 0xabcdef {
		t.Fatalf("readRegister = 0x%06x, want 0xabcdef", v)
	}
}

func TestGatewayReadUsesSetReadRegThenRead(t *testing.T) {
	_, mc, _ := newFakeDevice(false)
	mc.set(regStatus, 0x00000f)
	g := newGateway(newBatcher(mc), Master)

	if _, err := g.readRegister(regStatus); err != nil {
		t.Fatalf("readRegister: %v", err)
	}

	sent := mc.sentFrames()
	if len(sent) != 2 {
		t.Fatalf("got %d frames sent, want 2 (set-read-addr, read)", len(sent))
	}
	if int(sent[0][0]) != regSetReadReg || int(sent[0][3]) != regStatus {
		t.Fatalf("first frame = %v, want SET_READ_REG(regStatus)", sent[0])
	}
	if int(sent[1][0]) != regRead {
		t.Fatalf("second frame = %v, want a read frame", sent[1])
	}
}
