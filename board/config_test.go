// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import "testing"

func TestSetAttenuatorsBitReversesPayload(t *testing.T) {
	d, mc, _ := newFakeDevice(false)

	var atten [NumChannels]uint8
	atten[0] = 0x80

	if err := d.SetAttenuators(atten); err != nil {
		t.Fatalf("SetAttenuators: %v", err)
	}

	v := mc.regs[regAttenuatorBase]
	if v != 0x01 {
		t.Fatalf("attenuator 0 register = 0x%02x, want 0x01 (bit-reversed 0x80)", v)
	}
	if mc.regs[regAttenuatorApply] != 1 {
		t.Fatalf("attenuator apply not written")
	}
}

func TestSetThresholdsWritesAllBeamsInOneBatch(t *testing.T) {
	d, mc, _ := newFakeDevice(false)

	var thresh [NumBeams]uint32
	for i := range thresh {
		thresh[i] = uint32(i) * 10
	}
	if err := d.SetThresholds(thresh); err != nil {
		t.Fatalf("SetThresholds: %v", err)
	}
	for i, want := range thresh {
		if got := mc.regs[regThresholdBase+i]; got != want {
			t.Fatalf("threshold %d = %d, want %d", i, got, want)
		}
	}
}

func TestSetPretriggerRejectsTooLarge(t *testing.T) {
	d, _, _ := newFakeDevice(false)
	if err := d.SetPretrigger(MaxPretrigger + 1); err == nil {
		t.Fatalf("SetPretrigger(%d) succeeded, want error", MaxPretrigger+1)
	}
}
