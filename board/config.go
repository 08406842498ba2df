// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import "fmt"

// SetThresholds writes all NumBeams beam-threshold registers in a single
// batched burst: the setter itself doesn't need the synchronized command
// protocol since beam thresholds aren't latched against a shared clock
// edge, but batching still saves NumBeams-1 round trips.
func (d *Device) SetThresholds(thresholds [NumBeams]uint32) error {
	for beam, v := range thresholds {
		d.master.b.queue(newWriteFrame24(regThresholdBase+beam, v))
	}
	if err := d.master.b.flush(); err != nil {
		return fmt.Errorf("board: set thresholds: %w", err)
	}
	return nil
}

// SetChannelMask sets which channels are read out and included in the
// phased-array trigger.
func (d *Device) SetChannelMask(mask uint8) error {
	return d.syncWrite(regChannelMask, uint32(mask))
}

// SetAttenuators writes the per-channel attenuator settings, packed three
// channels per register into the three attenuator registers (channel 3k+i in
// payload byte i, counting from the least significant). Attenuator payload
// bytes are bit-reversed on the wire; the apply command latches all channels
// at once.
func (d *Device) SetAttenuators(atten [NumChannels]uint8) error {
	for reg := 0; reg < 3; reg++ {
		var payload uint32
		for i := 0; i < 3; i++ {
			if ch := 3*reg + i; ch < NumChannels {
				payload |= uint32(reverseBits(atten[ch])) << (8 * uint(i))
			}
		}
		if err := d.syncWrite(regAttenuatorBase+reg, payload); err != nil {
			return fmt.Errorf("board: set attenuator register %d: %w", reg, err)
		}
	}
	return d.syncWrite(regAttenuatorApply, 1)
}

// SetTrigEnables enables or disables the trigger sources given by a bitmask
// (software/phased/external/pulser, matching TriggerType's bit positions).
func (d *Device) SetTrigEnables(mask uint32) error {
	return d.syncWrite(regTrigEnables, mask)
}

// SetTrigPolarization sets the per-channel trigger polarization bitmask.
func (d *Device) SetTrigPolarization(mask uint8) error {
	return d.syncWrite(regTrigPolarization, uint32(mask))
}

// SetTrigHoldoff sets the minimum number of clock ticks between triggers.
func (d *Device) SetTrigHoldoff(ticks uint32) error {
	return d.syncWrite(regTrigHoldoff, ticks)
}

// SetTrigMask sets which of the NumBeams beams participate in triggering.
func (d *Device) SetTrigMask(mask uint32) error {
	return d.syncWrite(regTrigMask, mask)
}

// SetVetoDeadtime sets the deadtime window applied after an external veto.
func (d *Device) SetVetoDeadtime(ticks uint32) error {
	return d.syncWrite(regVetoDeadtime, ticks)
}

// SetTrigOutputConfig configures the board's external trigger-output pulse.
func (d *Device) SetTrigOutputConfig(cfg uint32) error {
	return d.syncWrite(regTrigOutputConfig, cfg)
}

// SetExtInputConfig configures how the board interprets its external
// trigger input line.
func (d *Device) SetExtInputConfig(cfg uint32) error {
	return d.syncWrite(regExtInputConfig, cfg)
}

// SetDynamicMasking enables or disables the firmware's dynamic beam masking
// and sets its configuration word.
func (d *Device) SetDynamicMasking(cfg uint32) error {
	return d.syncWrite(regDynamicMaskCfg, cfg)
}

// SetLowPass configures the trigger's low-pass filter coefficient.
func (d *Device) SetLowPass(coeff uint32) error {
	return d.syncWrite(regTrigLowPass, coeff)
}

// SetPretrigger sets the number of pretrigger samples retained ahead of the
// trigger point, per buffer.
func (d *Device) SetPretrigger(samples uint32) error {
	if samples > MaxPretrigger {
		return fmt.Errorf("board: pretrigger %d exceeds maximum %d", samples, MaxPretrigger)
	}
	return d.syncWrite(regPretrigger, samples)
}

// SetTrigDelays sets the per-board trigger-arrival compensation delay used
// to align the phased-array sum across master and slave.
func (d *Device) SetTrigDelays(masterDelay, slaveDelay uint32) error {
	if err := d.master.writeRegister(regTrigDelayBase, masterDelay); err != nil {
		return fmt.Errorf("board: set master trig delay: %w", err)
	}
	if d.slave != nil {
		if err := d.slave.writeRegister(regTrigDelayBase, slaveDelay); err != nil {
			return fmt.Errorf("board: set slave trig delay: %w", err)
		}
	}
	return nil
}

// MaxPretrigger is the largest pretrigger window the firmware supports.
const MaxPretrigger = 8
