// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import (
	"testing"
	"time"
)

// calWaveform builds a MaxBufferLength-sample waveform that is zero
// everywhere except a single peak of amplitude amp at index idx, the shape
// the on-board pulser produces.
func calWaveform(idx int, amp byte) []byte {
	data := make([]byte, MaxBufferLength)
	data[idx] = amp
	return data
}

// scriptCalPulse sets up mc to answer a force-triggered calibration capture:
// STATUS already reporting buffer 0 ready (calibrateADCs's Wait call returns
// immediately rather than polling), plus per-channel waveform data.
func scriptCalPulse(mc *fakeConn, peakIdx [NumChannels]int, peakAmp [NumChannels]byte) {
	mc.set(regStatus, 0x1)
	for ch := 0; ch < NumChannels; ch++ {
		mc.setWaveform(ch, calWaveform(peakIdx[ch], peakAmp[ch]))
	}
}

func TestCalibrateADCsSucceedsWithGoodPeaks(t *testing.T) {
	d, mc, _ := newFakeDevice(false)

	var idx [NumChannels]int
	var amp [NumChannels]byte
	for ch := range idx {
		idx[ch] = 10 // identical peak position: zero lane spread
		amp[ch] = minGoodPeak + 10
	}
	scriptCalPulse(mc, idx, amp)

	if err := d.calibrateADCs(); err != nil {
		t.Fatalf("calibrateADCs: %v", err)
	}

	if got := mc.regs[regForceTrigger]; got != 1 {
		t.Fatalf("regForceTrigger = %d, want 1 (software trigger issued)", got)
	}
	if got := mc.regs[regADCDelayBase]; got&0xff != 0 {
		t.Fatalf("applied delay for pair 0 = %#x, want 0 (all peaks aligned)", got)
	}
}

func TestCalibrateADCsExhaustsOnLowPeaks(t *testing.T) {
	d, mc, _ := newFakeDevice(false)

	var idx [NumChannels]int
	var amp [NumChannels]byte
	for ch := range idx {
		idx[ch] = 10
		amp[ch] = minGoodPeak - 1 // pulse never clears the "seen" threshold
	}
	scriptCalPulse(mc, idx, amp)

	err := d.calibrateADCs()
	if err != ErrCalibrationExhausted {
		t.Fatalf("calibrateADCs error = %v, want ErrCalibrationExhausted", err)
	}
}

func TestCalibrateADCsExhaustsOnSpreadTooWide(t *testing.T) {
	d, mc, _ := newFakeDevice(false)

	var idx [NumChannels]int
	var amp [NumChannels]byte
	for ch := range idx {
		idx[ch] = 10
		amp[ch] = minGoodPeak + 10
	}
	idx[0] = 10 + maxPeakSpread + 1 // channel 0's lane lags the rest
	scriptCalPulse(mc, idx, amp)

	err := d.calibrateADCs()
	if err != ErrCalibrationExhausted {
		t.Fatalf("calibrateADCs error = %v, want ErrCalibrationExhausted", err)
	}
}

func TestCalibrateADCsSetsMaxBufferLengthAndRestoresIt(t *testing.T) {
	d, mc, _ := newFakeDevice(false)
	mc.set(regBufferLength, 256)

	var idx [NumChannels]int
	var amp [NumChannels]byte
	for ch := range idx {
		idx[ch] = 10
		amp[ch] = minGoodPeak + 10
	}
	scriptCalPulse(mc, idx, amp)

	if err := d.calibrateADCs(); err != nil {
		t.Fatalf("calibrateADCs: %v", err)
	}
	sawMax := false
	for _, f := range mc.sentFrames() {
		if int(f[0]) == regBufferLength && value24(f) == MaxBufferLength {
			sawMax = true
		}
	}
	if !sawMax {
		t.Fatalf("regBufferLength was never set to MaxBufferLength (%d) during calibration", MaxBufferLength)
	}
	if got := mc.regs[regBufferLength]; got != 256 {
		t.Fatalf("regBufferLength after calibration = %d, want restored 256", got)
	}
}

func TestResetEpochIsMidpoint(t *testing.T) {
	d, _, _ := newFakeDevice(false)

	// Stub the clock so the reads around the reset-counter write are
	// exactly t0 and t0+2s; the epoch must land at t0+1s.
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	currentTime = func() time.Time {
		now := t0.Add(time.Duration(calls) * 2 * time.Second)
		calls++
		return now
	}
	defer func() { currentTime = time.Now }()

	if err := d.Reset(ResetCounters); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if d.resetEpoch.IsZero() {
		t.Fatalf("resetEpoch was not set")
	}
	if want := t0.Add(time.Second); !d.resetEpoch.Equal(want) {
		t.Fatalf("resetEpoch = %v, want midpoint %v", d.resetEpoch, want)
	}
}
