// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import (
	"fmt"
	"time"
)

// calTriggerTimeout bounds how long calibrateADCs waits, per attempt, for
// the software trigger it issues to land in a ready buffer.
const calTriggerTimeout = time.Second

// Reset runs the reset/ADC-alignment procedure for kind, in increasing
// severity:
//
//  1. ResetCounters always runs: clear the event/trigger counters and the
//     software read cursor.
//  2. ResetCalibrate additionally runs ADC lane-delay alignment.
//  3. ResetAlmostGlobal additionally issues an almost-global hardware reset
//     before the counter clear.
//  4. ResetGlobal issues a full hardware reset instead of the almost-global
//     one.
//
// The reported alignment epoch is the wall-clock midpoint of the
// reset-counter SPI write: the instant before and the instant after,
// averaged, since the write itself is the hardware's actual epoch marker
// and the driver can't observe it more precisely than "sometime during this
// SPI transaction".
func (d *Device) Reset(kind ResetKind) error {
	if kind >= ResetAlmostGlobal {
		payload := uint32(resetAllAlmost)
		if kind == ResetGlobal {
			payload = resetAllFull
		}
		if err := d.syncWrite(regResetAll, payload); err != nil {
			return fmt.Errorf("board: hardware reset: %w", err)
		}
	}

	before := currentTime()
	if err := d.syncWrite(regResetCounter, 1); err != nil {
		return fmt.Errorf("board: reset counters: %w", err)
	}
	after := currentTime()
	d.resetEpoch = before.Add(after.Sub(before) / 2)

	d.nextReadBuffer = 0
	d.lastEventCounter = 0

	if kind >= ResetCalibrate {
		if err := d.calibrateADCs(); err != nil {
			return err
		}
	}

	return nil
}

// calibrateADCs aligns each ADC pair's sampling lane delay using the
// on-board calibration pulser. It retries up to maxMisery times; a retry
// budget rather than a fixed attempt count because the pulser's peak can
// occasionally land in a dead zone the first few tries and a second
// attempt usually succeeds.
//
// Before the first attempt the buffer length is set to the maximum so the
// full pulse is captured. Each attempt forces a software trigger, waits for
// a ready buffer, reads the
// waveform back, and locates the sample index of the pulse's peak in every
// channel. The spread of those indices across channels is the lane
// misalignment; applyADCDelays corrects it.
func (d *Device) calibrateADCs() (err error) {
	savedLength, lerr := d.master.readRegister(regBufferLength)
	if lerr == nil {
		defer func() {
			if werr := d.master.writeRegister(regBufferLength, savedLength); werr != nil && err == nil {
				err = werr
			}
		}()
	}
	savedEnables, eerr := d.master.readRegister(regTrigEnables)
	if eerr == nil {
		defer func() {
			if werr := d.master.writeRegister(regTrigEnables, savedEnables); werr != nil && err == nil {
				err = werr
			}
		}()
	}
	defer func() {
		if werr := d.master.writeRegister(regCalPulse, 0); werr != nil && err == nil {
			err = werr
		}
	}()

	if err = d.master.writeRegister(regTrigEnables, 0); err != nil {
		return err
	}
	if err = d.master.writeRegister(regBufferLength, MaxBufferLength); err != nil {
		return err
	}

	misery := 0
	for misery < maxMisery {
		if misery >= 2 {
			if err = d.master.writeRegister(regADCClockReset, 1); err != nil {
				return err
			}
		}

		if err = d.master.writeRegister(regCalPulse, 1); err != nil {
			return err
		}
		if err = d.master.writeRegister(regForceTrigger, 1); err != nil {
			return err
		}

		status, readyMask, werr := d.Wait(calTriggerTimeout)
		if werr != nil {
			return werr
		}
		if status != WaitReady {
			misery++
			continue
		}

		buf := lowestReadyBuffer(readyMask)
		if buf < 0 {
			misery++
			continue
		}

		peaks, values, perr := d.readCalPeaks(buf)
		if cerr := d.clearBuffer(buf); cerr != nil && perr == nil {
			perr = cerr
		}
		if perr != nil {
			return perr
		}

		ok, minPeak := true, values[0]
		for _, v := range values {
			if v < minGoodPeak {
				ok = false
			}
			if v < minPeak {
				minPeak = v
			}
		}
		spread := peakSpread(peaks)
		if !ok || spread > maxPeakSpread {
			misery++
			continue
		}

		if err = d.applyADCDelays(peaks); err != nil {
			return err
		}
		return nil
	}

	return ErrCalibrationExhausted
}

// readCalPeaks reads buf's waveform on every channel and locates each
// channel's calibration-pulse peak: peaks holds the sample index of the
// peak, values its amplitude.
func (d *Device) readCalPeaks(buf int) (peaks [NumChannels]uint32, values [NumChannels]byte, err error) {
	if err = d.master.setMode(modeWaveforms); err != nil {
		return peaks, values, err
	}
	if err = d.master.selectBuffer(buf); err != nil {
		return peaks, values, err
	}
	for ch := 0; ch < NumChannels; ch++ {
		data, rerr := d.readChannel(d.master, ch, MaxBufferLength)
		if rerr != nil {
			return peaks, values, rerr
		}
		idx, val := peakOf(data)
		peaks[ch] = uint32(idx)
		values[ch] = val
	}
	return peaks, values, nil
}

// peakOf returns the sample index and amplitude of the largest byte in
// data: the calibration pulse's peak.
func peakOf(data []byte) (int, byte) {
	idx, val := 0, byte(0)
	for i, b := range data {
		if b > val {
			idx, val = i, b
		}
	}
	return idx, val
}

// lowestReadyBuffer returns the lowest-index ready buffer in readyMask, or
// -1 if none are ready. Unlike pickBuffer, calibration has no read cursor to
// respect: it reads whichever buffer the forced trigger landed in.
func lowestReadyBuffer(readyMask uint8) int {
	for buf := 0; buf < NumBuffers; buf++ {
		if readyMask&(1<<uint(buf)) != 0 {
			return buf
		}
	}
	return -1
}

func peakSpread(peaks [NumChannels]uint32) uint32 {
	min, max := peaks[0], peaks[0]
	for _, p := range peaks {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return max - min
}

// applyADCDelays writes a per-pair delay derived from the average of each
// ADC pair's peak offset from the earliest peak seen on any channel, with
// the apply bit set so the FPGA latches the new value immediately.
func (d *Device) applyADCDelays(peaks [NumChannels]uint32) error {
	min := peaks[0]
	for _, p := range peaks {
		if p < min {
			min = p
		}
	}
	const applyBit = 1 << 8
	for pair := 0; pair < NumChannels/2; pair++ {
		a, b := peaks[2*pair], peaks[2*pair+1]
		delay := ((a - min) + (b - min)) / 2
		if err := d.master.writeRegister(regADCDelayBase+pair, delay|applyBit); err != nil {
			return err
		}
	}
	return nil
}
