// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import "time"

// trigTolerance is how many clock ticks a slave's trigger time may differ
// from the master's before it's flagged as a desync rather than ordinary
// propagation skew.
const trigTolerance = 2

// ReadEvent drains the oldest ready buffer (in cursor order, not mask order,
// so two adjacent ready bits are read in the sequence the hardware filled
// them) and returns its header and waveform payload. It does not itself
// wait for a buffer to become ready; call Wait first.
func (d *Device) ReadEvent(readyMask uint8, bufferLength, pretrigger int) (Header, Event, error) {
	buf := d.pickBuffer(readyMask)
	if buf < 0 {
		return Header{}, Event{}, nil
	}

	h := Header{BufferNumber: buf, BufferMaskAtRead: readyMask}
	ev := Event{}

	masterHwBuf, masterEventCounter, err := d.readBoardMeta(Master, buf, &h)
	if err != nil {
		return h, ev, err
	}
	if d.slave != nil {
		slaveHwBuf, _, err := d.readBoardMeta(Slave, buf, &h)
		if err != nil {
			return h, ev, err
		}
		d.checkDesync(&h, masterHwBuf, slaveHwBuf)
	}

	h.EventNumber = d.eventNumberBase + masterEventCounter
	h.BufferLength = uint32(bufferLength)
	h.PretriggerSamples = uint32(pretrigger)
	h.ApproxTriggerTime = d.approxTriggerTime(h.TrigTimeTicks[Master])

	if err := d.readWaveforms(Master, buf, bufferLength, h.ChannelMask, &ev); err != nil {
		return h, ev, err
	}
	if d.slave != nil {
		if err := d.readWaveforms(Slave, buf, bufferLength, h.ChannelMask, &ev); err != nil {
			return h, ev, err
		}
	}

	if err := d.clearBuffer(buf); err != nil {
		return h, ev, err
	}
	d.nextReadBuffer = (buf + 1) % NumBuffers

	return h, ev, nil
}

// pickBuffer returns the lowest-index ready buffer starting from the
// driver's read cursor, wrapping around, or -1 if readyMask is empty. This
// is cursor order, not mask order: if buffers 0 and 2 are both ready and the
// cursor sits at 2, buffer 2 is read first even though bit 0 is lower.
func (d *Device) pickBuffer(readyMask uint8) int {
	for i := 0; i < NumBuffers; i++ {
		buf := (d.nextReadBuffer + i) % NumBuffers
		if readyMask&(1<<uint(buf)) != 0 {
			return buf
		}
	}
	return -1
}

// readBoardMeta selects buf on board and harvests its per-event metadata
// registers into h, returning the hardware's own notion of which buffer
// this event came from (for cross-board agreement checking) and the
// board's 48-bit hardware event counter.
func (d *Device) readBoardMeta(board Board, buf int, h *Header) (hwBuffer uint32, eventCounter uint64, err error) {
	g := d.gatewayFor(board)

	if err = g.selectBuffer(buf); err != nil {
		return 0, 0, err
	}

	ecLow, err := g.readRegister(regEventCounterLow)
	if err != nil {
		return 0, 0, err
	}
	ecHigh, err := g.readRegister(regEventCounterHigh)
	if err != nil {
		return 0, 0, err
	}
	eventCounter = combine48(ecLow, ecHigh)

	tcLow, err := g.readRegister(regTrigCounterLow)
	if err != nil {
		return 0, 0, err
	}
	trigNumber := uint32(tcLow)

	ttLow, err := g.readRegister(regTrigTimeLow)
	if err != nil {
		return 0, 0, err
	}
	ttHigh, err := g.readRegister(regTrigTimeHigh)
	if err != nil {
		return 0, 0, err
	}
	h.TrigTimeTicks[board] = combine48(ttLow, ttHigh)

	deadtime, err := g.readRegister(regDeadtime)
	if err != nil {
		return 0, 0, err
	}
	h.Deadtime[board] = deadtime

	trigInfo, err := g.readRegister(regTrigInfo)
	if err != nil {
		return 0, 0, err
	}
	hwBuffer = (trigInfo >> trigInfoBufferShift) & trigInfoBufferMask
	if int(hwBuffer) != buf {
		h.Sync |= SyncBufferMismatch
		logThrottled("hw-buffer-mismatch", "board: %s hw buffer %d != requested %d", board, hwBuffer, buf)
	}

	h.ReadoutWallTime[board] = currentTime()
	h.BoardID[board] = d.boardID[board]

	if board == Master {
		h.TrigNumber = trigNumber
		if d.lastEventCounter != 0 && eventCounter != d.lastEventCounter+1 {
			logThrottled("event-counter-gap", "board: master event counter jumped %d -> %d", d.lastEventCounter, eventCounter)
		}
		d.lastEventCounter = eventCounter
		h.CalPulser = trigInfo&(1<<trigInfoCalPulseBit) != 0
		h.TrigType = TriggerType((trigInfo >> trigInfoTypeShift) & trigInfoTypeMask)
		h.TrigPolarization = uint8(trigInfo & trigInfoPolMask)

		cbMasks, err := g.readRegister(regChannelBeamMasks)
		if err != nil {
			return 0, 0, err
		}
		h.ChannelMask = uint8(cbMasks & 0xff)
		h.BeamMask = (cbMasks >> 8) & 0xffffff

		lastBeam, err := g.readRegister(regLastBeam)
		if err != nil {
			return 0, 0, err
		}
		h.TriggeredBeams = lastBeam

		power, err := g.readRegister(regTrigBeamPower)
		if err != nil {
			return 0, 0, err
		}
		h.BeamPower = power

		pps, err := g.readRegister(regPPSCounter)
		if err != nil {
			return 0, 0, err
		}
		h.PPSCounter = pps

		dyn, err := g.readRegister(regDynamicMask)
		if err != nil {
			return 0, 0, err
		}
		h.DynamicBeamMask = dyn

		veto, err := g.readRegister(regVetoDeadtime)
		if err != nil {
			return 0, 0, err
		}
		h.VetoDeadtime = veto
	} else {
		if trigNumber != h.TrigNumber {
			h.Sync |= SyncTrigNumberMismatch
			logThrottled("trig-number-mismatch", "board: slave trig number %d != master %d", trigNumber, h.TrigNumber)
		}
	}

	return hwBuffer, eventCounter, nil
}

// checkDesync compares already-harvested master/slave fields and records
// any disagreement in h.Sync. None of these are fatal to the read.
func (d *Device) checkDesync(h *Header, masterHwBuf, slaveHwBuf uint32) {
	mt, st := h.TrigTimeTicks[Master], h.TrigTimeTicks[Slave]
	diff := int64(mt) - int64(st)
	if diff < 0 {
		diff = -diff
	}
	if diff > trigTolerance {
		h.Sync |= SyncTrigTimeMismatch
		logThrottled("trig-time-mismatch", "board: master/slave trig time differ by %d ticks", diff)
	}
	if masterHwBuf != slaveHwBuf {
		h.Sync |= SyncHwBufferMismatch
		logThrottled("hw-buffer-cross-mismatch", "board: master hw buffer %d != slave %d", masterHwBuf, slaveHwBuf)
	}
}

// readWaveforms reads every unmasked channel's waveform for board into ev,
// zero-filling channels masked off by channelMask.
func (d *Device) readWaveforms(board Board, buf, bufferLength int, channelMask uint8, ev *Event) error {
	g := d.gatewayFor(board)

	if err := g.setMode(modeWaveforms); err != nil {
		return err
	}
	if err := g.selectBuffer(buf); err != nil {
		return err
	}

	for ch := 0; ch < NumChannels; ch++ {
		if channelMask&(1<<uint(ch)) == 0 {
			ev.Data[board][ch] = make([]byte, bufferLength)
			continue
		}
		data, err := d.readChannel(g, ch, bufferLength)
		if err != nil {
			return err
		}
		ev.Data[board][ch] = data
	}
	return nil
}

// bytesPerChunkRead is how many payload bytes one [set RAM address, pick
// chunk, read] triple yields.
const bytesPerChunkRead = 3

// readChannel reads bufferLength bytes of waveform for channel ch, queuing
// whole RAM-address rows of NumChunk reads at a time so the transaction
// batches rather than round-tripping once per chunk.
func (d *Device) readChannel(g *gateway, ch, bufferLength int) ([]byte, error) {
	if err := g.writeFrame(frames.channelSelect[ch]); err != nil {
		return nil, err
	}

	out := make([]byte, 0, bufferLength)
	rowBytes := NumChunk * bytesPerChunkRead
	for len(out) < bufferLength {
		ramAddr := len(out) / rowBytes
		g.b.queue(newWriteFrame(regRAMAddress, 0, 0, byte(ramAddr)))
		rxs := make([][]byte, NumChunk)
		for chunk := 0; chunk < NumChunk; chunk++ {
			g.b.queue(frames.chunkSelect[chunk])
			rx := make([]byte, 4)
			rxs[chunk] = rx
			g.b.queueRead(newWriteFrame(regRead, 0, 0, 0), rx)
		}
		if err := g.b.flush(); err != nil {
			return nil, err
		}
		for _, rx := range rxs {
			out = append(out, rx[1], rx[2], rx[3])
		}
	}
	if len(out) > bufferLength {
		out = out[:bufferLength]
	}
	return out, nil
}

// clearBuffer issues the synchronized clear for a single buffer slot. It
// does not read the clear status back, so a clear that did not take effect
// is neither detected nor counted.
func (d *Device) clearBuffer(buf int) error {
	return d.syncWriteFrame(frames.clearMask[1<<uint(buf)])
}

func (d *Device) gatewayFor(board Board) *gateway {
	if board == Slave {
		return d.slave
	}
	return d.master
}

// approxTriggerTime converts a 48-bit board clock tick count into a
// wall-clock estimate by adding the elapsed time since the alignment epoch
// (the reset that last zeroed the hardware counters) to that epoch. The
// tick-to-seconds split avoids overflowing uint64 with a direct
// ticks*time.Second product, since ticks can run up to 2^48.
func (d *Device) approxTriggerTime(ticks uint64) time.Time {
	whole := ticks / BoardClockHz
	rem := ticks % BoardClockHz
	ns := whole*uint64(time.Second) + rem*uint64(time.Second)/BoardClockHz
	return d.resetEpoch.Add(time.Duration(ns))
}

// currentTime is a seam so tests can stub wall-clock readout timestamps.
var currentTime = time.Now
