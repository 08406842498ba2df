// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import "time"

// Board identifies which physical board a register or command targets.
type Board int

const (
	Master Board = iota
	Slave
)

func (b Board) String() string {
	if b == Slave {
		return "slave"
	}
	return "master"
}

const (
	// NumBuffers is the number of on-board ring buffer slots.
	NumBuffers = 4
	// NumChannels is the number of analog channels sampled per board.
	NumChannels = 8
	// NumBeams is the number of phased-array beams, and so the number of
	// threshold registers written in one batched burst.
	NumBeams = 24
	// NumChunk is the number of 4-byte chunks read at each waveform RAM
	// address; an address×chunk pair identifies 4 bytes of sample data.
	NumChunk = 4
	// MaxBufferLength is the largest configurable buffer length, in samples
	// per channel, used during ADC alignment.
	MaxBufferLength = 1024

	// BoardClockHz is the board's sample clock: 500 MHz / 16.
	BoardClockHz = 500_000_000 / 16

	// maxMisery bounds the ADC alignment retry loop.
	maxMisery = 100
	// minGoodPeak is the minimum per-channel calibration-pulse peak value
	// accepted as "a pulse was seen".
	minGoodPeak = 20
	// maxPeakSpread is the largest tolerated spread between the earliest and
	// latest per-channel peak index during calibration.
	maxPeakSpread = 16
)

// SyncProblem is a bitset of cross-board/hardware consistency checks that
// failed while assembling a Header. A nonzero value is never fatal: it is
// recorded on the header and logged, and the read still counts as
// successful.
type SyncProblem uint8

const (
	// SyncBufferMismatch is set when the hardware buffer index reported by a
	// board differs from the buffer the driver asked it to select.
	SyncBufferMismatch SyncProblem = 1 << iota
	// SyncTrigNumberMismatch is set when the slave's trigger number differs
	// from the master's for what should be the same event.
	SyncTrigNumberMismatch
	// SyncTrigTimeMismatch is set when the master/slave trigger-time ticks
	// differ by more than the tolerance (2 clock ticks).
	SyncTrigTimeMismatch
	// SyncHwBufferMismatch is set when the hardware buffer index disagrees
	// between master and slave.
	SyncHwBufferMismatch
)

// TriggerType is the 2-bit trigger-type field packed into trig_info.
type TriggerType uint8

const (
	TriggerSoftware TriggerType = iota
	TriggerPhased
	TriggerExternal
	TriggerPulser
)

// Header is the metadata assembled for one triggered event, possibly
// spanning two boards.
type Header struct {
	EventNumber      uint64
	TrigNumber       uint32
	TrigTimeTicks    [2]uint64 // indexed by Board; 48-bit tick counters
	ReadoutWallTime  [2]time.Time
	Deadtime         [2]uint32
	BoardID          [2]uint16
	BufferLength     uint32
	PretriggerSamples uint32
	ApproxTriggerTime time.Time
	TriggeredBeams   uint32
	BeamMask         uint32
	BeamPower        uint32
	PPSCounter       uint32
	DynamicBeamMask  uint32
	VetoDeadtime     uint32
	BufferNumber     int
	Gate             bool
	BufferMaskAtRead uint8
	TrigType         TriggerType
	CalPulser        bool
	ChannelMask      uint8
	TrigPolarization uint8
	Sync             SyncProblem
}

// Event is the waveform payload for one triggered event: per-board,
// per-channel sample arrays. A board slot that was not read (no slave) or a
// masked-off channel is left as a zero-length or zero-filled slice.
type Event struct {
	Data [2][NumChannels][]byte // indexed by Board, then channel
}

// WaitStatus is the outcome of a Wait call.
type WaitStatus int

const (
	WaitReady WaitStatus = iota
	WaitTimedOut
	WaitCancelled
	WaitBusy
)

func (s WaitStatus) String() string {
	switch s {
	case WaitReady:
		return "ready"
	case WaitTimedOut:
		return "timed out"
	case WaitCancelled:
		return "cancelled"
	case WaitBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// ResetKind selects how thorough a Reset call is, in increasing severity.
type ResetKind int

const (
	ResetCounters ResetKind = iota
	ResetCalibrate
	ResetAlmostGlobal
	ResetGlobal
)
