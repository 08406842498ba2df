// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import (
	"sync"

	"github.com/beacontau/beacon/conn/spi"
)

// fakeConn is an in-memory register image standing in for a real board,
// answering SET_READ_REG/READ pairs and direct writes the same way the
// hardware does. It records every frame it's sent, in order, so tests can
// assert on command sequencing (e.g. the SYNC_ON/SYNC_OFF bracket).
//
// It also models the RAM-address/chunk-select waveform read path: writing
// regChannelSelect, regRAMAddress, and a chunkSelect register in sequence
// and then reading regRead without an intervening SET_READ_REG yields bytes
// out of waveform[channel] at the address the writes selected, the same way
// readChannel drives the real hardware.
type fakeConn struct {
	mu       sync.Mutex
	regs     map[int]uint32
	readAddr int
	sent     []frame

	waveform map[int][]byte // per-channel scripted sample data

	curChannel int
	ramAddr    int
	chunk      int
	afterChunk bool // true once a chunkSelect write makes the next READ a waveform read
}

func newFakeConn() *fakeConn {
	return &fakeConn{regs: map[int]uint32{}, waveform: map[int][]byte{}}
}

func (f *fakeConn) Tx(w, r []byte) error {
	return f.TxPackets([]spi.Packet{{W: w, R: r}})
}

func (f *fakeConn) TxPackets(pkts []spi.Packet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range pkts {
		var fr frame
		copy(fr[:], p.W)
		f.sent = append(f.sent, fr)

		addr := int(fr[0])
		switch {
		case addr == regSetReadReg:
			f.readAddr = int(fr[3])
			f.afterChunk = false
		case addr == regChannelSelect:
			f.curChannel = int(fr[3])
			f.regs[addr] = value24(fr)
		case addr == regRAMAddress:
			f.ramAddr = int(fr[3])
			f.regs[addr] = value24(fr)
		case addr >= regChunkSelectBase && addr < regChunkSelectBase+NumChunk:
			f.chunk = addr - regChunkSelectBase
			f.regs[addr] = value24(fr)
			f.afterChunk = true
		case addr == regRead:
			if f.afterChunk {
				b0, b1, b2 := f.waveformByte(0), f.waveformByte(1), f.waveformByte(2)
				if p.R != nil {
					p.R[0] = byte(f.readAddr)
					p.R[1] = b0
					p.R[2] = b1
					p.R[3] = b2
				}
			} else {
				v := f.regs[f.readAddr]
				if p.R != nil {
					p.R[0] = byte(f.readAddr)
					p.R[1] = byte(v >> 16)
					p.R[2] = byte(v >> 8)
					p.R[3] = byte(v)
				}
			}
		default:
			f.regs[addr] = value24(fr)
		}
	}
	return nil
}

// waveformByte returns byte offset within the current [ramAddr, chunk] row
// of the selected channel's scripted waveform, or 0 past the end.
func (f *fakeConn) waveformByte(offset int) byte {
	data := f.waveform[f.curChannel]
	idx := f.ramAddr*NumChunk*bytesPerChunkRead + f.chunk*bytesPerChunkRead + offset
	if idx < 0 || idx >= len(data) {
		return 0
	}
	return data[idx]
}

func (f *fakeConn) set(addr int, v uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs[addr] = v
}

// setWaveform scripts the sample bytes readChannel will read back for
// channel ch.
func (f *fakeConn) setWaveform(ch int, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waveform[ch] = data
}

func (f *fakeConn) sentFrames() []frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]frame, len(f.sent))
	copy(out, f.sent)
	return out
}

func newFakeDevice(withSlave bool) (*Device, *fakeConn, *fakeConn) {
	mc := newFakeConn()
	d := &Device{
		master: newGateway(newBatcher(mc), Master),
	}
	var sc *fakeConn
	if withSlave {
		sc = newFakeConn()
		d.slave = newGateway(newBatcher(sc), Slave)
	}
	return d, mc, sc
}

var _ spi.Conn = (*fakeConn)(nil)
