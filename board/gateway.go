// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import (
	"fmt"

	"github.com/beacontau/beacon/conn/spi"
)

// gateway is the per-board register access point: a batcher plus the
// address-echo verification used by reads. Every higher-level component
// (sync commands, readout, config) goes through a gateway rather than
// touching a spi.Conn directly.
type gateway struct {
	b     *batcher
	board Board

	// curMode and curBuffer cache the last mode/buffer-select frame written
	// to this board, so repeated readout calls that don't actually change
	// either skip the redundant write. -1 means "unknown", which forces the
	// next setMode/selectBuffer call to write regardless.
	curMode   int
	curBuffer int
}

// newGateway builds a gateway with no cached mode/buffer state, forcing the
// first setMode/selectBuffer call to write regardless of the argument.
func newGateway(b *batcher, board Board) *gateway {
	return &gateway{b: b, board: board, curMode: -1, curBuffer: -1}
}

// setMode writes regMode only if m differs from the board's last known
// mode.
func (g *gateway) setMode(m int) error {
	if g.curMode == m {
		return nil
	}
	if err := g.writeFrame(frames.mode[m]); err != nil {
		return err
	}
	g.curMode = m
	return nil
}

// selectBuffer writes regBufferSelect only if buf differs from the board's
// last known selected buffer.
func (g *gateway) selectBuffer(buf int) error {
	if g.curBuffer == buf {
		return nil
	}
	if err := g.writeFrame(frames.bufferSelect[buf]); err != nil {
		return err
	}
	g.curBuffer = buf
	return nil
}

// readRegister performs a set-read-address-then-read and verifies the
// response echoes the address requested. A mismatched echo is logged, not
// fatal: the caller gets the value the board actually returned.
func (g *gateway) readRegister(addr int) (uint32, error) {
	g.b.queue(frames.readAddr[addr])
	rx := make([]byte, 4)
	g.b.queueRead(newWriteFrame(regRead, 0, 0, 0), rx)
	if err := g.b.flush(); err != nil {
		return 0, fmt.Errorf("board: read register 0x%02x from %s: %w", addr, g.board, err)
	}
	if int(rx[0]) != addr {
		logThrottled("addr-echo", "board: %s register 0x%02x echoed 0x%02x", g.board, addr, rx[0])
	}
	return value24(frame{rx[0], rx[1], rx[2], rx[3]}), nil
}

// writeRegister issues a single four-byte write, bypassing the batcher: a
// write's completion is its own acknowledgement, so there is nothing worth
// batching it with.
func (g *gateway) writeRegister(addr int, payload uint32) error {
	f := newWriteFrame24(addr, payload)
	w := make([]byte, len(f))
	copy(w, f[:])
	if err := g.b.conn.TxPackets([]spi.Packet{{W: w}}); err != nil {
		return fmt.Errorf("board: write register 0x%02x to %s: %w", addr, g.board, err)
	}
	return nil
}

// writeFrame issues a single precomputed frame as-is, bypassing the batcher.
func (g *gateway) writeFrame(f frame) error {
	w := make([]byte, len(f))
	copy(w, f[:])
	if err := g.b.conn.TxPackets([]spi.Packet{{W: w}}); err != nil {
		return fmt.Errorf("board: write frame to %s: %w", g.board, err)
	}
	return nil
}
