// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import "github.com/beacontau/beacon/conn/spi"

// maxXfers bounds the number of packets queued in one batch, one less than
// the kernel's spidev multi-transfer limit. Appending to a batch that
// already holds maxXfers packets flushes it first.
const maxXfers = 511

// batcher accumulates half-duplex SPI packets and flushes them as a single
// TxPackets call, so that a sequence of register writes/reads that don't
// need an intermediate result costs one ioctl instead of many.
type batcher struct {
	conn  spi.Conn
	pkts  []spi.Packet
	rbufs [][]byte
}

func newBatcher(c spi.Conn) *batcher {
	return &batcher{conn: c}
}

// queue appends a write-only packet.
func (b *batcher) queue(tx frame) {
	b.append(tx[:], nil)
}

// queueRead appends a packet whose response is captured into a provided
// buffer, which must remain valid until flush.
func (b *batcher) queueRead(tx frame, rx []byte) {
	b.append(tx[:], rx)
}

func (b *batcher) append(tx []byte, rx []byte) {
	if len(b.pkts) >= maxXfers {
		b.flush()
	}
	w := make([]byte, len(tx))
	copy(w, tx)
	p := spi.Packet{W: w}
	if rx != nil {
		p.R = rx
	}
	b.pkts = append(b.pkts, p)
}

// flush issues every queued packet as one multi-transfer call and resets
// the queue, whether or not the call succeeds.
func (b *batcher) flush() error {
	if len(b.pkts) == 0 {
		return nil
	}
	pkts := b.pkts
	b.pkts = nil
	return b.conn.TxPackets(pkts)
}

// pending reports the number of queued, unflushed packets.
func (b *batcher) pending() int {
	return len(b.pkts)
}
