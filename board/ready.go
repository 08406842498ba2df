// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

// bufferStatus is the decoded STATUS register: which ring buffer slots hold
// an unread event, and which slot the hardware will write next.
type bufferStatus struct {
	readyMask uint8 // low 4 bits: one bit per buffer with an event pending
	hwNext    uint8 // bits 4-5: the buffer the hardware will fill next
}

// readStatus always re-reads STATUS from the device; the ready mask is
// never served from a cache, since the hardware can set a bit at any time.
func (g *gateway) readStatus() (bufferStatus, error) {
	v, err := g.readRegister(regStatus)
	if err != nil {
		return bufferStatus{}, err
	}
	return bufferStatus{
		readyMask: uint8(v) & 0xf,
		hwNext:    uint8(v>>4) & 0x3,
	}, nil
}
