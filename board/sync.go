// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

// syncWrite issues a register write on the master, bracketed by SYNC_ON and
// SYNC_OFF, with the same write mirrored to the slave in between. The exact
// order — master SYNC_ON, slave write, master write, master SYNC_OFF — is
// what makes the boards latch the command on the same clock edge; any other
// interleaving desyncs the two FPGAs' trigger counters.
//
// When no slave is configured this degenerates to a single write on the
// master with no SYNC framing at all.
func (d *Device) syncWrite(addr int, payload uint32) error {
	if d.slave == nil {
		return d.master.writeRegister(addr, payload)
	}

	d.busMu.Lock()
	defer d.busMu.Unlock()

	if err := d.master.writeRegister(regSync, 1); err != nil {
		return err
	}
	if err := d.slave.writeRegister(addr, payload); err != nil {
		return err
	}
	if err := d.master.writeRegister(addr, payload); err != nil {
		return err
	}
	return d.master.writeRegister(regSync, 0)
}

// syncWriteFrame is syncWrite's precomputed-frame counterpart, used for
// commands that are issued via a frame table entry rather than an
// address/payload pair (e.g. clearing a buffer mask).
func (d *Device) syncWriteFrame(f frame) error {
	if d.slave == nil {
		return d.master.writeFrame(f)
	}

	d.busMu.Lock()
	defer d.busMu.Unlock()

	if err := d.master.writeRegister(regSync, 1); err != nil {
		return err
	}
	if err := d.slave.writeFrame(f); err != nil {
		return err
	}
	if err := d.master.writeFrame(f); err != nil {
		return err
	}
	return d.master.writeRegister(regSync, 0)
}
