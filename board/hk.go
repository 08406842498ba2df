// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

// Housekeeping is a snapshot of scalar, slowly-changing board state, read
// on demand rather than as part of event readout.
type Housekeeping struct {
	FirmwareVersion uint32
	FirmwareDate    uint32
	ChipID          uint32
	PPSCounter      uint32
	VetoStatus      uint32
}

// ReadHousekeeping reads board's scalar housekeeping registers.
func (d *Device) ReadHousekeeping(b Board) (Housekeeping, error) {
	g := d.gatewayFor(b)
	if b == Slave && d.slave == nil {
		return Housekeeping{}, ErrNoSlave
	}

	var hk Housekeeping
	var err error
	if hk.FirmwareVersion, err = g.readRegister(regFirmwareVersion); err != nil {
		return hk, err
	}
	if hk.FirmwareDate, err = g.readRegister(regFirmwareDate); err != nil {
		return hk, err
	}
	chipLow, err := g.readRegister(regChipIDLow)
	if err != nil {
		return hk, err
	}
	chipMid, err := g.readRegister(regChipIDMid)
	if err != nil {
		return hk, err
	}
	chipHi, err := g.readRegister(regChipIDHi)
	if err != nil {
		return hk, err
	}
	hk.ChipID = chipLow | chipMid<<8 | chipHi<<16
	if hk.PPSCounter, err = g.readRegister(regPPSCounter); err != nil {
		return hk, err
	}
	if hk.VetoStatus, err = g.readRegister(regVetoStatus); err != nil {
		return hk, err
	}
	return hk, nil
}
