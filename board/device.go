// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/beacontau/beacon/conn/gpio"
	"github.com/beacontau/beacon/conn/physic"
	"github.com/beacontau/beacon/conn/spi"
	"github.com/beacontau/beacon/host/sysfs"
)

// defaultClock is the SPI clock used unless Config overrides it.
const defaultClock = 20 * physic.MegaHertz

// nextBoardID is the process-wide, monotonically increasing board-ID
// counter. Open only ever bumps it upward, so two Devices opened in the same
// process never collide. It starts at 1 in every process.
var nextBoardID uint32 = 1

// Config describes how to open a Device.
type Config struct {
	// MasterBus, MasterChipSelect address the master board's /dev/spidevN.M.
	MasterBus, MasterChipSelect int
	// HasSlave enables the slave board at SlaveBus/SlaveChipSelect.
	HasSlave                  bool
	SlaveBus, SlaveChipSelect int
	// PowerGPIO, if nonzero, is the sysfs GPIO line number driven low to
	// power the boards on Open (active-low enable) and high on Close.
	PowerGPIO int
	// Lock requests an exclusive advisory lock on both device nodes, so a
	// second process opening the same boards fails fast instead of racing
	// the first for the bus.
	Lock bool
	// ClockHz overrides the default 20MHz SPI clock.
	ClockHz physic.Frequency
	// PollInterval overrides the default 500µs Wait poll interval.
	PollInterval time.Duration
}

// DefaultConfig returns the single-board, no-lock, default-clock
// configuration used when no TOML config file is found.
func DefaultConfig() Config {
	return Config{MasterBus: 0, MasterChipSelect: 0}
}

// Device is an open handle to a master board and optional slave.
//
// Cancel may be called from any goroutine, and only one Wait may be
// outstanding at a time (see Wait). Other methods do not serialize their
// SPI traffic against each other: only syncWrite and syncWriteFrame take
// busMu, and only when a slave is configured. Config.Lock takes file locks
// against other processes, not a mutex within this one.
type Device struct {
	cfg    Config
	master *gateway
	slave  *gateway // nil when cfg.HasSlave is false

	masterPort *sysfs.SPI
	slavePort  *sysfs.SPI
	masterLock *os.File
	slaveLock  *os.File

	power gpio.PinIO

	busMu sync.Mutex // held for the duration of a syncWrite/syncWriteFrame with a slave

	waiting   int32 // atomic: 1 while a Wait call is in flight
	cancelled int32 // atomic: 1 when a cancellation is pending

	pollInterval time.Duration

	nextReadBuffer   int
	eventNumberBase  uint64
	lastEventCounter uint64
	boardID          [2]uint16
	resetEpoch       time.Time
	closed           bool
}

// Open configures and returns a handle to the boards described by cfg.
func Open(cfg Config) (*Device, error) {
	masterPort, err := sysfs.NewSPI(cfg.MasterBus, cfg.MasterChipSelect)
	if err != nil {
		return nil, fmt.Errorf("board: open master: %w", err)
	}
	clock := cfg.ClockHz
	if clock == 0 {
		clock = defaultClock
	}
	masterConn, err := masterPort.Connect(clock, spi.Mode0, 8)
	if err != nil {
		masterPort.Close()
		return nil, fmt.Errorf("board: connect master: %w", err)
	}

	d := &Device{
		cfg:          cfg,
		masterPort:   masterPort,
		master:       newGateway(newBatcher(masterConn), Master),
		pollInterval: cfg.PollInterval,
	}

	if cfg.Lock {
		lf, err := lockDevNode(devNodePath(cfg.MasterBus, cfg.MasterChipSelect))
		if err != nil {
			d.Close()
			return nil, err
		}
		d.masterLock = lf
	}

	if cfg.HasSlave {
		slavePort, err := sysfs.NewSPI(cfg.SlaveBus, cfg.SlaveChipSelect)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("board: open slave: %w", err)
		}
		d.slavePort = slavePort
		slaveConn, err := slavePort.Connect(clock, spi.Mode0, 8)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("board: connect slave: %w", err)
		}
		d.slave = newGateway(newBatcher(slaveConn), Slave)
		if cfg.Lock {
			lf, err := lockDevNode(devNodePath(cfg.SlaveBus, cfg.SlaveChipSelect))
			if err != nil {
				d.Close()
				return nil, err
			}
			d.slaveLock = lf
		}
	}

	if cfg.PowerGPIO != 0 {
		pin, err := sysfs.OpenPin(cfg.PowerGPIO, "board-power")
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("board: open power gpio: %w", err)
		}
		if err := pin.Out(gpio.Low); err != nil {
			d.Close()
			return nil, fmt.Errorf("board: enable power gpio: %w", err)
		}
		d.power = pin
	}

	// Make sure a stale SYNC is not left asserted from a previous run.
	if err := d.master.writeRegister(regSync, 0); err != nil {
		d.Close()
		return nil, fmt.Errorf("board: clear sync: %w", err)
	}

	d.eventNumberBase = uint64(time.Now().Unix()) << 32
	d.boardID[Master] = uint16(atomic.AddUint32(&nextBoardID, 1) - 1)
	if d.slave != nil {
		d.boardID[Slave] = uint16(atomic.AddUint32(&nextBoardID, 1) - 1)
	}

	if err := d.checkFirmwareIdentity(); err != nil {
		logThrottled("firmware-mismatch", "%v", err)
	}

	if err := d.Reset(ResetCounters); err != nil {
		d.Close()
		return nil, fmt.Errorf("board: initial reset: %w", err)
	}

	return d, nil
}

// checkFirmwareIdentity warns, without failing Open, when master and slave
// report different firmware versions.
func (d *Device) checkFirmwareIdentity() error {
	if d.slave == nil {
		return nil
	}
	mv, err := d.master.readRegister(regFirmwareVersion)
	if err != nil {
		return err
	}
	sv, err := d.slave.readRegister(regFirmwareVersion)
	if err != nil {
		return err
	}
	if mv != sv {
		return fmt.Errorf("board: master firmware 0x%x != slave firmware 0x%x", mv, sv)
	}
	return nil
}

// Close releases the handle. Any in-progress Wait is cancelled first, then
// resources are released in the reverse order they were acquired.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.Cancel()

	var firstErr error
	if d.power != nil {
		if err := d.power.Out(gpio.High); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.slaveLock != nil {
		unix.Flock(int(d.slaveLock.Fd()), unix.LOCK_UN)
		d.slaveLock.Close()
	}
	if d.slavePort != nil {
		if err := d.slavePort.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.masterLock != nil {
		unix.Flock(int(d.masterLock.Fd()), unix.LOCK_UN)
		d.masterLock.Close()
	}
	if d.masterPort != nil {
		if err := d.masterPort.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// devNodePath reconstructs the spidev path from bus/chip-select numbers, for
// use as the advisory-lock target alongside the already-open sysfs.SPI.
func devNodePath(bus, cs int) string {
	return fmt.Sprintf("/dev/spidev%d.%d", bus, cs)
}

// lockDevNode takes a non-blocking exclusive advisory lock on path's device
// node, returning ErrLockHeld if another process already holds it.
func lockDevNode(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("board: open %s for locking: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrLockHeld
		}
		return nil, fmt.Errorf("board: flock %s: %w", path, err)
	}
	return f, nil
}
