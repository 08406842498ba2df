// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sysfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/beacontau/beacon/conn/gpio"
)

// OpenPin returns a handle to a single GPIO line by its sysfs number. It
// touches no file: the line is exported and its value/direction files are
// opened on the first In or Out call.
//
// Unlike the upstream driver this package is adapted from, there is no
// chip-wide discovery or registry: the two boards this driver talks to wire
// exactly two lines (a power-enable output and an optional buffer-ready
// interrupt input), and both are identified by their sysfs GPIO number in
// the board's configuration.
func OpenPin(number int, name string) (*Pin, error) {
	if !isLinux {
		return nil, errors.New("sysfs-gpio: not implemented on non-linux OSes")
	}
	if name == "" {
		name = fmt.Sprintf("GPIO%d", number)
	}
	return &Pin{
		number:           number,
		name:             name,
		root:             fmt.Sprintf("/sys/class/gpio/gpio%d/", number),
		edgeChan:         make(chan time.Time),
		cancelListenEdge: func() {},
		cancelWaitChan:   make(chan struct{}),
	}, nil
}

// Pin represents one GPIO line exported through /sys/class/gpio.
type Pin struct {
	number         int
	name           string
	root           string         // /sys/class/gpio/gpio%d/
	edgeChan       chan time.Time // used for edge detection
	cancelWaitChan chan struct{}  // used to unblock WaitForEdge
	wg             sync.WaitGroup

	mu         sync.Mutex
	err        error // set if export/open failed
	direction  direction
	edge       gpio.Edge
	fDirection fileIO  // /sys/class/gpio/gpio*/direction; never closed
	fEdge      fileIO  // /sys/class/gpio/gpio*/edge; never closed
	fValue     fileIO  // /sys/class/gpio/gpio*/value; never closed
	buf        [4]byte // scratch buffer for Read() and Out()

	muCancel         sync.Mutex
	cancelListenEdge func()
	until            time.Time // edges before this timestamp are ignored
}

func (p *Pin) String() string   { return p.name }
func (p *Pin) Name() string     { return p.name }
func (p *Pin) Number() int      { return p.number }
func (p *Pin) Function() string {
	p.mu.Lock()
	d := p.direction
	p.mu.Unlock()
	switch d {
	case dIn:
		return "In"
	case dOut:
		return "Out"
	default:
		return ""
	}
}

// In implements gpio.PinIn.
func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	if pull != gpio.PullNoChange && pull != gpio.Float {
		return p.wrap(errors.New("doesn't support pull-up/pull-down"))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.direction != dIn {
		if err := p.open(); err != nil {
			return p.wrap(err)
		}
		if err := seekWrite(p.fDirection, bIn); err != nil {
			return p.wrap(err)
		}
		p.direction = dIn
	}
	if edge != gpio.NoEdge {
		if p.fEdge == nil {
			var err error
			if p.fEdge, err = fileIOOpen(p.root+"edge", os.O_RDWR); err != nil {
				return p.wrap(err)
			}
		}

		p.muCancel.Lock()
		p.cancelWait()
		ctx, cancel := context.WithCancel(context.Background())
		p.cancelListenEdge = cancel

		if p.edge != edge {
			var b []byte
			switch edge {
			case gpio.Rising:
				b = bRising
			case gpio.Falling:
				b = bFalling
			case gpio.Both:
				b = bBoth
			}
			if err := seekWrite(p.fEdge, b); err != nil {
				p.muCancel.Unlock()
				return p.wrap(err)
			}
			p.edge = edge
		}

		fd := p.fValue.Fd()
		p.wg.Add(1)
		go func() {
			p.until = time.Now()
			p.muCancel.Unlock()
			_ = events.listen(ctx, fd, p.edgeChan)
			p.wg.Done()
		}()
		return nil
	}
	return p.haltEdge()
}

// Read implements gpio.PinIn.
func (p *Pin) Read() gpio.Level {
	if p.fValue == nil {
		return gpio.Low
	}
	if _, err := seekRead(p.fValue, p.buf[:]); err != nil {
		return gpio.Low
	}
	switch p.buf[0] {
	case '1':
		return gpio.High
	default:
		return gpio.Low
	}
}

// WaitForEdge implements gpio.PinIn.
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	p.muCancel.Lock()
	until := p.until
	p.muCancel.Unlock()
	if until.IsZero() {
		return false
	}

	if timeout < 0 {
		for {
			select {
			case t := <-p.edgeChan:
				if until.Before(t) {
					return true
				}
			case <-p.cancelWaitChan:
				return false
			}
		}
	}

	if timeout == 0 {
		select {
		case t := <-p.edgeChan:
			return until.Before(t)
		default:
			return false
		}
	}

	c := time.After(timeout)
	for {
		select {
		case t := <-p.edgeChan:
			if until.Before(t) {
				return true
			}
		case <-c:
			return false
		case <-p.cancelWaitChan:
			return false
		}
	}
}

// Out implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.direction != dOut {
		if err := p.open(); err != nil {
			return p.wrap(err)
		}
		if err := p.haltEdge(); err != nil {
			return err
		}
		d := bLow
		if l == gpio.High {
			d = bHigh
		}
		if err := seekWrite(p.fDirection, d); err != nil {
			return p.wrap(err)
		}
		p.direction = dOut
		return nil
	}
	if l == gpio.Low {
		p.buf[0] = '0'
	} else {
		p.buf[0] = '1'
	}
	if err := seekWrite(p.fValue, p.buf[:1]); err != nil {
		return p.wrap(err)
	}
	return nil
}

//

// open exports the pin (if needed) and opens its value/direction handles.
//
// lock must be held.
func (p *Pin) open() error {
	if p.fDirection != nil || p.err != nil {
		return p.err
	}

	if p.fValue, p.err = fileIOOpen(p.root+"value", os.O_RDWR); p.err == nil {
		goto direction
	} else if !os.IsNotExist(p.err) {
		p.err = fmt.Errorf("need more access, try as root or setup udev rules: %v", p.err)
		return p.err
	}

	{
		exportHandle, err := fileIOOpen("/sys/class/gpio/export", os.O_WRONLY)
		if err != nil {
			p.err = err
			return p.err
		}
		defer exportHandle.Close()
		if _, p.err = exportHandle.Write([]byte(strconv.Itoa(p.number))); p.err != nil && !isErrBusy(p.err) {
			if os.IsPermission(p.err) {
				p.err = fmt.Errorf("need more access, try as root or setup udev rules: %v", p.err)
			}
			return p.err
		}
	}

	// udev rule execution to fix up the file mode is asynchronous; loop a
	// little rather than fail on a transient permission error.
	for start := time.Now(); time.Since(start) < 5*time.Second; {
		if p.fValue, p.err = fileIOOpen(p.root+"value", os.O_RDWR); p.err == nil || !os.IsPermission(p.err) {
			break
		}
	}
	if p.err != nil {
		return p.err
	}

direction:
	if p.fDirection, p.err = fileIOOpen(p.root+"direction", os.O_RDWR); p.err != nil {
		_ = p.fValue.Close()
		p.fValue = nil
	}
	return p.err
}

// haltEdge disables edge detection and unblocks any pending WaitForEdge.
//
// Must be called with mu held.
func (p *Pin) haltEdge() error {
	if p.edge != gpio.NoEdge {
		if err := seekWrite(p.fEdge, bNone); err != nil {
			return p.wrap(err)
		}
		p.edge = gpio.NoEdge
		p.muCancel.Lock()
		p.cancelWait()
		p.muCancel.Unlock()
	}
	return nil
}

// cancelWait unblocks any pending WaitForEdge and stops the edge listener.
//
// Must be called with p.muCancel held.
func (p *Pin) cancelWait() {
	p.cancelListenEdge()
	for {
		select {
		case p.cancelWaitChan <- struct{}{}:
		case <-p.edgeChan:
		default:
			p.wg.Wait()
			p.cancelListenEdge = func() {}
			p.until = time.Time{}
			return
		}
	}
}

func (p *Pin) wrap(err error) error {
	return fmt.Errorf("sysfs-gpio (%s): %v", p, err)
}

//

type direction int

const (
	dUnknown direction = 0
	dIn      direction = 1
	dOut     direction = 2
)

var (
	bIn      = []byte("in")
	bLow     = []byte("low")
	bHigh    = []byte("high")
	bNone    = []byte("none")
	bRising  = []byte("rising")
	bFalling = []byte("falling")
	bBoth    = []byte("both")
)

var _ gpio.PinIn = &Pin{}
var _ gpio.PinOut = &Pin{}
var _ gpio.PinIO = &Pin{}
