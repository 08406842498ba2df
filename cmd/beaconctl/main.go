// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command beaconctl configures and reads out a beacon digitizer board pair
// from the command line.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/beacontau/beacon/board"
)

func main() {
	log.SetFlags(0)
	configDir := flag.String("config-dir", "", "directory to search for beacon.toml")
	timeout := flag.Duration("timeout", 5*time.Second, "how long to wait for an event")
	bufferLength := flag.Int("buffer-length", 512, "waveform samples per channel")
	pretrigger := flag.Int("pretrigger", 2, "pretrigger window")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: beaconctl [flags] <reset|watch|hk>")
		os.Exit(2)
	}

	cfg, found := board.LoadConfig(*configDir)
	if !found {
		log.Printf("beaconctl: no beacon.toml found, using default config")
	}

	d, err := board.Open(cfg)
	if err != nil {
		log.Fatalf("beaconctl: open: %v", err)
	}
	defer d.Close()

	switch flag.Arg(0) {
	case "reset":
		if err := d.Reset(board.ResetCalibrate); err != nil {
			log.Fatalf("beaconctl: reset: %v", err)
		}
	case "watch":
		watch(d, *timeout, *bufferLength, *pretrigger)
	case "hk":
		dumpHousekeeping(d)
	default:
		fmt.Fprintf(os.Stderr, "beaconctl: unknown subcommand %q\n", flag.Arg(0))
		os.Exit(2)
	}
}

func watch(d *board.Device, timeout time.Duration, bufferLength, pretrigger int) {
	for {
		status, mask, err := d.Wait(timeout)
		if err != nil {
			log.Fatalf("beaconctl: wait: %v", err)
		}
		switch status {
		case board.WaitTimedOut:
			log.Printf("beaconctl: no event within %s", timeout)
			continue
		case board.WaitCancelled:
			log.Printf("beaconctl: wait cancelled")
			return
		case board.WaitBusy:
			log.Printf("beaconctl: another wait already in progress")
			return
		}

		h, _, err := d.ReadEvent(mask, bufferLength, pretrigger)
		if err != nil {
			log.Fatalf("beaconctl: read event: %v", err)
		}
		log.Printf("event %d: buffer %d trig %d sync=%#x", h.EventNumber, h.BufferNumber, h.TrigNumber, h.Sync)
	}
}

// dumpHousekeeping prints the board's scalar housekeeping registers in the
// same one-value-per-line shape as the original dump_shared_hk example,
// read straight off the device rather than from a saved file.
func dumpHousekeeping(d *board.Device) {
	hk, err := d.ReadHousekeeping(board.Master)
	if err != nil {
		log.Fatalf("beaconctl: hk: %v", err)
	}
	fmt.Printf("firmware version: 0x%x\n", hk.FirmwareVersion)
	fmt.Printf("firmware date: 0x%x\n", hk.FirmwareDate)
	fmt.Printf("chip id: 0x%x\n", hk.ChipID)
	fmt.Printf("pps counter: %d\n", hk.PPSCounter)
	fmt.Printf("veto status: 0x%x\n", hk.VetoStatus)
}
