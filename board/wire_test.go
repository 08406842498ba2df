// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import "testing"

func TestReverseBitsRoundTrip(t *testing.T) {
	for b := 0; b < 256; b++ {
		got := reverseBits(reverseBits(byte(b)))
		if got != byte(b) {
			t.Fatalf("reverseBits(reverseBits(0x%02x)) = 0x%02x, want 0x%02x", b, got, b)
		}
	}
}

func TestReverseBitsKnownValues(t *testing.T) {
	cases := []struct{ in, want byte }{
		{0x80, 0x01},
		{0x01, 0x80},
		{0xa5, 0xa5},
		{0x00, 0x00},
		{0xff, 0xff},
	}
	for _, c := range cases {
		if got := reverseBits(c.in); got != c.want {
			t.Errorf("reverseBits(0x%02x) = 0x%02x, want 0x%02x", c.in, got, c.want)
		}
	}
}

func TestValue24BigEndian(t *testing.T) {
	f := frame{0x11, 0x01, 0x02, 0x03}
	got := value24(f)
	want := uint32(0x010203)
	if got != want {
		t.Fatalf("value24 = 0x%06x, want 0x%06x", got, want)
	}
}

func TestCombine48(t *testing.T) {
	got := combine48(0x000001, 0x000002)
	want := uint64(0x000002000001)
	if got != want {
		t.Fatalf("combine48 = 0x%012x, want 0x%012x", got, want)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	f := newWriteFrame24(0x42, 0x123456)
	got := value24(f)
	if got != 0x123456 {
		t.Fatalf("round trip through newWriteFrame24/value24 = 0x%06x, want 0x123456", got)
	}
}
