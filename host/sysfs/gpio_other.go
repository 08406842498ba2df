// Copyright 2016 The PIO Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// +build !linux

package sysfs

func isErrBusy(err error) bool {
	// This function is not used on non-linux.
	return false
}
