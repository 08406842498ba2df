// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import (
	"log"
	"sync"
)

// maxLogsPerCategory caps how many times logThrottled will print for a given
// category before it goes silent, so a persistently desynced board doesn't
// flood the log.
const maxLogsPerCategory = 10

var (
	logMu    sync.Mutex
	logCount = map[string]int{}
)

// logThrottled prints at most maxLogsPerCategory messages per category,
// across the lifetime of the process.
func logThrottled(category, format string, args ...interface{}) {
	logMu.Lock()
	n := logCount[category]
	if n >= maxLogsPerCategory {
		logMu.Unlock()
		return
	}
	logCount[category] = n + 1
	logMu.Unlock()
	log.Printf(format, args...)
	if n+1 == maxLogsPerCategory {
		log.Printf("board: further %q messages suppressed", category)
	}
}
