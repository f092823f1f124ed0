// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package batch implements the "partition_or_time" primitive used by
// every stage of the ingestion pipeline: accumulate items from a
// channel and flush whenever a size threshold or a time interval is
// reached, whichever comes first.
package batch

import (
	"context"
	"time"
)

// Run reads items from in and calls flush with batches of up to size
// items, emitting a batch at least every interval even if it is not
// full. Run blocks until in is closed and the final partial batch (if
// any) has been flushed, or until ctx is canceled.
func Run[T any](ctx context.Context, in <-chan T, size int, interval time.Duration, flush func([]T)) {
	if size <= 0 {
		size = 1
	}

	buf := make([]T, 0, size)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	emit := func() {
		if len(buf) == 0 {
			return
		}
		flush(buf)
		buf = make([]T, 0, size)
	}

	for {
		select {
		case <-ctx.Done():
			emit()
			return

		case item, ok := <-in:
			if !ok {
				emit()
				return
			}

			buf = append(buf, item)
			if len(buf) >= size {
				emit()
				ticker.Reset(interval)
			}

		case <-ticker.C:
			emit()
		}
	}
}
