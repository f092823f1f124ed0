// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metricstore

import "fmt"

// BatchWriteFailedError wraps a store-side failure committing a batch
// of point writes. The batch is dropped; at-least-once delivery means
// a later sample for the same key is not lost, only delayed.
type BatchWriteFailedError struct {
	Size  int
	Cause error
}

func (e *BatchWriteFailedError) Error() string {
	return fmt.Sprintf("batch write of %d points failed: %v", e.Size, e.Cause)
}

func (e *BatchWriteFailedError) Unwrap() error {
	return e.Cause
}

// FetchTimeoutError is returned when a per-path read exceeds its
// deadline; it aborts the whole fetch.
type FetchTimeoutError struct {
	Path string
}

func (e *FetchTimeoutError) Error() string {
	return fmt.Sprintf("fetch timed out reading path %q", e.Path)
}
