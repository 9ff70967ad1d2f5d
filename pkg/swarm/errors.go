// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package swarm

import "errors"

// Error classes shared by the hashing and chunk packages. Package specific
// errors wrap one of these, so callers can match on either.
var (
	// ErrSizeExceeded is returned when data exceeds ChunkSize.
	ErrSizeExceeded = errors.New("size exceeded")
	// ErrIndexOutOfRange is returned for segment indexes outside the data.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidChunk is returned for structurally malformed chunk bytes.
	ErrInvalidChunk = errors.New("invalid chunk")
	// ErrIntegrity is returned when a recomputed address does not match.
	ErrIntegrity = errors.New("address mismatch")
	// ErrAuthentication is returned for bad signatures or key material.
	ErrAuthentication = errors.New("authentication failed")
	// ErrUnknownFormat is returned when chunk bytes cannot be classified.
	ErrUnknownFormat = errors.New("unknown chunk format")
)
