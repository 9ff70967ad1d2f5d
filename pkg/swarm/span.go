// Copyright 2021 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package swarm

import "encoding/binary"

// LengthToSpan returns the little-endian span encoding of length.
func LengthToSpan(length uint64) []byte {
	span := make([]byte, SpanSize)
	binary.LittleEndian.PutUint64(span, length)
	return span
}

// SpanFromBytes decodes the span in the first SpanSize bytes of b.
// The caller must make sure b is long enough.
func SpanFromBytes(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b[:SpanSize])
}
