// Copyright 2022 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package swarm

// ChunkType is the leading byte of the type prefixed chunk wire format.
type ChunkType uint8

const (
	ContentChunk ChunkType = iota
	SingleOwnerChunk
	UnknownChunk ChunkType = 0xff
)

// ChunkVersion is the version byte written after the chunk type.
const ChunkVersion uint8 = 1

// TypePrefixSize is the size of the type and version bytes.
const TypePrefixSize = 2

func (t ChunkType) String() string {
	switch t {
	case ContentChunk:
		return "content"
	case SingleOwnerChunk:
		return "single_owner"
	default:
		return "unknown"
	}
}
