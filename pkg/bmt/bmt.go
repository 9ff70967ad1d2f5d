// Copyright 2021 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bmt

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/ethersphere/nectar/pkg/swarm"
	"golang.org/x/sync/errgroup"
)

var _ Hash = (*Hasher)(nil)

var zerospan = make([]byte, SpanSize)

// Hasher is a reusable hasher for fixed maximum size chunks representing a BMT
// It reuses a pool of trees for amortised memory allocation and resource control,
// and supports sequential write (io.Writer interface) of up to Capacity bytes.
//
// The same hasher instance must not be called concurrently on more than one chunk.
//
// The same hasher instance is synchronously reuseable.
//
// Hash does not change the written data, span or prefix, so it may be called
// repeatedly and interleaved with further writes.
type Hasher struct {
	*Conf         // configuration
	bmt    *tree  // prebuilt BMT resource for flowcontrol and proofs
	prefix []byte // optional bytes hashed ahead of span and root
	span   []byte // The span of the data subsumed under the chunk
	size   int    // bytes written to Hasher since last Reset()
}

// NewHasher gives back a BMT hasher over swarm.BmtBranches segments that
// does not belong to any pool.
func NewHasher() *Hasher {
	return NewPool(NewConf(swarm.NewHasher, swarm.BmtBranches, 1)).Get()
}

// Capacity returns the maximum amount of bytes that will be processed by this hasher implementation.
// since BMT assumes a balanced binary tree, capacity it is always a power of 2
func (h *Hasher) Capacity() int {
	return h.maxSize
}

// SetSpan sets the span of the current hash operation.
func (h *Hasher) SetSpan(length uint64) {
	binary.LittleEndian.PutUint64(h.span, length)
}

// SetHeaderInt64 sets the metadata preamble to the little endian binary representation of int64 argument for the current hash operation.
func (h *Hasher) SetHeaderInt64(length int64) {
	h.SetSpan(uint64(length))
}

// SetHeader sets the metadata preamble to the span bytes given argument for the current hash operation.
func (h *Hasher) SetHeader(span []byte) {
	copy(h.span, zerospan)
	copy(h.span, span)
}

// Span returns the span set for the current hash operation.
func (h *Hasher) Span() uint64 {
	return binary.LittleEndian.Uint64(h.span)
}

// SetPrefix sets bytes that are hashed ahead of the span in the final
// compression of the BMT hash. The prefix survives Reset.
func (h *Hasher) SetPrefix(prefix []byte) {
	if len(prefix) == 0 {
		h.prefix = nil
		return
	}
	h.prefix = append(h.prefix[:0], prefix...)
}

// Prefix returns the prefix set on the hasher.
func (h *Hasher) Prefix() []byte {
	return h.prefix
}

// Size returns the digest size of the hash
func (h *Hasher) Size() int {
	return h.segmentSize
}

// BlockSize returns the optimal write size to the Hasher
func (h *Hasher) BlockSize() int {
	return 2 * h.segmentSize
}

// Len returns the number of bytes written since the last Reset.
func (h *Hasher) Len() int {
	return h.size
}

// Hash returns the BMT hash of the buffer appended to b and an error
// using Hash presupposes sequential synchronous writes (io.Writer interface).
// It fails with ErrOverflow if more than Capacity bytes were written.
func (h *Hasher) Hash(b []byte) ([]byte, error) {
	if h.size > h.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrOverflow, h.size)
	}
	root, err := h.root()
	if err != nil {
		return nil, err
	}
	s, err := doHash(h.bmt.hashers[0], h.prefix, h.span, root)
	if err != nil {
		return nil, err
	}
	return append(b, s...), nil
}

// Sum returns the BMT root hash of the buffer appended to b, unsafe version
// of Hash that returns nil on error.
func (h *Hasher) Sum(b []byte) []byte {
	s, err := h.Hash(b)
	if err != nil {
		return nil
	}
	return s
}

// ChunkAddress replaces the written data with data and returns its address
// using the span and prefix currently set.
func (h *Hasher) ChunkAddress(data []byte) (swarm.Address, error) {
	if len(data) > h.maxSize {
		return swarm.ZeroAddress, fmt.Errorf("%w: %d bytes", ErrOverflow, len(data))
	}
	h.resetData()
	if _, err := h.Write(data); err != nil {
		return swarm.ZeroAddress, err
	}
	s, err := h.Hash(nil)
	if err != nil {
		return swarm.ZeroAddress, err
	}
	return swarm.NewAddress(s), nil
}

// Write appends b to the buffer to be hashed. Bytes beyond Capacity are
// counted but not kept, so that Hash reports the overflow.
func (h *Hasher) Write(b []byte) (int, error) {
	if h.size < h.maxSize {
		copy(h.bmt.buffer[h.size:], b)
	}
	h.size += len(b)
	return len(b), nil
}

// Reset prepares the Hasher for reuse. The prefix is kept.
func (h *Hasher) Reset() {
	h.resetData()
	copy(h.span, zerospan)
}

func (h *Hasher) resetData() {
	n := h.size
	if n > h.maxSize {
		n = h.maxSize
	}
	copy(h.bmt.buffer[:n], make([]byte, n))
	h.size = 0
}

// length returns the number of written bytes that are part of the tree.
func (h *Hasher) length() int {
	if h.size > h.maxSize {
		return h.maxSize
	}
	return h.size
}

// root computes all levels of the tree over the buffer and returns the
// root. Subtrees entirely past the written data take their value from the
// zero hash table, and an all zero buffer yields the zero root directly.
func (h *Hasher) root() ([]byte, error) {
	t := h.bmt
	n := h.length()
	if isZero(t.buffer[:n]) {
		h.fillZero()
		return h.zerohashes[h.depth], nil
	}

	secsize := 2 * h.segmentSize
	sections := (n + secsize - 1) / secsize
	parallel := n >= h.parallelThreshold && len(t.hashers) > 1

	// the first two levels carry most of the work
	live := sections
	for level := 0; level < h.depth; level++ {
		var err error
		if parallel && level < 2 {
			err = h.hashLevelConcurrent(level, live)
		} else {
			err = h.hashLevel(t.hashers[0], level, 0, live)
		}
		if err != nil {
			return nil, err
		}
		h.fillLevelZero(level, live)
		live = (live + 1) / 2
	}
	return t.levels[h.depth-1], nil
}

// hashLevel hashes the nodes [from, to) of level. The inputs of level 0
// are data sections, the inputs of higher levels are pairs of the level
// below.
func (h *Hasher) hashLevel(hasher hash.Hash, level, from, to int) error {
	t := h.bmt
	segsize := h.segmentSize
	src := t.buffer
	if level > 0 {
		src = t.levels[level-1]
	}
	dst := t.levels[level]
	for i := from; i < to; i++ {
		s, err := doHash(hasher, src[2*i*segsize:2*(i+1)*segsize])
		if err != nil {
			return err
		}
		copy(dst[i*segsize:], s)
	}
	return nil
}

// hashLevelConcurrent splits the live nodes of a level among the workers.
func (h *Hasher) hashLevelConcurrent(level, live int) error {
	workers := len(h.bmt.hashers)
	if workers > live {
		workers = live
	}
	per := (live + workers - 1) / workers
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		from, to := w*per, (w+1)*per
		if to > live {
			to = live
		}
		if from >= to {
			break
		}
		hasher := h.bmt.hashers[w]
		g.Go(func() error {
			return h.hashLevel(hasher, level, from, to)
		})
	}
	return g.Wait()
}

// fillLevelZero sets the nodes of level past the live ones to the
// root of an all zero subtree of matching height.
func (h *Hasher) fillLevelZero(level, live int) {
	segsize := h.segmentSize
	dst := h.bmt.levels[level]
	for i := live * segsize; i < len(dst); i += segsize {
		copy(dst[i:], h.zerohashes[level+1])
	}
}

func (h *Hasher) fillZero() {
	for level := range h.bmt.levels {
		h.fillLevelZero(level, 0)
	}
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// LengthToSpan creates a binary data span size representation.
// It is required for calculating the BMT hash.
func LengthToSpan(length int64) []byte {
	return swarm.LengthToSpan(uint64(length))
}

// Sha3hash calculates the Keccak256 SHA3 hash of the data.
func Sha3hash(data ...[]byte) ([]byte, error) {
	return doHash(swarm.NewHasher(), data...)
}

// doHash calculates the hash of the data using hash.Hash.
func doHash(h hash.Hash, data ...[]byte) ([]byte, error) {
	h.Reset()
	for _, v := range data {
		if _, err := h.Write(v); err != nil {
			return nil, err
		}
	}
	return h.Sum(nil), nil
}
