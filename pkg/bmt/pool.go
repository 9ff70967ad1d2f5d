// Copyright 2021 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bmt

import (
	"hash"
)

const (
	// DefaultParallelThreshold is the number of written bytes from which the
	// lowest levels of the tree are hashed concurrently.
	DefaultParallelThreshold = 2048
	// DefaultWorkers is the number of goroutines used on the concurrent path.
	DefaultWorkers = 8
)

// BaseHasherFunc is a hash.Hash constructor function used for the base hash of the BMT.
// implemented by Keccak256 SHA3 sha3.NewLegacyKeccak256
type BaseHasherFunc func() hash.Hash

// Conf is the configuration shared by all trees of a Pool.
type Conf struct {
	segmentSize       int            // size of leaf segments, stipulated to be = hash size
	segmentCount      int            // the number of segments on the base level of the BMT
	capacity          int            // pool capacity, controls concurrency
	depth             int            // depth of the bmt trees = int(log2(segmentCount))+1
	maxSize           int            // the total length of the data (count * size)
	zerohashes        [][]byte       // lookup table for predictable padding subtrees for all levels
	hasher            BaseHasherFunc // base hasher to use for the BMT levels
	parallelThreshold int            // minimum data length hashed concurrently
	workers           int            // goroutines used for concurrent level hashing
}

// Pool provides a pool of trees used as resources by the BMT Hasher.
// A tree popped from the pool is guaranteed to have a clean state ready
// for hashing a new chunk.
type Pool struct {
	c     chan *tree // the channel to obtain a resource from the pool
	*Conf            // configuration
}

// NewConf returns the configuration of trees over segmentCount segments
// hashed with hasher. It panics if the base hasher cannot hash zero segments.
func NewConf(hasher BaseHasherFunc, segmentCount, capacity int) *Conf {
	count, depth := sizeToParams(segmentCount)
	segmentSize := hasher().Size()
	zerohashes := make([][]byte, depth+1)
	zeros := make([]byte, segmentSize)
	zerohashes[0] = zeros
	var err error
	for i := 1; i < depth+1; i++ {
		if zeros, err = doHash(hasher(), zeros, zeros); err != nil {
			panic(err.Error())
		}
		zerohashes[i] = zeros
	}
	return &Conf{
		hasher:            hasher,
		segmentSize:       segmentSize,
		segmentCount:      segmentCount,
		capacity:          capacity,
		maxSize:           count * segmentSize,
		depth:             depth,
		zerohashes:        zerohashes,
		parallelThreshold: DefaultParallelThreshold,
		workers:           DefaultWorkers,
	}
}

// WithParallelThreshold sets the data length from which hashing goes
// concurrent. Non-positive values disable the concurrent path.
func (c *Conf) WithParallelThreshold(n int) *Conf {
	if n <= 0 {
		n = c.maxSize + 1
	}
	c.parallelThreshold = n
	return c
}

// WithWorkers sets the number of goroutines used on the concurrent path.
func (c *Conf) WithWorkers(n int) *Conf {
	if n < 1 {
		n = 1
	}
	c.workers = n
	return c
}

// Depth returns the number of levels of the tree, which is also the length
// of every inclusion proof.
func (c *Conf) Depth() int {
	return c.depth
}

// ZeroRoot returns the root of the tree over an all zero buffer.
func (c *Conf) ZeroRoot() []byte {
	return c.zerohashes[c.depth]
}

// NewPool creates a tree pool with hasher, segment size, segment count and capacity
// it reuses free trees or creates a new one if capacity is not reached.
func NewPool(c *Conf) *Pool {
	p := &Pool{
		Conf: c,
		c:    make(chan *tree, c.capacity),
	}
	for i := 0; i < c.capacity; i++ {
		p.c <- newTree(p.segmentSize, p.maxSize, p.depth, p.workers, p.hasher)
	}
	return p
}

// Get returns a BMT hasher possibly reusing a tree from the pool
func (p *Pool) Get() *Hasher {
	t := <-p.c
	return &Hasher{
		Conf: p.Conf,
		span: make([]byte, SpanSize),
		bmt:  t,
	}
}

// Put is called after using a bmt hasher to return the tree to a pool for reuse
func (p *Pool) Put(h *Hasher) {
	h.Reset()
	p.c <- h.bmt
}

// tree is a reusable control structure representing a BMT
// organised in flat levels.
//
// Hasher uses a Pool to obtain a tree for each chunk hash
// the tree is 'locked' while not in the pool.
type tree struct {
	buffer  []byte      // data written so far, zero beyond the written length
	levels  [][]byte    // levels[0] holds section hashes, the last level holds the root
	hashers []hash.Hash // one base hasher per worker
}

// newTree allocates the buffer and the hashes of every level of a BMT
//
// segmentSize is stipulated to be the size of the hash.
func newTree(segmentSize, maxsize, depth, workers int, hashfunc func() hash.Hash) *tree {
	levels := make([][]byte, depth)
	count := maxsize / (2 * segmentSize)
	for level := 0; level < depth; level++ {
		levels[level] = make([]byte, count*segmentSize)
		count /= 2
	}
	hashers := make([]hash.Hash, workers)
	for i := range hashers {
		hashers[i] = hashfunc()
	}
	return &tree{
		buffer:  make([]byte, maxsize),
		levels:  levels,
		hashers: hashers,
	}
}

// sizeToParams calculates the depth (number of levels) and segment count in the BMT tree.
func sizeToParams(n int) (c, d int) {
	c = 2
	for ; c < n; c *= 2 {
		d++
	}
	return c, d + 1
}
