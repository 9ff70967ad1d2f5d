// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bmtpool provides easy access to binary
// merkle tree hashers managed in as a resource pool.
package bmtpool

import (
	"sync"

	"github.com/ethersphere/nectar/pkg/bmt"
	"github.com/ethersphere/nectar/pkg/config"
	"github.com/ethersphere/nectar/pkg/swarm"
)

var (
	mu       sync.RWMutex
	instance *bmt.Pool
)

func init() {
	instance = newPool(config.Default())
}

func newPool(o config.Options) *bmt.Pool {
	conf := bmt.NewConf(swarm.NewHasher, swarm.BmtBranches, o.HasherPoolCapacity).
		WithParallelThreshold(o.ParallelThreshold).
		WithWorkers(o.HashWorkers)
	return bmt.NewPool(conf)
}

// Configure replaces the pool with one built from o. Hashers of the
// previous pool that are put back afterwards are dropped.
func Configure(o config.Options) error {
	if err := o.Validate(); err != nil {
		return err
	}
	p := newPool(o)
	mu.Lock()
	instance = p
	mu.Unlock()
	return nil
}

// Get a bmt Hasher instance.
// Instances are reset before being returned to the caller.
func Get() *bmt.Hasher {
	mu.RLock()
	p := instance
	mu.RUnlock()
	return p.Get()
}

// Put a bmt Hasher back into the pool
func Put(h *bmt.Hasher) {
	mu.RLock()
	p := instance
	mu.RUnlock()
	if h.Conf != p.Conf {
		return
	}
	p.Put(h)
}
