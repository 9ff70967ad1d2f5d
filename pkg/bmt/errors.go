// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bmt

import (
	"fmt"

	"github.com/ethersphere/nectar/pkg/swarm"
)

var (
	ErrOverflow        = fmt.Errorf("BMT hash capacity exceeded: %w", swarm.ErrSizeExceeded)
	ErrIndexOutOfRange = fmt.Errorf("segment index: %w", swarm.ErrIndexOutOfRange)
	ErrInvalidProof    = fmt.Errorf("malformed proof: %w", swarm.ErrInvalidChunk)
)
