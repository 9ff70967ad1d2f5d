// Copyright 2023 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soc

import (
	"bytes"
	"encoding/hex"

	"github.com/ethersphere/nectar/pkg/cac"
	"github.com/ethersphere/nectar/pkg/crypto"
)

var (
	// ReplicaOwner is the owner of dispersed replicas, the ethereum address
	// of the well known private key 0x01 followed by 31 zero bytes.
	ReplicaOwner, _ = hex.DecodeString("dc5b20847f43d67928f49cd4f85d696b5a7617b5")

	replicaKey, _ = crypto.DecodeSecp256k1PrivateKey(append([]byte{1}, make([]byte, 31)...))
	replicaSigner = crypto.NewDefaultSigner(replicaKey)
)

// ReplicaID returns the id of the replica of the content address mined with b.
// The first byte of the address is replaced by b.
func ReplicaID(b byte, ch *cac.Chunk) ID {
	id := ch.Address().Bytes()
	id[0] = b
	return id
}

// NewDispersedReplica creates a replica of the content addressed chunk signed
// with the replica key. Different values of b disperse the replica address.
func NewDispersedReplica(b byte, ch *cac.Chunk) (*SOC, error) {
	return Sign(ReplicaID(b, ch), ch, replicaSigner)
}

// IsValidReplica reports whether the id matches the wrapped chunk address
// everywhere except in the mined first byte.
func (s *SOC) IsValidReplica() bool {
	return bytes.Equal(s.id[1:], s.chunk.Address().Bytes()[1:])
}
