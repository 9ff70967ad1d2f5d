// Copyright 2021 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package testing provides single-owner chunk fixtures for tests.
package testing

import (
	"math/rand"
	stdtesting "testing"

	"github.com/ethersphere/nectar/pkg/cac"
	"github.com/ethersphere/nectar/pkg/crypto"
	"github.com/ethersphere/nectar/pkg/soc"
	"github.com/ethersphere/nectar/pkg/swarm"
)

// GenerateMockSOC generates a valid soc from given data, signed with a
// fresh key under a random id. If data is nil it generates random data.
func GenerateMockSOC(tb stdtesting.TB, data []byte) *soc.SOC {
	tb.Helper()

	privKey, err := crypto.GenerateSecp256k1Key()
	if err != nil {
		tb.Fatal(err)
	}
	signer := crypto.NewDefaultSigner(privKey)

	if data == nil {
		data = make([]byte, swarm.ChunkSize)
		_, _ = rand.Read(data)
	}
	ch, err := cac.New(data)
	if err != nil {
		tb.Fatal(err)
	}

	id, err := soc.RandomID()
	if err != nil {
		tb.Fatal(err)
	}
	s, err := soc.Sign(id, ch, signer)
	if err != nil {
		tb.Fatal(err)
	}
	return s
}
