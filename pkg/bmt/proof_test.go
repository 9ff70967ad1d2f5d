// Copyright 2022 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bmt_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/ethersphere/nectar/pkg/bmt"
	"github.com/ethersphere/nectar/pkg/swarm"
	"github.com/google/go-cmp/cmp"
)

func TestProofCorrectness(t *testing.T) {
	t.Parallel()

	testData := []byte("hello world")
	testDataPadded := make([]byte, swarm.ChunkSize)
	copy(testDataPadded, testData)

	verifySegments := func(t *testing.T, exp []string, found [][]byte) {
		t.Helper()

		var expSegments [][]byte
		for _, v := range exp {
			expSegments = append(expSegments, mustDecode(t, v))
		}

		if len(expSegments) != len(found) {
			t.Fatal("incorrect no of proof segments", len(expSegments), len(found))
		}

		for idx := range expSegments {
			if !bytes.Equal(expSegments[idx], found[idx]) {
				t.Fatal("incorrect segment in proof")
			}
		}
	}

	pool := bmt.NewPool(bmt.NewConf(swarm.NewHasher, 128, 128))
	hh := pool.Get()
	t.Cleanup(func() {
		pool.Put(hh)
	})
	hh.SetHeaderInt64(4096)

	_, err := hh.Write(testDataPadded)
	if err != nil {
		t.Fatal(err)
	}
	rh, err := hh.Hash(nil)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("proof for left most", func(t *testing.T) {
		proof, err := bmt.Prover{Hasher: hh}.Proof(0)
		if err != nil {
			t.Fatal(err)
		}

		expSegmentStrings := []string{
			"0000000000000000000000000000000000000000000000000000000000000000",
			"ad3228b676f7d3cd4284a5443f17f1962b36e491b30a40b2405849e597ba5fb5",
			"b4c11951957c6f8f642c4af61cd6b24640fec6dc7fc607ee8206a99e92410d30",
			"21ddb9a356815c3fac1026b6dec5df3124afbadb485c9ba5a3e3398a04b7ba85",
			"e58769b32a1beaf1ea27375a44095a0d1fb664ce2dd358e7fcbfb78c26a19344",
			"0eb01ebfc9ed27500cd4dfc979272d1f0913cc9f66540d7e8005811109e1cf2d",
			"887c22bd8750d34016ac3c66b5ff102dacdd73f6b014e710b51e8022af9a1968",
		}

		verifySegments(t, expSegmentStrings, proof.ProofSegments)

		if !bytes.Equal(proof.ProveSegment, testDataPadded[:hh.Size()]) {
			t.Fatal("section incorrect")
		}

		if !bytes.Equal(proof.Span, bmt.LengthToSpan(4096)) {
			t.Fatal("incorrect span")
		}
	})

	t.Run("proof for right most", func(t *testing.T) {
		proof, err := bmt.Prover{Hasher: hh}.Proof(127)
		if err != nil {
			t.Fatal(err)
		}

		if got := fmt.Sprintf("%x", proof.ProofSegments[6]); got != "745bae095b6ff5416b4a351a167f731db6d6f5924f30cd88d48e74261795d27b" {
			t.Fatalf("got last sister %s", got)
		}

		if !bytes.Equal(proof.ProveSegment, testDataPadded[127*hh.Size():]) {
			t.Fatal("section incorrect")
		}
	})

	t.Run("proof for every segment verifies", func(t *testing.T) {
		for i := 0; i < swarm.BmtBranches; i++ {
			proof, err := bmt.Prover{Hasher: hh}.Proof(i)
			if err != nil {
				t.Fatal(err)
			}
			ok, err := bmt.VerifyProof(proof, rh)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Fatalf("proof of segment %d does not verify", i)
			}
		}
	})

	t.Run("proof invalid index", func(t *testing.T) {
		for _, i := range []int{-1, 128} {
			if _, err := (bmt.Prover{Hasher: hh}).Proof(i); !errors.Is(err, bmt.ErrIndexOutOfRange) {
				t.Fatalf("index %d: got error %v, want %v", i, err, bmt.ErrIndexOutOfRange)
			}
		}
	})
}

func TestGenerateProofBounds(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		length int
		index  int
		ok     bool
	}{
		{0, 0, true},
		{0, 1, false},
		{1, 0, true},
		{32, 0, true},
		{32, 1, false},
		{33, 1, true},
		{4096, 127, true},
		{4096, 128, false},
		{4096, -1, false},
	} {
		data := randomBytes(t, seed)[:tc.length]
		_, err := bmt.GenerateProof(data, tc.index)
		if tc.ok && err != nil {
			t.Fatalf("length %d index %d: %v", tc.length, tc.index, err)
		}
		if !tc.ok && !errors.Is(err, swarm.ErrIndexOutOfRange) {
			t.Fatalf("length %d index %d: got error %v, want %v", tc.length, tc.index, err, swarm.ErrIndexOutOfRange)
		}
	}
}

func TestProofSoundness(t *testing.T) {
	t.Parallel()

	data := randomBytes(t, seed)
	for _, length := range []int{1, 31, 32, 33, 64, 100, 1000, 2047, 2048, 4095, 4096} {
		h := bmt.NewHasher()
		h.SetSpan(uint64(length))
		root, err := h.ChunkAddress(data[:length])
		if err != nil {
			t.Fatal(err)
		}
		segments := (length + 31) / 32
		for i := 0; i < segments; i++ {
			proof, err := bmt.GenerateProof(data[:length], i)
			if err != nil {
				t.Fatal(err)
			}
			ok, err := bmt.VerifyProof(proof, root.Bytes())
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Fatalf("seed %d length %d segment %d: proof does not verify", seed, length, i)
			}
		}
	}
}

func TestProofWithPrefix(t *testing.T) {
	t.Parallel()

	data := randomBytes(t, seed)[:500]
	h := bmt.NewHasher()
	h.SetPrefix([]byte("swarm"))
	h.SetSpan(500)
	root, err := h.ChunkAddress(data)
	if err != nil {
		t.Fatal(err)
	}

	proof, err := bmt.Prover{Hasher: h}.Proof(3)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(proof.Prefix, []byte("swarm")) {
		t.Fatalf("got prefix %q", proof.Prefix)
	}
	ok, err := bmt.Prover{Hasher: h}.Verify(proof, root.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("prefixed proof does not verify")
	}

	proof.Prefix = nil
	ok, err = bmt.VerifyProof(proof, root.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("proof without prefix verifies against prefixed hash")
	}
}

// tests that any single bit flip in a proof is detected
func TestProofTamper(t *testing.T) {
	t.Parallel()

	data := randomBytes(t, seed)
	h := bmt.NewHasher()
	h.SetSpan(swarm.ChunkSize)
	root, err := h.ChunkAddress(data)
	if err != nil {
		t.Fatal(err)
	}

	for _, index := range []int{0, 1, 42, 127} {
		proof, err := bmt.GenerateProof(data, index)
		if err != nil {
			t.Fatal(err)
		}

		check := func(t *testing.T, what string, p bmt.Proof) {
			t.Helper()
			ok, err := bmt.VerifyProof(p, root.Bytes())
			if err == nil && ok {
				t.Fatalf("seed %d index %d: flipped %s verifies", seed, index, what)
			}
		}

		for bit := 0; bit < 8*swarm.SectionSize; bit++ {
			p := copyProof(proof)
			p.ProveSegment[bit/8] ^= 1 << (bit % 8)
			check(t, "segment bit", p)
		}
		for s := range proof.ProofSegments {
			for bit := 0; bit < 8*swarm.SectionSize; bit++ {
				p := copyProof(proof)
				p.ProofSegments[s][bit/8] ^= 1 << (bit % 8)
				check(t, fmt.Sprintf("sister %d bit", s), p)
			}
		}
		for bit := 0; bit < 8*bmt.SpanSize; bit++ {
			p := copyProof(proof)
			p.Span[bit/8] ^= 1 << (bit % 8)
			check(t, "span bit", p)
		}
		for bit := 0; bit < 8; bit++ {
			p := copyProof(proof)
			p.Index ^= 1 << bit
			check(t, "index bit", p)
		}

		if diff := cmp.Diff(proof, copyProof(proof)); diff != "" {
			t.Fatalf("proof changed while tampering copies (-want +got):\n%s", diff)
		}
	}
}

func TestProofScenario(t *testing.T) {
	t.Parallel()

	data := []byte{0x01}
	proof, err := bmt.GenerateProof(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	root := mustDecode(t, "b53eefd07d02536e66551f7b3162e80fc41864bd989da51ac88e71807983fac2")
	ok, err := bmt.VerifyProof(proof, root)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("proof does not verify against its root")
	}

	other := mustDecode(t, "f3447f98e2c5676b763dde39c49ba6c4961fb77ca223e8f792d5f0b1ed8e2a93")
	ok, err = bmt.VerifyProof(proof, other)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("proof verifies against the root of other data")
	}
}

func TestProofMalformed(t *testing.T) {
	t.Parallel()

	data := randomBytes(t, seed)
	proof, err := bmt.GenerateProof(data, 5)
	if err != nil {
		t.Fatal(err)
	}
	root := make([]byte, swarm.HashSize)

	for _, tc := range []struct {
		name   string
		mutate func(p *bmt.Proof)
	}{
		{"short audit path", func(p *bmt.Proof) { p.ProofSegments = p.ProofSegments[:6] }},
		{"long audit path", func(p *bmt.Proof) { p.ProofSegments = append(p.ProofSegments, make([]byte, 32)) }},
		{"no audit path", func(p *bmt.Proof) { p.ProofSegments = nil }},
		{"short sister", func(p *bmt.Proof) { p.ProofSegments[2] = p.ProofSegments[2][:31] }},
		{"short segment", func(p *bmt.Proof) { p.ProveSegment = p.ProveSegment[:1] }},
		{"short span", func(p *bmt.Proof) { p.Span = p.Span[:7] }},
		{"negative index", func(p *bmt.Proof) { p.Index = -1 }},
		{"index past tree", func(p *bmt.Proof) { p.Index = 128 }},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := copyProof(proof)
			tc.mutate(&p)
			ok, err := bmt.VerifyProof(p, root)
			if ok {
				t.Fatal("malformed proof verifies")
			}
			if !errors.Is(err, swarm.ErrInvalidChunk) && !errors.Is(err, swarm.ErrIndexOutOfRange) {
				t.Fatalf("got error %v", err)
			}
		})
	}
}

func copyProof(p bmt.Proof) bmt.Proof {
	c := bmt.Proof{
		ProveSegment: append([]byte(nil), p.ProveSegment...),
		Span:         append([]byte(nil), p.Span...),
		Index:        p.Index,
	}
	if p.Prefix != nil {
		c.Prefix = append([]byte(nil), p.Prefix...)
	}
	for _, s := range p.ProofSegments {
		c.ProofSegments = append(c.ProofSegments, append([]byte(nil), s...))
	}
	return c
}
