// Copyright 2022 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bmt

import (
	"bytes"
	"fmt"

	"github.com/ethersphere/nectar/pkg/swarm"
)

// DefaultDepth is the depth of a tree over swarm.BmtBranches segments and
// the length of its inclusion proofs.
const DefaultDepth = 7

// Prover wraps the Hasher to allow Merkle proof functionality
type Prover struct {
	*Hasher
}

// Proof represents a Merkle proof of segment
type Proof struct {
	ProveSegment  []byte   // the proven segment
	ProofSegments [][]byte // sisters from the leaf up to the root
	Span          []byte   // span of the chunk
	Prefix        []byte   // optional prefix of the final compression
	Index         int      // index of the proven segment
}

// Proof returns the inclusion proof of the i-th data segment of the data
// written to the hasher. The index must address a segment of the written
// data, the first segment is always provable.
func (p Prover) Proof(i int) (Proof, error) {
	segsize := p.segmentSize
	n := p.length()
	segments := (n + segsize - 1) / segsize
	if segments == 0 {
		segments = 1
	}
	if i < 0 || i >= p.maxSize/segsize || i >= segments {
		return Proof{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, segments)
	}
	if p.size > p.maxSize {
		return Proof{}, fmt.Errorf("%w: %d bytes", ErrOverflow, p.size)
	}
	if _, err := p.root(); err != nil {
		return Proof{}, err
	}

	t := p.bmt
	sisters := make([][]byte, 0, p.depth)
	sisters = append(sisters, clone(t.buffer[(i^1)*segsize:((i^1)+1)*segsize]))
	for level := 0; level < p.depth-1; level++ {
		j := (i >> (level + 1)) ^ 1
		sisters = append(sisters, clone(t.levels[level][j*segsize:(j+1)*segsize]))
	}

	return Proof{
		ProveSegment:  clone(t.buffer[i*segsize : (i+1)*segsize]),
		ProofSegments: sisters,
		Span:          clone(p.span),
		Prefix:        clone(p.prefix),
		Index:         i,
	}, nil
}

// Verify checks the proof against the BMT hash of a chunk hashed by trees
// of the prover's configuration.
func (p Prover) Verify(proof Proof, root []byte) (bool, error) {
	if len(proof.ProofSegments) != p.depth {
		return false, fmt.Errorf("%w: %d sisters, want %d", ErrInvalidProof, len(proof.ProofSegments), p.depth)
	}
	return verify(proof, root)
}

// GenerateProof returns the proof of the i-th segment of data hashed with
// span len(data).
func GenerateProof(data []byte, i int) (Proof, error) {
	h := NewHasher()
	h.SetSpan(uint64(len(data)))
	if _, err := h.Write(data); err != nil {
		return Proof{}, err
	}
	return Prover{h}.Proof(i)
}

// VerifyProof reports whether the proof leads to the BMT hash root of a
// chunk of swarm.ChunkSize capacity. Malformed proofs give an error.
func VerifyProof(proof Proof, root []byte) (bool, error) {
	if len(proof.ProofSegments) != DefaultDepth {
		return false, fmt.Errorf("%w: %d sisters, want %d", ErrInvalidProof, len(proof.ProofSegments), DefaultDepth)
	}
	return verify(proof, root)
}

func verify(proof Proof, root []byte) (bool, error) {
	got, err := RootFromProof(proof)
	if err != nil {
		return false, err
	}
	return bytes.Equal(got, root), nil
}

// RootFromProof returns the BMT hash the proof leads to. The tree depth is
// taken to be the number of sisters in the proof.
func RootFromProof(proof Proof) ([]byte, error) {
	depth := len(proof.ProofSegments)
	if depth == 0 || depth > 30 {
		return nil, fmt.Errorf("%w: %d sisters", ErrInvalidProof, depth)
	}
	if proof.Index < 0 || proof.Index >= 1<<depth {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, proof.Index)
	}
	if len(proof.ProveSegment) != swarm.SectionSize {
		return nil, fmt.Errorf("%w: segment of %d bytes", ErrInvalidProof, len(proof.ProveSegment))
	}
	if len(proof.Span) != SpanSize {
		return nil, fmt.Errorf("%w: span of %d bytes", ErrInvalidProof, len(proof.Span))
	}

	hasher := swarm.NewHasher()
	cur := proof.ProveSegment
	i := proof.Index
	for _, sister := range proof.ProofSegments {
		if len(sister) != swarm.SectionSize {
			return nil, fmt.Errorf("%w: sister of %d bytes", ErrInvalidProof, len(sister))
		}
		var err error
		if i%2 == 0 {
			cur, err = doHash(hasher, cur, sister)
		} else {
			cur, err = doHash(hasher, sister, cur)
		}
		if err != nil {
			return nil, err
		}
		i /= 2
	}
	return doHash(hasher, proof.Prefix, proof.Span, cur)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
