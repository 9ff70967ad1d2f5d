// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chunk provides the envelope shared by all chunk kinds.
//
// An Envelope is either a content addressed chunk or a single-owner chunk.
// Its bare form is header | span | payload, where the header is empty for
// content chunks and id | signature for single-owner chunks. The prefixed
// form additionally starts with the chunk type and version bytes.
package chunk

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/ethersphere/nectar/pkg/cac"
	"github.com/ethersphere/nectar/pkg/soc"
	"github.com/ethersphere/nectar/pkg/swarm"
)

var (
	ErrDataShort          = fmt.Errorf("chunk data shorter than span: %w", swarm.ErrInvalidChunk)
	ErrUnknownType        = fmt.Errorf("unknown chunk type: %w", swarm.ErrInvalidChunk)
	ErrUnsupportedVersion = fmt.Errorf("unsupported chunk version: %w", swarm.ErrInvalidChunk)
	ErrAddressMismatch    = fmt.Errorf("chunk address mismatch: %w", swarm.ErrIntegrity)
)

var _ swarm.Chunk = (*Envelope)(nil)

// Envelope is a deserialized chunk of any known type. It is not changed
// after construction and the slices returned by its methods must not be
// modified.
type Envelope struct {
	address swarm.Address
	typ     swarm.ChunkType
	version uint8
	header  []byte
	span    []byte
	payload []byte
	data    []byte // header | span | payload

	soc *soc.SOC // set when the owner was recovered
}

// FromContent wraps a content addressed chunk.
func FromContent(ch *cac.Chunk) *Envelope {
	data := ch.Data()
	return &Envelope{
		address: ch.Address(),
		typ:     swarm.ContentChunk,
		version: swarm.ChunkVersion,
		header:  data[:0],
		span:    ch.SpanBytes(),
		payload: ch.Payload(),
		data:    data,
	}
}

// FromSingleOwner wraps a single-owner chunk.
func FromSingleOwner(s *soc.SOC) *Envelope {
	data := s.Data()
	return &Envelope{
		address: s.Address(),
		typ:     swarm.SingleOwnerChunk,
		version: swarm.ChunkVersion,
		header:  data[:soc.HeaderSize],
		span:    data[soc.HeaderSize : soc.HeaderSize+swarm.SpanSize],
		payload: data[soc.HeaderSize+swarm.SpanSize:],
		data:    data,
		soc:     s,
	}
}

// Deserialize parses a chunk and derives its address. Without a type prefix
// the data is in the content chunk wire format. The owner of a single-owner
// chunk is recovered from its signature, so a malformed signature is an
// authentication error.
func Deserialize(data []byte, hasTypePrefix bool) (*Envelope, error) {
	typ, body, err := splitPrefix(data, hasTypePrefix)
	if err != nil {
		return nil, err
	}

	switch typ {
	case swarm.ContentChunk:
		if len(body) < swarm.SpanSize {
			return nil, fmt.Errorf("%w: %d bytes", ErrDataShort, len(body))
		}
		ch, err := cac.NewWithDataSpan(body)
		if err != nil {
			return nil, err
		}
		return FromContent(ch), nil
	default:
		s, err := soc.FromBytes(body)
		if err != nil {
			return nil, err
		}
		return FromSingleOwner(s), nil
	}
}

// DeserializeWithAddress parses a chunk whose address is already known.
// Only structural checks are made, see VerifyIntegrity.
func DeserializeWithAddress(address swarm.Address, data []byte, hasTypePrefix bool) (*Envelope, error) {
	typ, body, err := splitPrefix(data, hasTypePrefix)
	if err != nil {
		return nil, err
	}

	headerSize := 0
	if typ == swarm.SingleOwnerChunk {
		headerSize = soc.HeaderSize
	}
	if len(body) < headerSize+swarm.SpanSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrDataShort, len(body))
	}
	if _, err := cac.NewWithAddress(swarm.ZeroAddress, body[headerSize:]); err != nil {
		return nil, err
	}

	b := make([]byte, len(body))
	copy(b, body)
	return &Envelope{
		address: address,
		typ:     typ,
		version: swarm.ChunkVersion,
		header:  b[:headerSize],
		span:    b[headerSize : headerSize+swarm.SpanSize],
		payload: b[headerSize+swarm.SpanSize:],
		data:    b,
	}, nil
}

// splitPrefix returns the chunk type and the bare chunk data.
func splitPrefix(data []byte, hasTypePrefix bool) (swarm.ChunkType, []byte, error) {
	if !hasTypePrefix {
		return swarm.ContentChunk, data, nil
	}
	if len(data) < swarm.TypePrefixSize {
		return swarm.UnknownChunk, nil, fmt.Errorf("%w: %d bytes", ErrDataShort, len(data))
	}
	typ := swarm.ChunkType(data[0])
	if typ != swarm.ContentChunk && typ != swarm.SingleOwnerChunk {
		return swarm.UnknownChunk, nil, fmt.Errorf("%w: %d", ErrUnknownType, data[0])
	}
	if data[1] != swarm.ChunkVersion {
		return swarm.UnknownChunk, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data[1])
	}
	return typ, data[swarm.TypePrefixSize:], nil
}

// Address returns the chunk address.
func (e *Envelope) Address() swarm.Address {
	return e.address
}

// Type returns the chunk type.
func (e *Envelope) Type() swarm.ChunkType {
	return e.typ
}

// TypeByte returns the chunk type as written in the type prefix.
func (e *Envelope) TypeByte() uint8 {
	return uint8(e.typ)
}

// Version returns the chunk format version.
func (e *Envelope) Version() uint8 {
	return e.version
}

// Header returns the type specific fields preceding the span.
func (e *Envelope) Header() []byte {
	return e.header
}

// Span returns the decoded span.
func (e *Envelope) Span() uint64 {
	return swarm.SpanFromBytes(e.span)
}

// SpanBytes returns the little endian encoded span.
func (e *Envelope) SpanBytes() []byte {
	return e.span
}

func (e *Envelope) Payload() []byte {
	return e.payload
}

// Data returns the bare wire format, header | span | payload.
func (e *Envelope) Data() []byte {
	return e.data
}

// DataHex returns the hex encoded bare wire format.
func (e *Envelope) DataHex() string {
	return hex.EncodeToString(e.data)
}

func (e *Envelope) Size() int {
	return len(e.data)
}

// Serialize returns the wire format, optionally preceded by the chunk type
// and version bytes. It is the inverse of Deserialize given the same flag.
func (e *Envelope) Serialize(withTypePrefix bool) []byte {
	if !withTypePrefix {
		b := make([]byte, len(e.data))
		copy(b, e.data)
		return b
	}
	b := make([]byte, 0, swarm.TypePrefixSize+len(e.data))
	b = append(b, byte(e.typ), e.version)
	return append(b, e.data...)
}

// Content returns the envelope as a content addressed chunk.
func (e *Envelope) Content() (*cac.Chunk, error) {
	if e.typ != swarm.ContentChunk {
		return nil, fmt.Errorf("%s chunk is not content addressed: %w", e.typ, swarm.ErrInvalidChunk)
	}
	return cac.NewWithAddress(e.address, e.data)
}

// SingleOwner returns the envelope as a single-owner chunk, recovering the
// owner if it is not known yet.
func (e *Envelope) SingleOwner() (*soc.SOC, error) {
	if e.typ != swarm.SingleOwnerChunk {
		return nil, fmt.Errorf("%s chunk is not single owner: %w", e.typ, swarm.ErrInvalidChunk)
	}
	if e.soc != nil {
		return e.soc, nil
	}
	return soc.FromBytes(e.data)
}

// VerifyIntegrity recomputes the address from the chunk fields. For
// single-owner chunks the owner recovered from the signature is used.
func (e *Envelope) VerifyIntegrity() error {
	switch e.typ {
	case swarm.ContentChunk:
		ch, err := e.Content()
		if err != nil {
			return err
		}
		return ch.VerifyIntegrity()
	default:
		s, err := soc.FromBytes(e.data)
		if err != nil {
			return err
		}
		if !s.Address().Equal(e.address) {
			return fmt.Errorf("single owner chunk %s, recomputed %s: %w", e.address, s.Address(), swarm.ErrIntegrity)
		}
		return nil
	}
}

// Verify compares the stored address with the expected one without
// rehashing. A single-owner chunk with a recovered owner is also checked
// for dispersed replica rules.
func (e *Envelope) Verify(expected swarm.Address) error {
	if e.soc != nil {
		return e.soc.Verify(expected)
	}
	if !e.address.Equal(expected) {
		return fmt.Errorf("%w: expected %s, got %s", ErrAddressMismatch, expected, e.address)
	}
	return nil
}

// Equal reports whether both chunks have the same address and data.
func (e *Envelope) Equal(cp swarm.Chunk) bool {
	return e.Address().Equal(cp.Address()) && bytes.Equal(e.Data(), cp.Data())
}

func (e *Envelope) String() string {
	return fmt.Sprintf("%s chunk %s (%d bytes)", e.typ, e.address, len(e.payload))
}
