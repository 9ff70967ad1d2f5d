// Copyright 2021 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cac implements content addressed chunks, whose address is the
// BMT hash of their span and payload.
package cac

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/ethersphere/nectar/pkg/bmtpool"
	"github.com/ethersphere/nectar/pkg/swarm"
)

var (
	ErrChunkSpanShort = fmt.Errorf("chunk span must have exactly length of %d: %w", swarm.SpanSize, swarm.ErrInvalidChunk)
	ErrChunkDataLarge = fmt.Errorf("chunk data exceeds maximum allowed length: %w", swarm.ErrSizeExceeded)
	ErrSpanMismatch   = fmt.Errorf("chunk span does not match data length: %w", swarm.ErrInvalidChunk)
)

var _ swarm.Chunk = (*Chunk)(nil)

// Chunk is a content addressed chunk. It is not changed after construction
// and the slices returned by its methods must not be modified.
type Chunk struct {
	address swarm.Address
	span    []byte
	payload []byte
	data    []byte // span | payload
}

// New creates a new content address chunk by initializing a span and appending the data to it.
func New(data []byte) (*Chunk, error) {
	dataLength := len(data)

	if err := validateDataLength(dataLength); err != nil {
		return nil, err
	}

	return newWithSpan(data, swarm.LengthToSpan(uint64(dataLength)))
}

// NewWithDataSpan creates a new chunk assuming that the span precedes the actual data.
// A span up to swarm.ChunkSize must equal the data length, larger spans
// belong to intermediate chunks of longer content and are accepted.
func NewWithDataSpan(data []byte) (*Chunk, error) {
	dataLength := len(data)

	if err := validateDataLength(dataLength - swarm.SpanSize); err != nil {
		return nil, err
	}
	if err := ValidateSpan(data[:swarm.SpanSize], dataLength-swarm.SpanSize); err != nil {
		return nil, err
	}

	return newWithSpan(data[swarm.SpanSize:], data[:swarm.SpanSize])
}

// NewWithAddress creates a chunk from span prefixed data and an address
// that is trusted without hashing. VerifyIntegrity checks it later.
func NewWithAddress(address swarm.Address, data []byte) (*Chunk, error) {
	dataLength := len(data)

	if err := validateDataLength(dataLength - swarm.SpanSize); err != nil {
		return nil, err
	}
	if err := ValidateSpan(data[:swarm.SpanSize], dataLength-swarm.SpanSize); err != nil {
		return nil, err
	}

	return assemble(address, data[swarm.SpanSize:], data[:swarm.SpanSize]), nil
}

// ValidateSpan checks the span against the length of the data it covers.
func ValidateSpan(span []byte, dataLength int) error {
	if len(span) != swarm.SpanSize {
		return fmt.Errorf("invalid CAC span length %d: %w", len(span), ErrChunkSpanShort)
	}
	if s := swarm.SpanFromBytes(span); s <= swarm.ChunkSize && s != uint64(dataLength) {
		return fmt.Errorf("span %d, data length %d: %w", s, dataLength, ErrSpanMismatch)
	}
	return nil
}

// validateDataLength validates if data length (without span) is correct.
func validateDataLength(dataLength int) error {
	if dataLength < 0 { // dataLength could be negative when span size is subtracted
		spanLength := swarm.SpanSize + dataLength
		return fmt.Errorf("invalid CAC span length %d: %w", spanLength, ErrChunkSpanShort)
	}
	if dataLength > swarm.ChunkSize {
		return fmt.Errorf("invalid CAC data length %d: %w", dataLength, ErrChunkDataLarge)
	}
	return nil
}

// newWithSpan creates a new chunk prepending the given span to the data.
func newWithSpan(data, span []byte) (*Chunk, error) {
	hash, err := DoHash(data, span)
	if err != nil {
		return nil, err
	}

	return assemble(swarm.NewAddress(hash), data, span), nil
}

func assemble(address swarm.Address, data, span []byte) *Chunk {
	cacData := make([]byte, len(data)+len(span))
	copy(cacData, span)
	copy(cacData[swarm.SpanSize:], data)

	return &Chunk{
		address: address,
		span:    cacData[:swarm.SpanSize],
		payload: cacData[swarm.SpanSize:],
		data:    cacData,
	}
}

// Address returns the BMT hash of the chunk.
func (c *Chunk) Address() swarm.Address {
	return c.address
}

// AddressHex returns the hex encoded address.
func (c *Chunk) AddressHex() string {
	return c.address.String()
}

// Span returns the span of the chunk.
func (c *Chunk) Span() uint64 {
	return swarm.SpanFromBytes(c.span)
}

// SpanBytes returns the little endian encoded span.
func (c *Chunk) SpanBytes() []byte {
	return c.span
}

// Payload returns the data covered by the span.
func (c *Chunk) Payload() []byte {
	return c.payload
}

// Data returns the wire format of the chunk, span | payload.
func (c *Chunk) Data() []byte {
	return c.data
}

// DataHex returns the hex encoded wire format.
func (c *Chunk) DataHex() string {
	return hex.EncodeToString(c.data)
}

// Size returns the length of the wire format.
func (c *Chunk) Size() int {
	return len(c.data)
}

// Serialize returns the wire format, optionally preceded by the chunk type
// and version bytes.
func (c *Chunk) Serialize(withTypePrefix bool) []byte {
	if !withTypePrefix {
		b := make([]byte, len(c.data))
		copy(b, c.data)
		return b
	}
	b := make([]byte, 0, swarm.TypePrefixSize+len(c.data))
	b = append(b, byte(swarm.ContentChunk), swarm.ChunkVersion)
	return append(b, c.data...)
}

// VerifyIntegrity recomputes the address from span and payload.
func (c *Chunk) VerifyIntegrity() error {
	hash, err := DoHash(c.payload, c.span)
	if err != nil {
		return err
	}
	if !bytes.Equal(hash, c.address.Bytes()) {
		return fmt.Errorf("content chunk %s: %w", c.address, swarm.ErrIntegrity)
	}
	return nil
}

// Equal reports whether both chunks have the same address and data.
func (c *Chunk) Equal(cp swarm.Chunk) bool {
	return c.Address().Equal(cp.Address()) && bytes.Equal(c.Data(), cp.Data())
}

func (c *Chunk) String() string {
	return fmt.Sprintf("content chunk %s (%d bytes)", c.address, len(c.payload))
}

// Valid checks whether the given chunk is a valid content-addressed chunk.
func Valid(c swarm.Chunk) bool {
	data := c.Data()

	if validateDataLength(len(data)-swarm.SpanSize) != nil {
		return false
	}

	hash, _ := DoHash(data[swarm.SpanSize:], data[:swarm.SpanSize])

	return bytes.Equal(hash, c.Address().Bytes())
}

// DoHash returns the BMT hash of data with the given span.
func DoHash(data, span []byte) ([]byte, error) {
	hasher := bmtpool.Get()
	defer bmtpool.Put(hasher)

	hasher.SetHeader(span)
	if _, err := hasher.Write(data); err != nil {
		return nil, err
	}

	return hasher.Hash(nil)
}
