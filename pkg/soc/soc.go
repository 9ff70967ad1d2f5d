// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package soc provides the single-owner chunk implementation.
//
// A single-owner chunk wraps a content addressed chunk under an arbitrary
// 32 byte identifier chosen by its owner. Its address is keccak256(id | owner)
// and the owner is recovered from a signature over keccak256(id | cac address).
//
// Wire format:
//
//	id (32) | signature (65) | span (8) | payload (<= 4096)
package soc

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/ethersphere/nectar/pkg/cac"
	"github.com/ethersphere/nectar/pkg/crypto"
	"github.com/ethersphere/nectar/pkg/swarm"
)

const (
	IdSize        = 32
	SignatureSize = crypto.SignatureSize
	// HeaderSize is the length of the fields preceding the wrapped chunk.
	HeaderSize   = IdSize + SignatureSize
	minChunkSize = HeaderSize + swarm.SpanSize
)

var (
	ErrInvalidID        = fmt.Errorf("soc: invalid id length: %w", swarm.ErrInvalidChunk)
	ErrInvalidOwner     = fmt.Errorf("soc: invalid owner length: %w", swarm.ErrInvalidChunk)
	ErrInvalidSignature = fmt.Errorf("soc: invalid signature length: %w", swarm.ErrInvalidChunk)
	ErrWrongChunkSize   = fmt.Errorf("soc: chunk length is less than minimum: %w", swarm.ErrInvalidChunk)
	ErrOwnerMismatch    = fmt.Errorf("soc: signature does not recover to owner: %w", swarm.ErrAuthentication)
	ErrAddressMismatch  = fmt.Errorf("soc: address mismatch: %w", swarm.ErrIntegrity)
	ErrInvalidReplica   = fmt.Errorf("soc: invalid dispersed replica: %w", swarm.ErrInvalidChunk)
)

// ID is a soc identifier
type ID []byte

// Owner is the address in bytes of soc owner.
type Owner []byte

// NewOwner ensures a valid length address of soc owner.
func NewOwner(address []byte) (Owner, error) {
	if len(address) != crypto.AddressSize {
		return nil, fmt.Errorf("%w: %x", ErrInvalidOwner, address)
	}
	return address, nil
}

var _ swarm.Chunk = (*SOC)(nil)

// SOC wraps a single-owner chunk. It is not changed after construction.
type SOC struct {
	id        ID
	owner     Owner
	signature []byte
	chunk     *cac.Chunk // wrapped chunk.
	address   swarm.Address
	data      []byte // id | signature | span | payload
}

// New creates a single-owner chunk of data under id, signed with the raw
// secp256k1 private key.
func New(id ID, data, privateKey []byte) (*SOC, error) {
	key, err := crypto.DecodeSecp256k1PrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	ch, err := cac.New(data)
	if err != nil {
		return nil, err
	}
	return Sign(id, ch, crypto.NewDefaultSigner(key))
}

// Sign wraps the content addressed chunk under id and signs it using the
// signer. The owner is the ethereum address of the signer.
func Sign(id ID, ch *cac.Chunk, signer crypto.Signer) (*SOC, error) {
	if len(id) != IdSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidID, len(id))
	}

	// create owner
	publicKey, err := signer.PublicKey()
	if err != nil {
		return nil, err
	}
	ownerAddressBytes, err := crypto.NewEthereumAddress(*publicKey)
	if err != nil {
		return nil, err
	}

	// generate the data to sign
	toSignBytes, err := hash(id, ch.Address().Bytes())
	if err != nil {
		return nil, err
	}

	// sign the chunk
	signature, err := signer.Sign(toSignBytes)
	if err != nil {
		return nil, err
	}

	return NewSigned(id, ch, ownerAddressBytes, signature)
}

// NewSigned creates a single-owner chunk based on already signed data.
// The signature is not checked, see VerifySignature.
func NewSigned(id ID, ch *cac.Chunk, owner, sig []byte) (*SOC, error) {
	if len(id) != IdSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidID, len(id))
	}
	if len(sig) != SignatureSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSignature, len(sig))
	}
	o, err := NewOwner(owner)
	if err != nil {
		return nil, err
	}
	address, err := CreateAddress(id, o)
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+ch.Size()))
	buf.Write(id)
	buf.Write(sig)
	buf.Write(ch.Data())
	data := buf.Bytes()

	return &SOC{
		id:        data[:IdSize],
		owner:     append(Owner(nil), o...),
		signature: data[IdSize:HeaderSize],
		chunk:     ch,
		address:   address,
		data:      data,
	}, nil
}

// FromBytes recreates a single-owner chunk from its wire format. The owner
// is recovered from the signature, so a malformed signature fails here.
func FromBytes(chunkData []byte) (*SOC, error) {
	if len(chunkData) < minChunkSize {
		return nil, fmt.Errorf("%w: %d", ErrWrongChunkSize, len(chunkData))
	}

	cursor := 0
	id := chunkData[cursor:IdSize]
	cursor += IdSize

	signature := chunkData[cursor : cursor+SignatureSize]
	cursor += SignatureSize

	ch, err := cac.NewWithDataSpan(chunkData[cursor:])
	if err != nil {
		return nil, err
	}

	toSignBytes, err := hash(id, ch.Address().Bytes())
	if err != nil {
		return nil, err
	}

	// recover owner information
	recoveredEthereumAddress, err := recoverAddress(signature, toSignBytes)
	if err != nil {
		return nil, err
	}

	return NewSigned(id, ch, recoveredEthereumAddress, signature)
}

// FromChunk recreates a single-owner chunk from swarm.Chunk data.
func FromChunk(sch swarm.Chunk) (*SOC, error) {
	return FromBytes(sch.Data())
}

// Address returns the soc chunk address.
func (s *SOC) Address() swarm.Address {
	return s.address
}

// AddressHex returns the hex encoded soc address.
func (s *SOC) AddressHex() string {
	return s.address.String()
}

// ID returns the soc id.
func (s *SOC) ID() ID {
	return s.id
}

// IDHex returns the hex encoded soc id.
func (s *SOC) IDHex() string {
	return hex.EncodeToString(s.id)
}

// Owner returns the ethereum address of the soc owner.
func (s *SOC) Owner() Owner {
	return s.owner
}

// OwnerHex returns the hex encoded owner address.
func (s *SOC) OwnerHex() string {
	return hex.EncodeToString(s.owner)
}

// Signature returns the soc signature, r | s | v.
func (s *SOC) Signature() []byte {
	return s.signature
}

// SignatureHex returns the hex encoded signature.
func (s *SOC) SignatureHex() string {
	return hex.EncodeToString(s.signature)
}

// WrappedChunk returns the chunk wrapped by the soc.
func (s *SOC) WrappedChunk() *cac.Chunk {
	return s.chunk
}

// Header returns the id and signature fields.
func (s *SOC) Header() []byte {
	return s.data[:HeaderSize]
}

// Span returns the span of the wrapped chunk.
func (s *SOC) Span() uint64 {
	return s.chunk.Span()
}

// Payload returns the payload of the wrapped chunk.
func (s *SOC) Payload() []byte {
	return s.chunk.Payload()
}

// Data returns the wire format of the soc.
func (s *SOC) Data() []byte {
	return s.data
}

// DataHex returns the hex encoded wire format.
func (s *SOC) DataHex() string {
	return hex.EncodeToString(s.data)
}

// Size returns the length of the wire format.
func (s *SOC) Size() int {
	return len(s.data)
}

// Serialize returns the wire format, optionally preceded by the chunk type
// and version bytes.
func (s *SOC) Serialize(withTypePrefix bool) []byte {
	if !withTypePrefix {
		b := make([]byte, len(s.data))
		copy(b, s.data)
		return b
	}
	b := make([]byte, 0, swarm.TypePrefixSize+len(s.data))
	b = append(b, byte(swarm.SingleOwnerChunk), swarm.ChunkVersion)
	return append(b, s.data...)
}

// Chunk returns the soc as a plain swarm chunk.
func (s *SOC) Chunk() swarm.Chunk {
	return swarm.NewChunk(s.address, s.data)
}

// Equal reports whether both chunks have the same address and data.
func (s *SOC) Equal(cp swarm.Chunk) bool {
	return s.Address().Equal(cp.Address()) && bytes.Equal(s.Data(), cp.Data())
}

func (s *SOC) String() string {
	return fmt.Sprintf("single owner chunk %s (owner %s)", s.address, s.OwnerHex())
}

// Digest returns the signed digest, keccak256(id | wrapped chunk address).
func (s *SOC) Digest() ([]byte, error) {
	return hash(s.id, s.chunk.Address().Bytes())
}

// VerifySignature checks that the signature recovers to the owner.
func (s *SOC) VerifySignature() error {
	digest, err := s.Digest()
	if err != nil {
		return err
	}
	recovered, err := recoverAddress(s.signature, digest)
	if err != nil {
		return err
	}
	if !bytes.Equal(recovered, s.owner) {
		return fmt.Errorf("%w: recovered %x, owner %x", ErrOwnerMismatch, recovered, s.owner)
	}
	return nil
}

// Verify checks the soc address against the expected one. Chunks owned by
// the dispersed replica owner must carry a replica id.
func (s *SOC) Verify(expected swarm.Address) error {
	if bytes.Equal(s.owner, ReplicaOwner) && !s.IsValidReplica() {
		return ErrInvalidReplica
	}
	if !s.address.Equal(expected) {
		return fmt.Errorf("%w: expected %s, got %s", ErrAddressMismatch, expected, s.address)
	}
	return nil
}

// CreateAddress creates a new soc address from the soc id and the ethereum address of the signer.
func CreateAddress(id ID, owner Owner) (swarm.Address, error) {
	sum, err := hash(id, owner)
	if err != nil {
		return swarm.ZeroAddress, err
	}
	return swarm.NewAddress(sum), nil
}

// hash hashes the given values in order.
func hash(values ...[]byte) ([]byte, error) {
	h := swarm.NewHasher()
	for _, v := range values {
		_, err := h.Write(v)
		if err != nil {
			return nil, err
		}
	}
	return h.Sum(nil), nil
}

// recoverAddress returns the ethereum address of the owner of an soc.
func recoverAddress(signature, digest []byte) ([]byte, error) {
	recoveredPublicKey, err := crypto.Recover(signature, digest)
	if err != nil {
		return nil, err
	}
	recoveredEthereumAddress, err := crypto.NewEthereumAddress(*recoveredPublicKey)
	if err != nil {
		return nil, err
	}
	return recoveredEthereumAddress, nil
}
