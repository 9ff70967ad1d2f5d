// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chunk_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/ethersphere/nectar/pkg/cac"
	"github.com/ethersphere/nectar/pkg/chunk"
	"github.com/ethersphere/nectar/pkg/soc"
	soctesting "github.com/ethersphere/nectar/pkg/soc/testing"
	"github.com/ethersphere/nectar/pkg/swarm"
	"github.com/google/go-cmp/cmp"
)

const (
	fooAddressHex = "2387e8e7d8a48c2a9339c97c1dc3461a9a7aa07e994c5cb8b38fd7c1b3e6ea48"
	socAddressHex = "9d453ebb73b2fedaaf44ceddcf7a0aa37f3e3d6453fea5841c31f0ea6d61dc85"
	signatureHex  = "5acd384febc133b7b245e5ddc62d82d2cded9182d2716126cd8844509af65a053deb418208027f548e3e88343af6f84a8772fb3cebc0a1833a0ea7ec0c1348311b"
)

// envelopeView exposes the observable state of an envelope for comparison.
type envelopeView struct {
	Address string
	Type    swarm.ChunkType
	Version uint8
	Header  []byte
	Span    uint64
	Payload []byte
	Data    []byte
}

func viewOf(e *chunk.Envelope) envelopeView {
	return envelopeView{
		Address: e.Address().String(),
		Type:    e.Type(),
		Version: e.Version(),
		Header:  e.Header(),
		Span:    e.Span(),
		Payload: e.Payload(),
		Data:    e.Data(),
	}
}

func fooData() []byte {
	return append([]byte{3, 0, 0, 0, 0, 0, 0, 0}, []byte("foo")...)
}

func socData(t *testing.T) []byte {
	t.Helper()
	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		t.Fatal(err)
	}
	data := make([]byte, soc.IdSize)
	data = append(data, sig...)
	return append(data, fooData()...)
}

func TestDeserializeContent(t *testing.T) {
	t.Parallel()

	e, err := chunk.Deserialize(fooData(), false)
	if err != nil {
		t.Fatal(err)
	}

	want := envelopeView{
		Address: fooAddressHex,
		Type:    swarm.ContentChunk,
		Version: swarm.ChunkVersion,
		Header:  []byte{},
		Span:    3,
		Payload: []byte("foo"),
		Data:    fooData(),
	}
	if diff := cmp.Diff(want, viewOf(e)); diff != "" {
		t.Fatalf("envelope mismatch (-want +got):\n%s", diff)
	}
	if e.TypeByte() != 0 {
		t.Fatalf("type byte mismatch. got %d want 0", e.TypeByte())
	}
	if e.Size() != len(fooData()) {
		t.Fatalf("size mismatch. got %d want %d", e.Size(), len(fooData()))
	}
	if got, want := e.DataHex(), "0300000000000000666f6f"; got != want {
		t.Fatalf("data hex mismatch. got %s want %s", got, want)
	}
	if err := e.VerifyIntegrity(); err != nil {
		t.Fatal(err)
	}
	if err := e.Verify(swarm.MustParseHexAddress(fooAddressHex)); err != nil {
		t.Fatal(err)
	}
}

func TestDeserializeSingleOwner(t *testing.T) {
	t.Parallel()

	prefixed := append([]byte{0x01, 0x01}, socData(t)...)
	e, err := chunk.Deserialize(prefixed, true)
	if err != nil {
		t.Fatal(err)
	}

	want := envelopeView{
		Address: socAddressHex,
		Type:    swarm.SingleOwnerChunk,
		Version: swarm.ChunkVersion,
		Header:  socData(t)[:soc.HeaderSize],
		Span:    3,
		Payload: []byte("foo"),
		Data:    socData(t),
	}
	if diff := cmp.Diff(want, viewOf(e)); diff != "" {
		t.Fatalf("envelope mismatch (-want +got):\n%s", diff)
	}
	if e.TypeByte() != 1 {
		t.Fatalf("type byte mismatch. got %d want 1", e.TypeByte())
	}

	s, err := e.SingleOwner()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s.OwnerHex(), "8d3766440f0d7b949a5e32995d09619a7f86e632"; got != want {
		t.Fatalf("owner mismatch. got %s want %s", got, want)
	}
	if _, err := e.Content(); !errors.Is(err, swarm.ErrInvalidChunk) {
		t.Fatalf("got error %v, want %v", err, swarm.ErrInvalidChunk)
	}
	if err := e.VerifyIntegrity(); err != nil {
		t.Fatal(err)
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	content, err := cac.New([]byte("round trip"))
	if err != nil {
		t.Fatal(err)
	}
	owned := soctesting.GenerateMockSOC(t, nil)

	for _, tc := range []struct {
		name     string
		envelope *chunk.Envelope
	}{
		{name: "content", envelope: chunk.FromContent(content)},
		{name: "single owner", envelope: chunk.FromSingleOwner(owned)},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e, err := chunk.Deserialize(tc.envelope.Serialize(true), true)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(viewOf(tc.envelope), viewOf(e)); diff != "" {
				t.Fatalf("prefixed round trip mismatch (-want +got):\n%s", diff)
			}

			a := tc.envelope.Address()
			e, err = chunk.DeserializeWithAddress(a, tc.envelope.Serialize(true), true)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(viewOf(tc.envelope), viewOf(e)); diff != "" {
				t.Fatalf("round trip with address mismatch (-want +got):\n%s", diff)
			}
			if !e.Equal(tc.envelope) {
				t.Fatal("envelopes are not equal")
			}
		})
	}

	t.Run("bare content", func(t *testing.T) {
		t.Parallel()

		want := chunk.FromContent(content)
		e, err := chunk.Deserialize(want.Serialize(false), false)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(viewOf(want), viewOf(e)); diff != "" {
			t.Fatalf("bare round trip mismatch (-want +got):\n%s", diff)
		}
	})

	// the bare form carries no type, single-owner chunks are read back
	// with their own deserializer
	t.Run("bare single owner", func(t *testing.T) {
		t.Parallel()

		s, err := soc.FromBytes(owned.Serialize(false))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(viewOf(chunk.FromSingleOwner(owned)), viewOf(chunk.FromSingleOwner(s))); diff != "" {
			t.Fatalf("bare round trip mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDeserializeErrors(t *testing.T) {
	t.Parallel()

	badRecovery := append([]byte{0x01, 0x01}, socData(t)...)
	badRecovery[swarm.TypePrefixSize+soc.HeaderSize-1] = 0

	for _, tc := range []struct {
		name   string
		data   []byte
		prefix bool
		err    error
	}{
		{
			name: "empty bare",
			data: nil,
			err:  swarm.ErrInvalidChunk,
		},
		{
			name: "short bare",
			data: []byte{1, 0, 0, 0, 0, 0, 0},
			err:  chunk.ErrDataShort,
		},
		{
			name:   "short prefix",
			data:   []byte{0x00},
			prefix: true,
			err:    chunk.ErrDataShort,
		},
		{
			name:   "unknown type",
			data:   append([]byte{0x07, 0x01}, fooData()...),
			prefix: true,
			err:    chunk.ErrUnknownType,
		},
		{
			name:   "unsupported version",
			data:   append([]byte{0x00, 0x02}, fooData()...),
			prefix: true,
			err:    chunk.ErrUnsupportedVersion,
		},
		{
			name:   "prefixed content without span",
			data:   []byte{0x00, 0x01, 0x03},
			prefix: true,
			err:    swarm.ErrInvalidChunk,
		},
		{
			name: "content too large",
			data: make([]byte, swarm.SpanSize+swarm.ChunkSize+1),
			err:  swarm.ErrSizeExceeded,
		},
		{
			name: "span mismatch",
			data: append([]byte{4, 0, 0, 0, 0, 0, 0, 0}, []byte("foo")...),
			err:  cac.ErrSpanMismatch,
		},
		{
			name:   "short single owner",
			data:   append([]byte{0x01, 0x01}, make([]byte, soc.HeaderSize)...),
			prefix: true,
			err:    swarm.ErrInvalidChunk,
		},
		{
			name:   "single owner with invalid signature",
			data:   badRecovery,
			prefix: true,
			err:    swarm.ErrAuthentication,
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := chunk.Deserialize(tc.data, tc.prefix)
			if !errors.Is(err, tc.err) {
				t.Fatalf("got error %v, want %v", err, tc.err)
			}
		})
	}
}

func TestDeserializeWithAddress(t *testing.T) {
	t.Parallel()

	wrong := swarm.MustParseHexAddress(fooAddressHex).Bytes()
	wrong[0] ^= 0xff
	wrongAddress := swarm.NewAddress(wrong)

	t.Run("content", func(t *testing.T) {
		t.Parallel()

		e, err := chunk.DeserializeWithAddress(wrongAddress, fooData(), false)
		if err != nil {
			t.Fatal(err)
		}
		// the address is trusted
		if err := e.Verify(wrongAddress); err != nil {
			t.Fatal(err)
		}
		if err := e.VerifyIntegrity(); !errors.Is(err, swarm.ErrIntegrity) {
			t.Fatalf("got error %v, want %v", err, swarm.ErrIntegrity)
		}
	})

	t.Run("single owner", func(t *testing.T) {
		t.Parallel()

		prefixed := append([]byte{0x01, 0x01}, socData(t)...)
		e, err := chunk.DeserializeWithAddress(wrongAddress, prefixed, true)
		if err != nil {
			t.Fatal(err)
		}
		if err := e.VerifyIntegrity(); !errors.Is(err, swarm.ErrIntegrity) {
			t.Fatalf("got error %v, want %v", err, swarm.ErrIntegrity)
		}

		e, err = chunk.DeserializeWithAddress(swarm.MustParseHexAddress(socAddressHex), prefixed, true)
		if err != nil {
			t.Fatal(err)
		}
		if err := e.VerifyIntegrity(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("structural checks", func(t *testing.T) {
		t.Parallel()

		_, err := chunk.DeserializeWithAddress(wrongAddress, []byte{0x01, 0x01, 0x00}, true)
		if !errors.Is(err, chunk.ErrDataShort) {
			t.Fatalf("got error %v, want %v", err, chunk.ErrDataShort)
		}
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()

	e, err := chunk.Deserialize(fooData(), false)
	if err != nil {
		t.Fatal(err)
	}

	other, err := cac.New([]byte("bar"))
	if err != nil {
		t.Fatal(err)
	}
	err = e.Verify(other.Address())
	if !errors.Is(err, chunk.ErrAddressMismatch) {
		t.Fatalf("got error %v, want %v", err, chunk.ErrAddressMismatch)
	}
	if !errors.Is(err, swarm.ErrIntegrity) {
		t.Fatalf("got error %v, want %v", err, swarm.ErrIntegrity)
	}
}

func TestSerializeCopies(t *testing.T) {
	t.Parallel()

	e, err := chunk.Deserialize(fooData(), false)
	if err != nil {
		t.Fatal(err)
	}
	b := e.Serialize(false)
	b[0] = 0xff
	if !bytes.Equal(e.Data(), fooData()) {
		t.Fatal("serialization shares memory with the envelope")
	}
	if got := e.Serialize(true); !bytes.Equal(got[:2], []byte{0x00, 0x01}) {
		t.Fatalf("type prefix mismatch. got %x", got[:2])
	}
}
