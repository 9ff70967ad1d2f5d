// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package validator detects the format of raw chunk data and checks it
// against the address it was requested by.
//
// The bare wire formats carry no type discriminator. Data is first parsed
// as a single-owner chunk, which has the larger fixed header, and then as a
// content addressed chunk. The first shape whose address matches the
// expected one wins. When none matches, the first shape that parsed is
// reported as invalid, and data that parses as neither is reported as an
// unknown, invalid chunk.
package validator

import (
	"fmt"

	"github.com/ethersphere/nectar/pkg/cac"
	"github.com/ethersphere/nectar/pkg/logging"
	"github.com/ethersphere/nectar/pkg/soc"
	"github.com/ethersphere/nectar/pkg/swarm"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// Analysis is the result of analysing chunk data.
type Analysis struct {
	Type  swarm.ChunkType
	Valid bool
	// Address is derived from the data of the detected type.
	Address swarm.Address
	Span    uint64
	Payload []byte
	// ID, Owner and Signature are only set for single-owner chunks.
	ID        []byte
	Owner     []byte
	Signature []byte
	// Message describes why the chunk is invalid.
	Message string
}

type Validator struct {
	logger  logging.Logger
	metrics metrics
}

func New(logger logging.Logger) *Validator {
	return &Validator{
		logger:  logger,
		metrics: newMetrics(),
	}
}

// Analyze detects the chunk type of data and reports whether it is a valid
// chunk for the expected address. It never fails, malformed data yields an
// invalid analysis with a diagnostic message.
func (v *Validator) Analyze(data []byte, expected swarm.Address) Analysis {
	a := analyze(data, expected)

	v.metrics.AnalysedChunks.WithLabelValues(a.Type.String()).Inc()
	if a.Type == swarm.UnknownChunk {
		v.metrics.UnknownChunks.Inc()
	}
	if !a.Valid {
		v.metrics.InvalidChunks.WithLabelValues(a.Type.String()).Inc()
	}

	v.logger.WithFields(logrus.Fields{
		"type":     a.Type.String(),
		"address":  expected.String(),
		"valid":    a.Valid,
		"data_len": len(data),
	}).Debug("chunk analysed")
	if a.Message != "" {
		v.logger.Tracef("validator: chunk %s: %s", expected, a.Message)
	}

	return a
}

// Validate reports whether the chunk data is a valid content addressed or
// single-owner chunk for the chunk address.
func (v *Validator) Validate(ch swarm.Chunk) bool {
	return v.Analyze(ch.Data(), ch.Address()).Valid
}

func analyze(data []byte, expected swarm.Address) Analysis {
	s, socErr := soc.FromBytes(data)
	if socErr == nil {
		if err := verifySOC(s, expected); err == nil {
			return fromSOC(s, true, "")
		}
	}

	c, cacErr := cac.NewWithDataSpan(data)
	if cacErr == nil && c.Address().Equal(expected) {
		return fromContent(c, true, "")
	}

	switch {
	case socErr == nil:
		return fromSOC(s, false, verifySOC(s, expected).Error())
	case cacErr == nil:
		return fromContent(c, false, fmt.Sprintf("content address mismatch: expected %s, got %s", expected, c.Address()))
	}

	var merr *multierror.Error
	merr = multierror.Append(merr,
		fmt.Errorf("single owner chunk: %w", socErr),
		fmt.Errorf("content chunk: %w", cacErr),
		fmt.Errorf("%d bytes: %w", len(data), swarm.ErrUnknownFormat),
	)
	return Analysis{
		Type:    swarm.UnknownChunk,
		Message: merr.Error(),
	}
}

func verifySOC(s *soc.SOC, expected swarm.Address) error {
	if err := s.VerifySignature(); err != nil {
		return err
	}
	return s.Verify(expected)
}

func fromSOC(s *soc.SOC, valid bool, msg string) Analysis {
	return Analysis{
		Type:      swarm.SingleOwnerChunk,
		Valid:     valid,
		Address:   s.Address(),
		Span:      s.Span(),
		Payload:   s.Payload(),
		ID:        s.ID(),
		Owner:     s.Owner(),
		Signature: s.Signature(),
		Message:   msg,
	}
}

func fromContent(c *cac.Chunk, valid bool, msg string) Analysis {
	return Analysis{
		Type:    swarm.ContentChunk,
		Valid:   valid,
		Address: c.Address(),
		Span:    c.Span(),
		Payload: c.Payload(),
		Message: msg,
	}
}
