// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/btcsuite/btcd/btcec"
	"github.com/ethersphere/nectar/pkg/swarm"
)

// SignatureSize is the size of an ethereum signature, r|s|v.
const SignatureSize = 65

var (
	// ErrInvalidLength is returned when the signature is not SignatureSize long.
	ErrInvalidLength = fmt.Errorf("invalid signature length: %w", swarm.ErrAuthentication)
	// ErrInvalidRecoveryID is returned when the v byte is neither 27 nor 28.
	ErrInvalidRecoveryID = fmt.Errorf("invalid recovery id: %w", swarm.ErrAuthentication)
)

type Signer interface {
	// Sign signs data with ethereum prefix (eip191 type 0x45).
	Sign(data []byte) ([]byte, error)
	// PublicKey returns the public key this signer uses.
	PublicKey() (*ecdsa.PublicKey, error)
	// EthereumAddress returns the ethereum address this signer uses.
	EthereumAddress() ([]byte, error)
}

// addEthereumPrefix adds the ethereum prefix to the data.
func addEthereumPrefix(data []byte) []byte {
	return []byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(data), data))
}

// hashWithEthereumPrefix returns the hash that should be signed for the given data.
func hashWithEthereumPrefix(data []byte) ([]byte, error) {
	return LegacyKeccak256(addEthereumPrefix(data))
}

// Recover verifies signature with the data base provided.
// It is using `btcec.RecoverCompact` function.
func Recover(signature, data []byte) (*ecdsa.PublicKey, error) {
	if len(signature) != SignatureSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, len(signature))
	}
	if v := signature[64]; v != 27 && v != 28 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRecoveryID, v)
	}
	// Convert to btcec input format with 'recovery id' v at the beginning.
	btcsig := make([]byte, SignatureSize)
	btcsig[0] = signature[64]
	copy(btcsig[1:], signature)

	hash, err := hashWithEthereumPrefix(data)
	if err != nil {
		return nil, err
	}

	p, _, err := btcec.RecoverCompact(btcec.S256(), btcsig, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swarm.ErrAuthentication, err)
	}
	return (*ecdsa.PublicKey)(p), nil
}

// RecoverEthereumAddress returns the ethereum address of the signer of data.
func RecoverEthereumAddress(signature, data []byte) ([]byte, error) {
	p, err := Recover(signature, data)
	if err != nil {
		return nil, err
	}
	return NewEthereumAddress(*p)
}

type defaultSigner struct {
	key *ecdsa.PrivateKey
}

func NewDefaultSigner(key *ecdsa.PrivateKey) Signer {
	return &defaultSigner{
		key: key,
	}
}

// PublicKey returns the public key this signer uses.
func (d *defaultSigner) PublicKey() (*ecdsa.PublicKey, error) {
	if d.key == nil {
		return nil, errNilKey
	}
	return &d.key.PublicKey, nil
}

// Sign signs data with ethereum prefix (eip191 type 0x45).
func (d *defaultSigner) Sign(data []byte) (signature []byte, err error) {
	if d.key == nil {
		return nil, errNilKey
	}
	hash, err := hashWithEthereumPrefix(data)
	if err != nil {
		return nil, err
	}

	return d.sign(hash, false)
}

// EthereumAddress returns the ethereum address this signer uses.
func (d *defaultSigner) EthereumAddress() ([]byte, error) {
	publicKey, err := d.PublicKey()
	if err != nil {
		return nil, err
	}
	return NewEthereumAddress(*publicKey)
}

// sign the provided hash and convert it to the ethereum (r,s,v) format.
func (d *defaultSigner) sign(sighash []byte, isCompressedKey bool) ([]byte, error) {
	pk := (*btcec.PrivateKey)(d.key)
	signature, err := btcec.SignCompact(btcec.S256(), pk, sighash, isCompressedKey)
	if err != nil {
		return nil, err
	}

	// Convert to Ethereum signature format with 'recovery id' v at the end.
	v := signature[0]
	copy(signature, signature[1:])
	signature[64] = v
	return signature, nil
}
