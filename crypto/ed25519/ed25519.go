// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"crypto/ed25519"
	"os"

	"github.com/hdevalence/ed25519consensus"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/crypto"
)

type (
	PublicKey  [ed25519.PublicKeySize]byte
	PrivateKey [ed25519.PrivateKeySize]byte
	Signature  [ed25519.SignatureSize]byte
)

// Signatures are verified under ZIP-215 (https://zips.z.cash/zip-0215),
// which gives an explicit validity criteria that every node agrees on
// regardless of which library produced the signature.
const (
	PublicKeyLen  = ed25519.PublicKeySize
	PrivateKeyLen = ed25519.PrivateKeySize
	// PrivateKeySeedLen is defined because ed25519.PrivateKey
	// is formatted as privateKey = seed|publicKey. We use this const
	// to extract the publicKey below.
	PrivateKeySeedLen = ed25519.SeedSize
	SignatureLen      = ed25519.SignatureSize
)

var (
	EmptyPublicKey  = [ed25519.PublicKeySize]byte{}
	EmptyPrivateKey = [ed25519.PrivateKeySize]byte{}
	EmptySignature  = [ed25519.SignatureSize]byte{}
)

// GeneratePrivateKey returns a Ed25519 PrivateKey.
func GeneratePrivateKey() (PrivateKey, error) {
	_, k, err := ed25519.GenerateKey(nil)
	if err != nil {
		return EmptyPrivateKey, err
	}
	return PrivateKey(k), nil
}

// PublicKey returns a PublicKey associated with the Ed25519 PrivateKey p.
// The PublicKey is the last 32 bytes of p.
func (p PrivateKey) PublicKey() PublicKey {
	return PublicKey(p[PrivateKeySeedLen:])
}

// ToHex converts a PrivateKey to a hex string.
func (p PrivateKey) ToHex() string {
	return codec.ToHex(p[:])
}

// Save writes [PrivateKey] to a file [filename]. If filename does
// not exist, it creates a new file with read/write permissions (0o600).
func (p PrivateKey) Save(filename string) error {
	return os.WriteFile(filename, p[:], 0o600)
}

// LoadKey returns a PrivateKey from a file filename.
func LoadKey(filename string) (PrivateKey, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return EmptyPrivateKey, err
	}
	if len(bytes) != PrivateKeyLen {
		return EmptyPrivateKey, crypto.ErrInvalidPrivateKey
	}
	return PrivateKey(bytes), nil
}

// HexToKey converts a hexadecimal encoded key into a PrivateKey.
func HexToKey(key string) (PrivateKey, error) {
	bytes, err := codec.LoadHex(key, PrivateKeyLen)
	if err != nil {
		return EmptyPrivateKey, crypto.ErrInvalidPrivateKey
	}
	return PrivateKey(bytes), nil
}

func (p PublicKey) MarshalText() ([]byte, error) {
	return []byte("0x" + codec.ToHex(p[:])), nil
}

func (p *PublicKey) UnmarshalText(text []byte) error {
	bytes, err := codec.LoadHex(string(text), PublicKeyLen)
	if err != nil {
		return crypto.ErrInvalidPublicKey
	}
	*p = PublicKey(bytes)
	return nil
}

func (s Signature) MarshalText() ([]byte, error) {
	return []byte("0x" + codec.ToHex(s[:])), nil
}

func (s *Signature) UnmarshalText(text []byte) error {
	bytes, err := codec.LoadHex(string(text), SignatureLen)
	if err != nil {
		return crypto.ErrInvalidSignature
	}
	*s = Signature(bytes)
	return nil
}

// Sign returns a valid signature for msg using pk.
func Sign(msg []byte, pk PrivateKey) Signature {
	sig := ed25519.Sign(pk[:], msg)
	return Signature(sig)
}

// Verify returns whether s is a valid signature of msg by p.
func Verify(msg []byte, p PublicKey, s Signature) bool {
	return ed25519consensus.Verify(p[:], msg, s[:])
}
