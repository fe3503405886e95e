// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"errors"

	"github.com/ava-labs/hypercounter/codec"
)

var (
	ErrInvalidKeyType    = errors.New("invalid key type")
	ErrInvalidAuthSize   = errors.New("invalid auth size")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrTagTooLarge       = errors.New("namespace tag too large")
	ErrMissingTag        = errors.New("namespace tag missing")
	ErrMissingCredential = errors.New("missing credential")
)

// Auth proves that a principal approved a message.
type Auth interface {
	GetTypeID() uint8

	// Verify returns nil only if the credential signs [msg].
	Verify(ctx context.Context, msg []byte) error

	// Actor is the principal the credential authenticates. It is the
	// identity compared against a counter's authority.
	Actor() codec.Address

	// Sponsor pays for any storage the operation allocates.
	Sponsor() codec.Address

	Bytes() []byte
}

// AuthFactory produces credentials for a single principal.
type AuthFactory interface {
	Sign(msg []byte) (Auth, error)
	Address() codec.Address
}

// Unmarshal decodes a credential from its type-prefixed encoding.
func Unmarshal(b []byte) (Auth, error) {
	if len(b) == 0 {
		return nil, ErrMissingCredential
	}
	switch b[0] {
	case ED25519ID:
		return UnmarshalED25519(b)
	default:
		return nil, ErrInvalidKeyType
	}
}
