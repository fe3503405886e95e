// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/hypercounter/consts"
)

// Operation enumerates the mutations a credential can approve.
type Operation uint8

const (
	OpCreate Operation = iota + 1
	OpIncrement
	OpDecrement
)

func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpIncrement:
		return "increment"
	case OpDecrement:
		return "decrement"
	default:
		return "unknown"
	}
}

var digestDomain = []byte("hypercounter/auth/v2")

// Digest returns the message a requester signs to approve [op] against the
// counter derived from [tag]. [tag] is the tag the server resolves, never an
// empty placeholder. [count] is the count the requester observed before
// signing (zero for create) and [expiry] is the unix millisecond after which
// the approval is void.
//
// Layout: domain | op | expiry | count | len(tag) | tag
func Digest(op Operation, tag []byte, count uint64, expiry int64) ([]byte, error) {
	if op < OpCreate || op > OpDecrement {
		return nil, ErrInvalidOperation
	}
	if len(tag) == 0 {
		return nil, ErrMissingTag
	}
	if len(tag) > consts.MaxTagLen {
		return nil, ErrTagTooLarge
	}
	size := len(digestDomain) + 2*consts.ByteLen + consts.Int64Len + consts.Uint64Len + len(tag)
	p := wrappers.Packer{MaxSize: size, Bytes: make([]byte, 0, size)}
	p.PackFixedBytes(digestDomain)
	p.PackByte(byte(op))
	p.PackLong(uint64(expiry))
	p.PackLong(count)
	p.PackByte(byte(len(tag)))
	p.PackFixedBytes(tag)
	return p.Bytes, p.Err
}
