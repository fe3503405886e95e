// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	ByteLen   = 1
	IDLen     = 32
	MaxUint8  = ^uint8(0)
	Uint8Len  = 1
	Uint16Len = 2
	Uint64Len = 8
	Int64Len  = 8
	MaxUint64 = ^uint64(0)
)

// DefaultTag is the namespace tag the counter record is derived from when
// the caller does not supply one.
var DefaultTag = []byte("counter")

// MaxTagLen bounds namespace tags so derived keys stay small.
const MaxTagLen = 32
