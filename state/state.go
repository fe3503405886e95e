// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"io"
)

// Immutable reads state. A missing key returns database.ErrNotFound.
type Immutable interface {
	GetValue(ctx context.Context, key []byte) (value []byte, err error)
}

type Mutable interface {
	Immutable

	Insert(ctx context.Context, key []byte, value []byte) error
	Remove(ctx context.Context, key []byte) error
}

// Swapper replaces the value at [key] only if it still holds [old], as one
// atomic step. A nil [old] requires [key] to be absent. The returned bool is
// false if the stored value did not match.
type Swapper interface {
	CompareAndSwap(ctx context.Context, key []byte, old []byte, value []byte) (bool, error)
}

// Database is a Mutable that owns durable resources.
type Database interface {
	Mutable
	Swapper
	io.Closer
}
