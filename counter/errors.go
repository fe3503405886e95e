// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import "errors"

var (
	ErrAlreadyExists    = errors.New("counter already exists")
	ErrNotFound         = errors.New("counter not found")
	ErrUnauthorized     = errors.New("requester is not the counter authority")
	ErrUnderflow        = errors.New("cannot decrement below zero")
	ErrOverflow         = errors.New("cannot increment past max uint64")
	ErrInvalidRequester = errors.New("invalid requester")
	ErrInvalidRecord    = errors.New("stored counter is invalid")
	ErrStaleCount       = errors.New("counter changed since it was read")
)

// Errors lists every sentinel a Store operation can return so transports can
// map a message back to its error.
var Errors = []error{
	ErrAlreadyExists,
	ErrNotFound,
	ErrUnauthorized,
	ErrUnderflow,
	ErrOverflow,
	ErrInvalidRequester,
	ErrInvalidRecord,
	ErrStaleCount,
}
