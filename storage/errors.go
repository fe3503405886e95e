// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrInvalidRecord        = errors.New("invalid counter record")
	ErrInvalidDiscriminator = errors.New("invalid counter discriminator")
	ErrAddressMismatch      = errors.New("counter address does not match bump")
	ErrBumpOnCurve          = errors.New("derived address is on the ed25519 curve")
	ErrNoViableBump         = errors.New("unable to find a viable bump")
	ErrTagTooLarge          = errors.New("namespace tag too large")
	ErrUnknownBackend       = errors.New("unknown database backend")
)
