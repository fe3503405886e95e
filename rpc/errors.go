// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"errors"
	"strings"

	"github.com/ava-labs/hypercounter/auth"
	"github.com/ava-labs/hypercounter/counter"
)

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrCredentialExpired = errors.New("credential expired")
	ErrExpiryTooFar      = errors.New("credential expiry too far in the future")
)

// remoteErrors are the sentinels a server error message can be mapped back
// to. JSON-RPC only carries the message.
var remoteErrors = append([]error{
	ErrInvalidCredential,
	ErrCredentialExpired,
	ErrExpiryTooFar,
	auth.ErrMissingCredential,
	auth.ErrMissingTag,
	auth.ErrInvalidKeyType,
	auth.ErrTagTooLarge,
}, counter.Errors...)

type remoteError struct {
	sentinel error
	msg      string
}

func (e *remoteError) Error() string { return e.msg }

func (e *remoteError) Unwrap() error { return e.sentinel }

// parseError restores the sentinel behind a server error so callers can
// match it with errors.Is.
func parseError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, sentinel := range remoteErrors {
		if strings.HasPrefix(msg, sentinel.Error()) {
			return &remoteError{sentinel: sentinel, msg: msg}
		}
	}
	return err
}
