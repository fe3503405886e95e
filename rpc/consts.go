// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import "time"

const (
	Name            = "countervm"
	JSONRPCEndpoint = "/counterapi"

	// DefaultCredentialWindow is how far past the server's clock a
	// credential expiry may be.
	DefaultCredentialWindow = time.Minute

	// credentialLifetime is the expiry the client signs, relative to its
	// clock. It must stay within the server's window.
	credentialLifetime = 30 * time.Second
)
