// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state_test

import (
	"testing"

	"github.com/ava-labs/hypercounter/state"
	"github.com/ava-labs/hypercounter/state/dbtest"
)

func TestMemoryDatabase(t *testing.T) {
	dbtest.Run(t, func(*testing.T) state.Database {
		return state.NewMemoryDatabase()
	})
}
