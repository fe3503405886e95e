// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lockmap

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLockmapSerializesWriters(t *testing.T) {
	require := require.New(t)
	l := New(4)

	var (
		g     errgroup.Group
		count int
	)
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				l.Lock("a")
				count++
				l.Unlock("a")
			}
			return nil
		})
	}
	require.NoError(g.Wait())
	require.Equal(3200, count)
	require.Zero(l.Locks())
}

func TestLockmapIndependentKeys(t *testing.T) {
	require := require.New(t)
	l := New(0)

	l.Lock("a")
	// Different key must not block.
	l.Lock("b")
	require.Equal(2, l.Locks())
	l.Unlock("b")
	l.Unlock("a")
	require.Zero(l.Locks())
}

func TestLockmapReaders(t *testing.T) {
	require := require.New(t)
	l := New(0)

	l.RLock("a")
	l.RLock("a")
	require.Equal(1, l.Locks())
	l.RUnlock("a")
	require.Equal(1, l.Locks())
	l.RUnlock("a")
	require.Zero(l.Locks())
}

func TestLockmapUnlockUnknownPanics(t *testing.T) {
	require.Panics(t, func() {
		New(0).Unlock("missing")
	})
}
