// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dbtest holds the behaviour every state.Database backend must
// share.
package dbtest

import (
	"context"
	"sync"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercounter/state"
)

type Factory func(t *testing.T) state.Database

var Tests = map[string]func(t *testing.T, db state.Database){
	"GetMissing":          testGetMissing,
	"InsertGet":           testInsertGet,
	"InsertOverwrite":     testInsertOverwrite,
	"Remove":              testRemove,
	"RemoveMissing":       testRemoveMissing,
	"InsertCopiesValue":   testInsertCopiesValue,
	"BinaryKeysAndValues": testBinaryKeysAndValues,
	"SwapAbsent":          testSwapAbsent,
	"SwapPresent":         testSwapPresent,
	"SwapRace":            testSwapRace,
}

// Run executes every test against a fresh database from [newDB].
func Run(t *testing.T, newDB Factory) {
	for name, test := range Tests {
		t.Run(name, func(t *testing.T) {
			db := newDB(t)
			defer func() {
				require.NoError(t, db.Close())
			}()
			test(t, db)
		})
	}
}

func testGetMissing(t *testing.T, db state.Database) {
	_, err := db.GetValue(context.Background(), []byte("missing"))
	require.ErrorIs(t, err, database.ErrNotFound)
}

func testInsertGet(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	require.NoError(db.Insert(ctx, []byte("k"), []byte("v")))
	v, err := db.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), v)
}

func testInsertOverwrite(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	require.NoError(db.Insert(ctx, []byte("k"), []byte("v1")))
	require.NoError(db.Insert(ctx, []byte("k"), []byte("v2")))
	v, err := db.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte("v2"), v)
}

func testRemove(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	require.NoError(db.Insert(ctx, []byte("k"), []byte("v")))
	require.NoError(db.Remove(ctx, []byte("k")))
	_, err := db.GetValue(ctx, []byte("k"))
	require.ErrorIs(err, database.ErrNotFound)
}

func testRemoveMissing(t *testing.T, db state.Database) {
	require.NoError(t, db.Remove(context.Background(), []byte("missing")))
}

func testInsertCopiesValue(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	value := []byte("value")
	require.NoError(db.Insert(ctx, []byte("k"), value))
	value[0] = 'X'

	v, err := db.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte("value"), v)
}

func testBinaryKeysAndValues(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	k := []byte{0x00, 0xff, 0x10, 0x00}
	v := []byte{0x00, 0x00, 0x01, 0xfe, 0x00}
	require.NoError(db.Insert(ctx, k, v))
	got, err := db.GetValue(ctx, k)
	require.NoError(err)
	require.Equal(v, got)

	_, err = db.GetValue(ctx, k[:3])
	require.ErrorIs(err, database.ErrNotFound)
}

func testSwapAbsent(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	ok, err := db.CompareAndSwap(ctx, []byte("k"), nil, []byte("v1"))
	require.NoError(err)
	require.True(ok)

	ok, err = db.CompareAndSwap(ctx, []byte("k"), nil, []byte("v2"))
	require.NoError(err)
	require.False(ok)

	v, err := db.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte("v1"), v)
}

func testSwapPresent(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	ok, err := db.CompareAndSwap(ctx, []byte("k"), []byte("v1"), []byte("v2"))
	require.NoError(err)
	require.False(ok)
	_, err = db.GetValue(ctx, []byte("k"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(db.Insert(ctx, []byte("k"), []byte("v1")))
	ok, err = db.CompareAndSwap(ctx, []byte("k"), []byte("v0"), []byte("v2"))
	require.NoError(err)
	require.False(ok)

	ok, err = db.CompareAndSwap(ctx, []byte("k"), []byte("v1"), []byte("v2"))
	require.NoError(err)
	require.True(ok)

	v, err := db.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte("v2"), v)
}

// testSwapRace checks that of many writers swapping from the same value,
// exactly one wins.
func testSwapRace(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()
	require.NoError(db.Insert(ctx, []byte("k"), []byte{0}))

	const writers = 16
	var (
		wg   sync.WaitGroup
		wins = make([]bool, writers)
		errs = make([]error, writers)
	)
	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins[i], errs[i] = db.CompareAndSwap(ctx, []byte("k"), []byte{0}, []byte{byte(i + 1)})
		}()
	}
	wg.Wait()

	winner := -1
	for i := 0; i < writers; i++ {
		require.NoError(errs[i])
		if wins[i] {
			require.Equal(-1, winner)
			winner = i
		}
	}
	require.NotEqual(-1, winner)

	v, err := db.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte{byte(winner + 1)}, v)
}
