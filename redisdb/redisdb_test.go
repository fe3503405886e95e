// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package redisdb

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercounter/state"
	"github.com/ava-labs/hypercounter/state/dbtest"
)

func TestDatabase(t *testing.T) {
	dbtest.Run(t, func(t *testing.T) state.Database {
		mr := miniredis.RunT(t)
		return New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), DefaultPrefix)
	})
}

func TestPrefixIsolation(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)

	a := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "a:")
	defer a.Close()
	b := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "b:")
	defer b.Close()

	require.NoError(a.Insert(ctx, []byte("k"), []byte("v")))
	_, err := b.GetValue(ctx, []byte("k"))
	require.Error(err)
	require.True(mr.Exists("a:k"))
}

func TestDial(t *testing.T) {
	require := require.New(t)
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	db, err := Dial(context.Background(), addr)
	require.NoError(err)
	require.NoError(db.Close())

	mr.Close()
	_, err = Dial(context.Background(), addr)
	require.Error(err)
}

func TestSwapAcrossClients(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)

	a := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), DefaultPrefix)
	defer a.Close()
	b := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), DefaultPrefix)
	defer b.Close()

	ok, err := a.CompareAndSwap(ctx, []byte("k"), nil, []byte("v1"))
	require.NoError(err)
	require.True(ok)

	// b read v1 before a moved it on.
	ok, err = a.CompareAndSwap(ctx, []byte("k"), []byte("v1"), []byte("v2"))
	require.NoError(err)
	require.True(ok)
	ok, err = b.CompareAndSwap(ctx, []byte("k"), []byte("v1"), []byte("v3"))
	require.NoError(err)
	require.False(ok)

	v, err := mr.Get(DefaultPrefix + "k")
	require.NoError(err)
	require.Equal("v2", v)
}
