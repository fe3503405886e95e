// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/ava-labs/hypercounter/auth"
	"github.com/ava-labs/hypercounter/config"
	"github.com/ava-labs/hypercounter/counter"
	"github.com/ava-labs/hypercounter/crypto/ed25519"
	"github.com/ava-labs/hypercounter/rpc"
)

// startServer runs the full server stack on a loopback port and returns a
// client for it.
func startServer(t *testing.T) *rpc.JSONRPCClient {
	t.Helper()
	require := require.New(t)

	cfg, err := config.New([]byte(`{"allowedHosts": ["*"]}`))
	require.NoError(err)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- runServer(ctx, logging.NoLog{}, cfg, listener)
	}()
	t.Cleanup(func() {
		cancel()
		require.NoError(<-errCh)
	})
	return rpc.NewJSONRPCClient("http://" + listener.Addr().String())
}

func newFactory(t *testing.T) auth.AuthFactory {
	t.Helper()
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(t, err)
	return auth.NewED25519Factory(priv)
}

func TestServeRoundTrip(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := startServer(t)
	owner := newFactory(t)

	ok, err := cli.Ping(ctx)
	require.NoError(err)
	require.True(ok)

	_, err = cli.Create(ctx, nil, owner)
	require.NoError(err)
	c, err := cli.Increment(ctx, nil, owner)
	require.NoError(err)
	require.Equal(uint64(1), c.Count)
}

func TestInitOrGet(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := startServer(t)
	owner, other := newFactory(t), newFactory(t)

	c, created, err := initOrGet(ctx, cli, []byte("votes"), owner)
	require.NoError(err)
	require.True(created)
	require.Equal(owner.Address(), c.Authority)

	_, err = cli.Increment(ctx, []byte("votes"), owner)
	require.NoError(err)

	c, created, err = initOrGet(ctx, cli, []byte("votes"), other)
	require.NoError(err)
	require.False(created)
	require.Equal(owner.Address(), c.Authority)
	require.Equal(uint64(1), c.Count)
}

func TestRepeatIncrements(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := startServer(t)
	owner := newFactory(t)

	_, err := cli.Create(ctx, nil, owner)
	require.NoError(err)

	require.NoError(repeat(ctx, 40, 4, func(ctx context.Context) error {
		_, err := cli.Increment(ctx, nil, owner)
		return err
	}))
	c, _, err := cli.Get(ctx, nil)
	require.NoError(err)
	require.Equal(uint64(40), c.Count)

	intruder := newFactory(t)
	err = repeat(ctx, 5, 2, func(ctx context.Context) error {
		_, err := cli.Increment(ctx, nil, intruder)
		return err
	})
	require.ErrorIs(err, counter.ErrUnauthorized)
}

func TestRepeatStopsOnError(t *testing.T) {
	require := require.New(t)
	errFail := errors.New("fail")

	var calls atomic.Int64
	err := repeat(context.Background(), 10, 1, func(context.Context) error {
		calls.Inc()
		return errFail
	})
	require.ErrorIs(err, errFail)
	require.Positive(calls.Load())

	require.NoError(repeat(context.Background(), 0, 1, func(context.Context) error {
		return errFail
	}))
}
