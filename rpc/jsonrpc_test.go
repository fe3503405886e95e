// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/hypercounter/auth"
	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
	"github.com/ava-labs/hypercounter/counter"
	"github.com/ava-labs/hypercounter/crypto/ed25519"
	"github.com/ava-labs/hypercounter/state"
	"github.com/ava-labs/hypercounter/storage"
)

func newTestStore(t *testing.T) *counter.Store {
	t.Helper()
	store, err := counter.New(logging.NoLog{}, state.NewMemoryDatabase(), nil, counter.NewDefaultConfig())
	require.NoError(t, err)
	return store
}

func newTestClient(t *testing.T, namespace []byte) *JSONRPCClient {
	t.Helper()
	return newStoreClient(t, newTestStore(t), namespace)
}

func newStoreClient(t *testing.T, store *counter.Store, namespace []byte) *JSONRPCClient {
	t.Helper()
	handler, err := NewJSONRPCHandler(Name, NewJSONRPCServer(logging.NoLog{}, store, namespace, DefaultCredentialWindow))
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.Handle(JSONRPCEndpoint, handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewJSONRPCClient(srv.URL + "/")
}

func newFactory(t *testing.T) *auth.ED25519Factory {
	t.Helper()
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(t, err)
	return auth.NewED25519Factory(priv)
}

func TestPing(t *testing.T) {
	cli := newTestClient(t, nil)
	ok, err := cli.Ping(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAddress(t *testing.T) {
	require := require.New(t)
	cli := newTestClient(t, nil)

	addr, bump, err := cli.Address(context.Background(), []byte("votes"))
	require.NoError(err)
	expected, expectedBump, err := storage.FindCounterAddress([]byte("votes"))
	require.NoError(err)
	require.Equal(expected, addr)
	require.Equal(expectedBump, bump)

	_, _, err = cli.Address(context.Background(), make([]byte, consts.MaxTagLen+1))
	require.ErrorContains(err, storage.ErrTagTooLarge.Error())
}

func TestRoundTrip(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := newTestClient(t, nil)
	owner, other := newFactory(t), newFactory(t)

	_, _, err := cli.Get(ctx, nil)
	require.ErrorIs(err, counter.ErrNotFound)
	_, err = cli.Increment(ctx, nil, owner)
	require.ErrorIs(err, counter.ErrNotFound)

	c, err := cli.Create(ctx, nil, owner)
	require.NoError(err)
	require.Equal(owner.Address(), c.Authority)
	require.Equal(uint64(0), c.Count)

	_, err = cli.Create(ctx, nil, other)
	require.ErrorIs(err, counter.ErrAlreadyExists)

	c, err = cli.Increment(ctx, nil, owner)
	require.NoError(err)
	require.Equal(uint64(1), c.Count)

	_, err = cli.Decrement(ctx, nil, other)
	require.ErrorIs(err, counter.ErrUnauthorized)

	c, err = cli.Decrement(ctx, nil, owner)
	require.NoError(err)
	require.Equal(uint64(0), c.Count)

	_, err = cli.Decrement(ctx, nil, owner)
	require.ErrorIs(err, counter.ErrUnderflow)

	c, addr, err := cli.Get(ctx, nil)
	require.NoError(err)
	require.Equal(uint64(0), c.Count)
	expected, _, err := storage.FindCounterAddress(consts.DefaultTag)
	require.NoError(err)
	require.Equal(expected, addr)
}

func TestNamespace(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := newTestClient(t, []byte("votes"))
	owner := newFactory(t)

	_, err := cli.Create(ctx, nil, owner)
	require.NoError(err)

	_, addr, err := cli.Get(ctx, []byte("votes"))
	require.NoError(err)
	expected, _, err := storage.FindCounterAddress([]byte("votes"))
	require.NoError(err)
	require.Equal(expected, addr)

	_, _, err = cli.Get(ctx, consts.DefaultTag)
	require.ErrorIs(err, counter.ErrNotFound)
}

// signedArgs builds the arguments a client would send to approve [op] on
// [tag] at [count].
func signedArgs(t *testing.T, factory auth.AuthFactory, op auth.Operation, tag []byte, count uint64, expiry int64) *MutateArgs {
	t.Helper()
	msg, err := auth.Digest(op, tag, count, expiry)
	require.NoError(t, err)
	a, err := factory.Sign(msg)
	require.NoError(t, err)
	return &MutateArgs{
		Tag:    tag,
		Count:  count,
		Expiry: expiry,
		Auth:   a.Bytes(),
	}
}

func freshExpiry() int64 {
	return time.Now().Add(credentialLifetime).UnixMilli()
}

func TestRejectsCredentialForOtherOperation(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := newTestClient(t, nil)
	owner := newFactory(t)

	_, err := cli.Create(ctx, nil, owner)
	require.NoError(err)

	args := signedArgs(t, owner, auth.OpIncrement, consts.DefaultTag, 0, freshExpiry())
	err = cli.requester.SendRequest(ctx, "decrement", args, new(CounterReply))
	require.ErrorIs(parseError(err), ErrInvalidCredential)
}

func TestReplayedCredentialRejected(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := newTestClient(t, nil)
	owner := newFactory(t)

	_, err := cli.Create(ctx, nil, owner)
	require.NoError(err)
	for i := 0; i < 3; i++ {
		_, err = cli.Increment(ctx, nil, owner)
		require.NoError(err)
	}

	args := signedArgs(t, owner, auth.OpDecrement, consts.DefaultTag, 3, freshExpiry())
	resp := new(CounterReply)
	require.NoError(cli.requester.SendRequest(ctx, "decrement", args, resp))
	require.Equal(uint64(2), resp.Counter.Count)

	// The same bytes a second time approve nothing.
	for i := 0; i < 3; i++ {
		err = cli.requester.SendRequest(ctx, "decrement", args, new(CounterReply))
		require.ErrorIs(parseError(err), counter.ErrStaleCount)
	}
	c, _, err := cli.Get(ctx, nil)
	require.NoError(err)
	require.Equal(uint64(2), c.Count)
}

func TestCredentialBoundToResolvedTag(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)
	defaults := newStoreClient(t, store, nil)
	votes := newStoreClient(t, store, []byte("votes"))
	owner := newFactory(t)

	_, err := defaults.Create(ctx, nil, owner)
	require.NoError(err)
	_, err = votes.Create(ctx, nil, owner)
	require.NoError(err)

	// Approved for the default tag, sent with an empty tag to a server that
	// resolves it elsewhere.
	args := signedArgs(t, owner, auth.OpIncrement, consts.DefaultTag, 0, freshExpiry())
	args.Tag = nil
	err = votes.requester.SendRequest(ctx, "increment", args, new(CounterReply))
	require.ErrorIs(parseError(err), ErrInvalidCredential)

	c, _, err := votes.Get(ctx, nil)
	require.NoError(err)
	require.Equal(uint64(0), c.Count)

	// The server that resolves the empty tag the same way accepts it.
	resp := new(CounterReply)
	require.NoError(defaults.requester.SendRequest(ctx, "increment", args, resp))
	require.Equal(uint64(1), resp.Counter.Count)
	require.Equal(codec.Bytes(consts.DefaultTag), resp.Tag)
}

func TestCredentialExpiry(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := newTestClient(t, nil)
	owner := newFactory(t)

	_, err := cli.Create(ctx, nil, owner)
	require.NoError(err)

	past := time.Now().Add(-time.Second).UnixMilli()
	args := signedArgs(t, owner, auth.OpIncrement, consts.DefaultTag, 0, past)
	err = cli.requester.SendRequest(ctx, "increment", args, new(CounterReply))
	require.ErrorIs(parseError(err), ErrCredentialExpired)

	future := time.Now().Add(2 * DefaultCredentialWindow).UnixMilli()
	args = signedArgs(t, owner, auth.OpIncrement, consts.DefaultTag, 0, future)
	err = cli.requester.SendRequest(ctx, "increment", args, new(CounterReply))
	require.ErrorIs(parseError(err), ErrExpiryTooFar)

	c, _, err := cli.Get(ctx, nil)
	require.NoError(err)
	require.Equal(uint64(0), c.Count)
}

func TestConcurrentClientIncrements(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := newTestClient(t, nil)
	owner := newFactory(t)

	_, err := cli.Create(ctx, nil, owner)
	require.NoError(err)

	const (
		workers   = 8
		perWorker = 10
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := 0; j < perWorker; j++ {
				if _, err := cli.Increment(gctx, nil, owner); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(g.Wait())

	c, _, err := cli.Get(ctx, nil)
	require.NoError(err)
	require.Equal(uint64(workers*perWorker), c.Count)
}

func TestMissingCredential(t *testing.T) {
	require := require.New(t)
	cli := newTestClient(t, nil)

	resp := new(CounterReply)
	err := cli.requester.SendRequest(context.Background(), "increment", &MutateArgs{Expiry: freshExpiry()}, resp)
	require.ErrorIs(parseError(err), auth.ErrMissingCredential)
}

func TestParseError(t *testing.T) {
	require := require.New(t)

	require.NoError(parseError(nil))

	err := parseError(errors.New("counter not found: address=0x00"))
	require.ErrorIs(err, counter.ErrNotFound)
	require.Equal("counter not found: address=0x00", err.Error())

	unknown := errors.New("connection refused")
	require.Equal(unknown, parseError(unknown))
}

func TestCounterReplyAddress(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := newTestClient(t, nil)
	owner := newFactory(t)

	_, err := cli.Create(ctx, []byte("a"), owner)
	require.NoError(err)
	_, addrA, err := cli.Get(ctx, []byte("a"))
	require.NoError(err)
	require.NotEqual(codec.EmptyAddress, addrA)
	require.Equal(storage.CounterAddressTypeID, addrA.TypeID())
}
