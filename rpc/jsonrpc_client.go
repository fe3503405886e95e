// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ava-labs/hypercounter/auth"
	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/counter"
	"github.com/ava-labs/hypercounter/requester"
	"github.com/ava-labs/hypercounter/storage"
)

type JSONRPCClient struct {
	requester *requester.EndpointRequester
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	req := requester.New(uri, Name)
	return &JSONRPCClient{requester: req}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

func (cli *JSONRPCClient) Address(ctx context.Context, tag []byte) (codec.Address, uint8, error) {
	resp, err := cli.address(ctx, tag)
	if err != nil {
		return codec.EmptyAddress, 0, err
	}
	return resp.Address, resp.Bump, nil
}

func (cli *JSONRPCClient) address(ctx context.Context, tag []byte) (*AddressReply, error) {
	resp := new(AddressReply)
	err := cli.requester.SendRequest(
		ctx,
		"address",
		&TagArgs{Tag: tag},
		resp,
	)
	if err != nil {
		return nil, parseError(err)
	}
	return resp, nil
}

func (cli *JSONRPCClient) Get(ctx context.Context, tag []byte) (*storage.Counter, codec.Address, error) {
	resp, err := cli.get(ctx, tag)
	if err != nil {
		return nil, codec.EmptyAddress, err
	}
	return &resp.Counter, resp.Address, nil
}

func (cli *JSONRPCClient) get(ctx context.Context, tag []byte) (*CounterReply, error) {
	resp := new(CounterReply)
	err := cli.requester.SendRequest(
		ctx,
		"get",
		&TagArgs{Tag: tag},
		resp,
	)
	if err != nil {
		return nil, parseError(err)
	}
	return resp, nil
}

func (cli *JSONRPCClient) Create(ctx context.Context, tag []byte, factory auth.AuthFactory) (*storage.Counter, error) {
	resp, err := cli.address(ctx, tag)
	if err != nil {
		return nil, err
	}
	return cli.send(ctx, "create", auth.OpCreate, resp.Tag, 0, factory)
}

func (cli *JSONRPCClient) Increment(ctx context.Context, tag []byte, factory auth.AuthFactory) (*storage.Counter, error) {
	return cli.mutate(ctx, "increment", auth.OpIncrement, tag, factory)
}

func (cli *JSONRPCClient) Decrement(ctx context.Context, tag []byte, factory auth.AuthFactory) (*storage.Counter, error) {
	return cli.mutate(ctx, "decrement", auth.OpDecrement, tag, factory)
}

// mutate signs [op] against the count it reads and resends with a fresh read
// whenever another writer got there first.
func (cli *JSONRPCClient) mutate(
	ctx context.Context,
	method string,
	op auth.Operation,
	tag []byte,
	factory auth.AuthFactory,
) (*storage.Counter, error) {
	for {
		cur, err := cli.get(ctx, tag)
		if err != nil {
			return nil, err
		}
		c, err := cli.send(ctx, method, op, cur.Tag, cur.Counter.Count, factory)
		if !errors.Is(err, counter.ErrStaleCount) {
			return c, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func (cli *JSONRPCClient) send(
	ctx context.Context,
	method string,
	op auth.Operation,
	tag []byte,
	count uint64,
	factory auth.AuthFactory,
) (*storage.Counter, error) {
	expiry := time.Now().Add(credentialLifetime).UnixMilli()
	msg, err := auth.Digest(op, tag, count, expiry)
	if err != nil {
		return nil, err
	}
	a, err := factory.Sign(msg)
	if err != nil {
		return nil, err
	}
	resp := new(CounterReply)
	err = cli.requester.SendRequest(
		ctx,
		method,
		&MutateArgs{
			Tag:    tag,
			Count:  count,
			Expiry: expiry,
			Auth:   a.Bytes(),
		},
		resp,
	)
	if err != nil {
		return nil, parseError(err)
	}
	return &resp.Counter, nil
}
