// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/hypercounter/auth"
	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
	"github.com/ava-labs/hypercounter/counter"
	"github.com/ava-labs/hypercounter/storage"
)

type JSONRPCServer struct {
	log   logging.Logger
	store *counter.Store

	// namespace replaces an empty request tag.
	namespace []byte
	window    time.Duration
}

func NewJSONRPCServer(
	log logging.Logger,
	store *counter.Store,
	namespace []byte,
	window time.Duration,
) *JSONRPCServer {
	if len(namespace) == 0 {
		namespace = consts.DefaultTag
	}
	return &JSONRPCServer{
		log:       log,
		store:     store,
		namespace: namespace,
		window:    window,
	}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	j.log.Info("ping")
	reply.Success = true
	return nil
}

type TagArgs struct {
	Tag codec.Bytes `json:"tag"`
}

// AddressReply carries the tag the server resolved the request to. Clients
// sign that tag.
type AddressReply struct {
	Tag     codec.Bytes   `json:"tag"`
	Address codec.Address `json:"address"`
	Bump    uint8         `json:"bump"`
}

func (j *JSONRPCServer) Address(_ *http.Request, args *TagArgs, reply *AddressReply) error {
	tag := j.tag(args.Tag)
	addr, bump, err := j.store.Address(tag)
	if err != nil {
		return err
	}
	reply.Tag = tag
	reply.Address = addr
	reply.Bump = bump
	return nil
}

type CounterReply struct {
	Tag     codec.Bytes     `json:"tag"`
	Address codec.Address   `json:"address"`
	Counter storage.Counter `json:"counter"`
}

func (j *JSONRPCServer) Get(req *http.Request, args *TagArgs, reply *CounterReply) error {
	tag := j.tag(args.Tag)
	c, err := j.store.Get(req.Context(), tag)
	if err != nil {
		return err
	}
	return j.fill(tag, c, reply)
}

// MutateArgs carries a credential signed over auth.Digest of the operation,
// the resolved tag, the count the requester read and the expiry.
type MutateArgs struct {
	Tag    codec.Bytes `json:"tag"`
	Count  uint64      `json:"count"`
	Expiry int64       `json:"expiry"`
	Auth   codec.Bytes `json:"auth"`
}

func (j *JSONRPCServer) Create(req *http.Request, args *MutateArgs, reply *CounterReply) error {
	ctx := req.Context()
	a, tag, err := j.authenticate(ctx, auth.OpCreate, args)
	if err != nil {
		return err
	}
	c, err := j.store.Create(ctx, tag, a.Actor(), a.Sponsor())
	if err != nil {
		return err
	}
	return j.fill(tag, c, reply)
}

func (j *JSONRPCServer) Increment(req *http.Request, args *MutateArgs, reply *CounterReply) error {
	ctx := req.Context()
	a, tag, err := j.authenticate(ctx, auth.OpIncrement, args)
	if err != nil {
		return err
	}
	c, err := j.store.Increment(ctx, tag, a.Actor(), counter.WithExpectedCount(args.Count))
	if err != nil {
		return err
	}
	return j.fill(tag, c, reply)
}

func (j *JSONRPCServer) Decrement(req *http.Request, args *MutateArgs, reply *CounterReply) error {
	ctx := req.Context()
	a, tag, err := j.authenticate(ctx, auth.OpDecrement, args)
	if err != nil {
		return err
	}
	c, err := j.store.Decrement(ctx, tag, a.Actor(), counter.WithExpectedCount(args.Count))
	if err != nil {
		return err
	}
	return j.fill(tag, c, reply)
}

// authenticate checks the credential in [args] and returns it with the tag
// it approves.
func (j *JSONRPCServer) authenticate(
	ctx context.Context,
	op auth.Operation,
	args *MutateArgs,
) (auth.Auth, []byte, error) {
	now := time.Now().UnixMilli()
	switch {
	case args.Expiry < now:
		return nil, nil, fmt.Errorf("%w: expiry=%d now=%d", ErrCredentialExpired, args.Expiry, now)
	case args.Expiry > now+j.window.Milliseconds():
		return nil, nil, fmt.Errorf("%w: expiry=%d now=%d", ErrExpiryTooFar, args.Expiry, now)
	}
	a, err := auth.Unmarshal(args.Auth)
	if err != nil {
		return nil, nil, err
	}
	tag := j.tag(args.Tag)
	msg, err := auth.Digest(op, tag, args.Count, args.Expiry)
	if err != nil {
		return nil, nil, err
	}
	if err := a.Verify(ctx, msg); err != nil {
		j.log.Debug("rejected credential",
			zap.Stringer("op", op),
			zap.Stringer("actor", a.Actor()),
			zap.Error(err),
		)
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
	return a, tag, nil
}

func (j *JSONRPCServer) tag(tag []byte) []byte {
	if len(tag) == 0 {
		return j.namespace
	}
	return tag
}

func (j *JSONRPCServer) fill(tag []byte, c *storage.Counter, reply *CounterReply) error {
	addr, _, err := j.store.Address(tag)
	if err != nil {
		return err
	}
	reply.Tag = tag
	reply.Address = addr
	reply.Counter = *c
	return nil
}
