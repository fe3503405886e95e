// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package redisdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/redis/go-redis/v9"

	"github.com/ava-labs/hypercounter/state"
)

var _ state.Database = (*Database)(nil)

// DefaultPrefix namespaces every key written by this process.
const DefaultPrefix = "hypercounter:"

// Database stores counter state as plain redis strings. CompareAndSwap runs
// as a server-side script, so processes sharing one redis never overwrite
// each other's writes.
type Database struct {
	client *redis.Client
	prefix string
}

// New wraps an existing client. The client is closed by Close.
func New(client *redis.Client, prefix string) *Database {
	return &Database{client: client, prefix: prefix}
}

// Dial connects to the redis server at [addr] and checks it is reachable.
func Dial(ctx context.Context, addr string) (*Database, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return New(client, DefaultPrefix), nil
}

// swapScript sets KEYS[1] to ARGV[3] if it still holds ARGV[2]. ARGV[1] is
// "1" when a value is expected and "0" when the key must be absent. Returns
// 1 on swap and 0 on mismatch.
var swapScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if ARGV[1] == "1" then
    if current ~= ARGV[2] then
        return 0
    end
elseif current then
    return 0
end
redis.call("SET", KEYS[1], ARGV[3])
return 1
`)

func (d *Database) key(k []byte) string {
	return d.prefix + string(k)
}

func (d *Database) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	v, err := d.client.Get(ctx, d.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (d *Database) Insert(ctx context.Context, key []byte, value []byte) error {
	return d.client.Set(ctx, d.key(key), value, 0).Err()
}

func (d *Database) Remove(ctx context.Context, key []byte) error {
	return d.client.Del(ctx, d.key(key)).Err()
}

func (d *Database) CompareAndSwap(ctx context.Context, key []byte, old []byte, value []byte) (bool, error) {
	expect := "1"
	if old == nil {
		expect, old = "0", []byte{}
	}
	if value == nil {
		value = []byte{}
	}
	swapped, err := swapScript.Run(ctx, d.client, []string{d.key(key)}, expect, old, value).Int()
	if err != nil {
		return false, fmt.Errorf("redis swap: %w", err)
	}
	return swapped == 1, nil
}

func (d *Database) Close() error {
	return d.client.Close()
}
