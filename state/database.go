// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
)

var _ Database = (*KVDatabase)(nil)

// KVDatabase exposes an avalanchego key-value database as state.
type KVDatabase struct {
	// swapL orders CompareAndSwap against other swaps on this database.
	swapL sync.Mutex
	db    database.Database
}

func NewKVDatabase(db database.Database) *KVDatabase {
	return &KVDatabase{db: db}
}

// NewMemoryDatabase returns state held entirely in memory. Values are lost
// on Close.
func NewMemoryDatabase() *KVDatabase {
	return NewKVDatabase(memdb.New())
}

func (k *KVDatabase) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return k.db.Get(key)
}

func (k *KVDatabase) Insert(_ context.Context, key []byte, value []byte) error {
	return k.db.Put(key, value)
}

func (k *KVDatabase) Remove(_ context.Context, key []byte) error {
	return k.db.Delete(key)
}

func (k *KVDatabase) CompareAndSwap(_ context.Context, key []byte, old []byte, value []byte) (bool, error) {
	k.swapL.Lock()
	defer k.swapL.Unlock()

	cur, err := k.db.Get(key)
	switch {
	case errors.Is(err, database.ErrNotFound):
		if old != nil {
			return false, nil
		}
	case err != nil:
		return false, err
	case old == nil || !bytes.Equal(cur, old):
		return false, nil
	}
	return true, k.db.Put(key, value)
}

func (k *KVDatabase) Close() error {
	return k.db.Close()
}
