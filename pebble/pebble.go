// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/hypercounter/state"
)

var _ state.Database = (*Database)(nil)

type Config struct {
	CacheSize                   int64  `json:"cacheSize"`
	BytesPerSync                int    `json:"bytesPerSync"`
	WALBytesPerSync             int    `json:"walBytesPerSync"`
	MemTableStopWritesThreshold int    `json:"memTableStopWritesThreshold"`
	MemTableSize                uint64 `json:"memTableSize"`
	MaxOpenFiles                int    `json:"maxOpenFiles"`
	ConcurrentCompactions       int    `json:"concurrentCompactions"`
	Sync                        bool   `json:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   64 * 1024 * 1024,
		BytesPerSync:                1024 * 1024,
		WALBytesPerSync:             1024 * 1024,
		MemTableStopWritesThreshold: 8,
		MemTableSize:                16 * 1024 * 1024,
		MaxOpenFiles:                1_024,
		ConcurrentCompactions:       1,
		Sync:                        true,
	}
}

// Database stores counter state in a pebble LSM on local disk.
type Database struct {
	db           *pebble.DB
	writeOptions *pebble.WriteOptions

	metrics *metrics

	// swapL orders CompareAndSwap calls. The directory lock keeps other
	// processes out.
	swapL sync.Mutex

	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func New(file string, cfg Config) (*Database, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	d := &Database{
		metrics: metrics,
		closing: make(chan struct{}),
	}
	if cfg.Sync {
		d.writeOptions = pebble.Sync
	} else {
		d.writeOptions = pebble.NoSync
	}

	cache := pebble.NewCache(cfg.CacheSize)
	defer cache.Unref()
	opts := &pebble.Options{
		Cache:                       cache,
		BytesPerSync:                cfg.BytesPerSync,
		Comparer:                    pebble.DefaultComparer,
		WALBytesPerSync:             cfg.WALBytesPerSync,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MemTableSize:                cfg.MemTableSize,
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions:    func() int { return cfg.ConcurrentCompactions },
		EventListener: &pebble.EventListener{
			CompactionBegin: d.onCompactionBegin,
			CompactionEnd:   d.onCompactionEnd,
			WriteStallBegin: d.onWriteStallBegin,
			WriteStallEnd:   d.onWriteStallEnd,
		},
	}
	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}
	d.db = db

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.collectMetrics()
	}()
	return d, registry, nil
}

func (db *Database) GetValue(_ context.Context, key []byte) ([]byte, error) {
	start := time.Now()
	defer func() {
		db.metrics.getLatency.Observe(float64(time.Since(start)))
	}()

	v, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return slices.Clone(v), nil
}

func (db *Database) Insert(_ context.Context, key []byte, value []byte) error {
	return db.db.Set(key, value, db.writeOptions)
}

func (db *Database) Remove(_ context.Context, key []byte) error {
	return db.db.Delete(key, db.writeOptions)
}

func (db *Database) CompareAndSwap(ctx context.Context, key []byte, old []byte, value []byte) (bool, error) {
	db.swapL.Lock()
	defer db.swapL.Unlock()

	cur, err := db.GetValue(ctx, key)
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
	return true, db.db.Set(key, value, db.writeOptions)
}

func (db *Database) Close() error {
	var err error
	db.closeOnce.Do(func() {
		close(db.closing)
		db.wg.Wait()
		err = db.db.Close()
	})
	return err
}
