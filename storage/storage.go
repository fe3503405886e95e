// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/hypercounter/pebble"
	"github.com/ava-labs/hypercounter/redisdb"
	"github.com/ava-labs/hypercounter/sqlitedb"
	"github.com/ava-labs/hypercounter/state"
	"github.com/ava-labs/hypercounter/utils"
)

const (
	MemoryBackend = "memory"
	PebbleBackend = "pebble"
	SQLiteBackend = "sqlite"
	RedisBackend  = "redis"

	stateNamespace = "statedb"
)

type DatabaseConfig struct {
	Backend      string        `json:"backend"`
	Directory    string        `json:"directory"`
	RedisAddress string        `json:"redisAddress"`
	Pebble       pebble.Config `json:"pebble"`
}

func NewDefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Backend: MemoryBackend,
		Pebble:  pebble.NewDefaultConfig(),
	}
}

// New opens the backend selected by [cfg]. The returned gatherer is nil for
// backends that export no metrics of their own.
func New(ctx context.Context, cfg DatabaseConfig) (state.Database, prometheus.Gatherer, error) {
	switch cfg.Backend {
	case MemoryBackend, "":
		return state.NewMemoryDatabase(), nil, nil
	case PebbleBackend:
		path, err := utils.InitSubDirectory(cfg.Directory, stateNamespace)
		if err != nil {
			return nil, nil, err
		}
		db, registry, err := pebble.New(path, cfg.Pebble)
		if err != nil {
			return nil, nil, err
		}
		return db, registry, nil
	case SQLiteBackend:
		path, err := utils.InitSubDirectory(cfg.Directory, stateNamespace)
		if err != nil {
			return nil, nil, err
		}
		db, err := sqlitedb.New(filepath.Join(path, "counter.sqlite"))
		if err != nil {
			return nil, nil, err
		}
		return db, nil, nil
	case RedisBackend:
		db, err := redisdb.Dial(ctx, cfg.RedisAddress)
		if err != nil {
			return nil, nil, err
		}
		return db, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
