// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/profiler"

	"github.com/ava-labs/hypercounter/counter"
	"github.com/ava-labs/hypercounter/pebble"
	"github.com/ava-labs/hypercounter/rpc"
	"github.com/ava-labs/hypercounter/server"
	"github.com/ava-labs/hypercounter/storage"
)

const (
	defaultHTTPHost                    = "127.0.0.1"
	defaultHTTPPort                    = 9650
	defaultShutdownTimeout             = 10 * time.Second
	defaultReadHeaderTimeout           = 30 * time.Second
	defaultContinuousProfilerFrequency = 1 * time.Minute
	defaultContinuousProfilerMaxFiles  = 10
)

var (
	ErrInvalidPort         = errors.New("invalid http port")
	ErrMissingDatabasePath = errors.New("database path required")
	ErrMissingRedisAddress = errors.New("redis address required")

	ErrInvalidCredentialWindow = errors.New("invalid credential window")
)

type Config struct {
	// Logging
	LogLevel logging.Level `json:"logLevel"`

	// Database
	DatabaseBackend string        `json:"databaseBackend"`
	DatabasePath    string        `json:"databasePath"`
	RedisAddress    string        `json:"redisAddress"`
	Pebble          pebble.Config `json:"pebble"`

	// API
	HTTPHost        string            `json:"httpHost"`
	HTTPPort        uint16            `json:"httpPort"`
	HTTPConfig      server.HTTPConfig `json:"httpConfig"`
	AllowedOrigins  []string          `json:"allowedOrigins"`
	AllowedHosts    []string          `json:"allowedHosts"`
	ShutdownTimeout time.Duration     `json:"shutdownTimeout"`

	// Counter
	Namespace        string        `json:"namespace"`
	LockMapSize      int           `json:"lockMapSize"`
	AddressCacheSize int           `json:"addressCacheSize"`
	CredentialWindow time.Duration `json:"credentialWindow"`

	// Metrics
	MetricsEnabled bool `json:"metricsEnabled"`

	// Profiling
	ContinuousProfilerDir string `json:"continuousProfilerDir"`
}

func New(b []byte) (*Config, error) {
	c := &Config{}
	c.setDefault()
	if len(b) > 0 {
		if err := json.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", string(b), err)
		}
	}
	if err := c.verify(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads a JSON config from [path]. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if len(path) == 0 {
		return New(nil)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(b)
}

func (c *Config) setDefault() {
	dbConfig := storage.NewDefaultDatabaseConfig()
	c.LogLevel = logging.Info
	c.DatabaseBackend = dbConfig.Backend
	c.Pebble = dbConfig.Pebble
	c.HTTPHost = defaultHTTPHost
	c.HTTPPort = defaultHTTPPort
	c.HTTPConfig = server.HTTPConfig{ReadHeaderTimeout: defaultReadHeaderTimeout}
	c.AllowedOrigins = []string{"*"}
	c.AllowedHosts = []string{"localhost"}
	c.ShutdownTimeout = defaultShutdownTimeout
	counterConfig := counter.NewDefaultConfig()
	c.LockMapSize = counterConfig.LockMapSize
	c.AddressCacheSize = counterConfig.AddressCacheSize
	c.CredentialWindow = rpc.DefaultCredentialWindow
	c.MetricsEnabled = true
}

func (c *Config) verify() error {
	if c.HTTPPort == 0 {
		return ErrInvalidPort
	}
	if c.CredentialWindow <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCredentialWindow, c.CredentialWindow)
	}
	switch c.DatabaseBackend {
	case storage.PebbleBackend, storage.SQLiteBackend:
		if len(c.DatabasePath) == 0 {
			return fmt.Errorf("%w: backend=%s", ErrMissingDatabasePath, c.DatabaseBackend)
		}
	case storage.RedisBackend:
		if len(c.RedisAddress) == 0 {
			return ErrMissingRedisAddress
		}
	case storage.MemoryBackend:
	default:
		return fmt.Errorf("%w: %q", storage.ErrUnknownBackend, c.DatabaseBackend)
	}
	return nil
}

func (c *Config) GetLogLevel() logging.Level { return c.LogLevel }
func (c *Config) GetHTTPAddress() string {
	return net.JoinHostPort(c.HTTPHost, strconv.Itoa(int(c.HTTPPort)))
}
func (c *Config) GetNamespace() []byte { return []byte(c.Namespace) }

func (c *Config) GetDatabaseConfig() storage.DatabaseConfig {
	return storage.DatabaseConfig{
		Backend:      c.DatabaseBackend,
		Directory:    c.DatabasePath,
		RedisAddress: c.RedisAddress,
		Pebble:       c.Pebble,
	}
}

func (c *Config) GetCounterConfig() counter.Config {
	return counter.Config{
		LockMapSize:      c.LockMapSize,
		AddressCacheSize: c.AddressCacheSize,
	}
}

func (c *Config) GetCredentialWindow() time.Duration { return c.CredentialWindow }

func (c *Config) GetContinuousProfilerConfig() *profiler.Config {
	if len(c.ContinuousProfilerDir) == 0 {
		return &profiler.Config{Enabled: false}
	}
	return &profiler.Config{
		Enabled:     true,
		Dir:         c.ContinuousProfilerDir,
		Freq:        defaultContinuousProfilerFrequency,
		MaxNumFiles: defaultContinuousProfilerMaxFiles,
	}
}
