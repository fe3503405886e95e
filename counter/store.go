// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
	"github.com/ava-labs/hypercounter/lockmap"
	"github.com/ava-labs/hypercounter/state"
	"github.com/ava-labs/hypercounter/storage"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

const (
	opCreate    = "create"
	opIncrement = "increment"
	opDecrement = "decrement"
	opGet       = "get"
)

type Config struct {
	LockMapSize      int `json:"lockMapSize"`
	AddressCacheSize int `json:"addressCacheSize"`
}

func NewDefaultConfig() Config {
	return Config{
		LockMapSize:      16,
		AddressCacheSize: 1_024,
	}
}

type derivedAddress struct {
	addr codec.Address
	bump uint8
}

// Store owns counter records. Every record is addressed by a namespace tag
// and every mutation of a record runs under that record's write lock. If the
// backend is a state.Swapper, writes are also compare-and-swapped against
// the record that was read, so stores sharing one backend never lose an
// update.
type Store struct {
	log     logging.Logger
	db      state.Mutable
	locks   *lockmap.Lockmap
	metrics *metrics

	addrs *cache.LRU[string, derivedAddress]
}

func New(
	log logging.Logger,
	db state.Mutable,
	registerer prometheus.Registerer,
	cfg Config,
) (*Store, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &Store{
		log:     log,
		db:      db,
		locks:   lockmap.New(cfg.LockMapSize),
		metrics: m,
		addrs:   &cache.LRU[string, derivedAddress]{Size: cfg.AddressCacheSize},
	}, nil
}

func normalizeTag(tag []byte) []byte {
	if len(tag) == 0 {
		return consts.DefaultTag
	}
	return tag
}

// Address returns the record address for [tag] and the bump that derives
// it. An empty tag means consts.DefaultTag.
func (s *Store) Address(tag []byte) (codec.Address, uint8, error) {
	tag = normalizeTag(tag)
	if d, ok := s.addrs.Get(string(tag)); ok {
		return d.addr, d.bump, nil
	}
	addr, bump, err := storage.FindCounterAddress(tag)
	if err != nil {
		return codec.EmptyAddress, 0, err
	}
	s.addrs.Put(string(tag), derivedAddress{addr: addr, bump: bump})
	return addr, bump, nil
}

// Get returns the counter for [tag].
func (s *Store) Get(ctx context.Context, tag []byte) (*storage.Counter, error) {
	tag = normalizeTag(tag)
	addr, _, err := s.Address(tag)
	if err != nil {
		return nil, err
	}
	key := string(storage.CounterKey(addr))
	s.locks.RLock(key)
	defer s.locks.RUnlock(key)

	c, err := s.load(ctx, tag, addr)
	s.metrics.observe(opGet, err)
	return c, err
}

// Create allocates the counter for [tag] owned by [requester]. [payer] funds
// the allocation; an empty payer means the requester pays.
func (s *Store) Create(
	ctx context.Context,
	tag []byte,
	requester codec.Address,
	payer codec.Address,
) (*storage.Counter, error) {
	c, err := s.create(ctx, normalizeTag(tag), requester, payer)
	s.metrics.observe(opCreate, err)
	return c, err
}

func (s *Store) create(
	ctx context.Context,
	tag []byte,
	requester codec.Address,
	payer codec.Address,
) (*storage.Counter, error) {
	if requester == codec.EmptyAddress {
		return nil, ErrInvalidRequester
	}
	if payer == codec.EmptyAddress {
		payer = requester
	}
	addr, bump, err := s.Address(tag)
	if err != nil {
		return nil, err
	}
	key := string(storage.CounterKey(addr))
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	_, exists, err := s.read(ctx, addr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: address=%s", ErrAlreadyExists, addr)
	}

	c := &storage.Counter{
		Authority: requester,
		Count:     0,
		Bump:      bump,
	}
	ok, err := s.write(ctx, addr, nil, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.conflicts.Inc()
		return nil, fmt.Errorf("%w: address=%s", ErrAlreadyExists, addr)
	}
	s.metrics.created.Inc()
	s.log.Info("counter created",
		zap.ByteString("tag", tag),
		zap.Stringer("address", addr),
		zap.Stringer("authority", requester),
		zap.Stringer("payer", payer),
		zap.Uint8("bump", bump),
	)
	return c, nil
}

// MutateOption restricts when a mutation applies.
type MutateOption func(*mutateOptions)

type mutateOptions struct {
	expectCount *uint64
}

// WithExpectedCount rejects the mutation with ErrStaleCount unless the
// stored count equals [count] when the mutation runs.
func WithExpectedCount(count uint64) MutateOption {
	return func(o *mutateOptions) {
		o.expectCount = &count
	}
}

// Increment adds one to the counter for [tag].
func (s *Store) Increment(
	ctx context.Context,
	tag []byte,
	requester codec.Address,
	opts ...MutateOption,
) (*storage.Counter, error) {
	c, err := s.mutate(ctx, opIncrement, normalizeTag(tag), requester, opts, func(c *storage.Counter) error {
		next, err := smath.Add64(c.Count, 1)
		if err != nil {
			return fmt.Errorf("%w: count=%d", ErrOverflow, c.Count)
		}
		c.Count = next
		return nil
	})
	s.metrics.observe(opIncrement, err)
	return c, err
}

// Decrement subtracts one from the counter for [tag]. A counter at zero is
// left at zero and ErrUnderflow is returned.
func (s *Store) Decrement(
	ctx context.Context,
	tag []byte,
	requester codec.Address,
	opts ...MutateOption,
) (*storage.Counter, error) {
	c, err := s.mutate(ctx, opDecrement, normalizeTag(tag), requester, opts, func(c *storage.Counter) error {
		next, err := smath.Sub(c.Count, 1)
		if err != nil {
			return ErrUnderflow
		}
		c.Count = next
		return nil
	})
	s.metrics.observe(opDecrement, err)
	return c, err
}

// mutate runs [apply] on a copy of the stored record and writes it back only
// if [apply] succeeds. A write that loses a swap to another store sharing
// the backend is retried against the fresh record.
func (s *Store) mutate(
	ctx context.Context,
	op string,
	tag []byte,
	requester codec.Address,
	opts []MutateOption,
	apply func(*storage.Counter) error,
) (*storage.Counter, error) {
	o := &mutateOptions{}
	for _, opt := range opts {
		opt(o)
	}
	addr, _, err := s.Address(tag)
	if err != nil {
		return nil, err
	}
	key := string(storage.CounterKey(addr))
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	for {
		c, err := s.load(ctx, tag, addr)
		if err != nil {
			return nil, err
		}
		if c.Authority != requester {
			s.log.Warn("unauthorized counter mutation",
				zap.String("op", op),
				zap.Stringer("address", addr),
				zap.Stringer("requester", requester),
			)
			return nil, fmt.Errorf("%w: requester=%s", ErrUnauthorized, requester)
		}
		if o.expectCount != nil && *o.expectCount != c.Count {
			return nil, fmt.Errorf("%w: expected=%d count=%d", ErrStaleCount, *o.expectCount, c.Count)
		}

		next := *c
		if err := apply(&next); err != nil {
			return nil, err
		}
		ok, err := s.write(ctx, addr, c, &next)
		if err != nil {
			return nil, err
		}
		if ok {
			s.log.Debug("counter updated",
				zap.String("op", op),
				zap.Stringer("address", addr),
				zap.Uint64("count", next.Count),
			)
			return &next, nil
		}
		s.metrics.conflicts.Inc()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

// write stores [next] at [addr]. If the backend can swap, the write only
// lands if the stored record still equals [prev] (nil meaning absent) and
// the returned bool reports whether it did.
func (s *Store) write(ctx context.Context, addr codec.Address, prev *storage.Counter, next *storage.Counter) (bool, error) {
	sw, ok := s.db.(state.Swapper)
	if !ok {
		return true, storage.SetCounter(ctx, s.db, addr, next)
	}
	return storage.SwapCounter(ctx, sw, addr, prev, next)
}

// load reads the record at [addr] and checks that its stored bump still
// derives [addr] from [tag]. Callers hold the record lock.
func (s *Store) load(ctx context.Context, tag []byte, addr codec.Address) (*storage.Counter, error) {
	c, exists, err := s.read(ctx, addr)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: address=%s", ErrNotFound, addr)
	}
	if err := storage.VerifyCounterAddress(tag, c.Bump, addr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return c, nil
}

// read separates records that fail to decode, which are domain errors, from
// backend failures, which are returned as is.
func (s *Store) read(ctx context.Context, addr codec.Address) (*storage.Counter, bool, error) {
	c, exists, err := storage.GetCounter(ctx, s.db, addr)
	switch {
	case err == nil:
		return c, exists, nil
	case errors.Is(err, storage.ErrInvalidRecord), errors.Is(err, storage.ErrInvalidDiscriminator):
		return nil, false, fmt.Errorf("%w: address=%s: %w", ErrInvalidRecord, addr, err)
	default:
		return nil, false, fmt.Errorf("read counter %s: %w", addr, err)
	}
}
