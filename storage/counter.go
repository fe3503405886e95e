// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/near/borsh-go"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
	"github.com/ava-labs/hypercounter/keys"
	"github.com/ava-labs/hypercounter/state"
)

// State
// 0x0/ (counter)
//   -> [counter address] => discriminator | borsh(Counter)

const (
	counterPrefix byte = 0x0

	CounterChunks uint16 = 1

	DiscriminatorLen = 8
	// RecordSize is the exact encoded size of a counter record.
	RecordSize = DiscriminatorLen + codec.AddressLen + consts.Uint64Len + consts.Uint8Len
)

// CounterDiscriminator prefixes every encoded record so that a value written
// under the counter prefix by anything else is never mistaken for one.
var CounterDiscriminator = func() [DiscriminatorLen]byte {
	h := hashing.ComputeHash256Array([]byte("account:Counter"))
	var d [DiscriminatorLen]byte
	copy(d[:], h[:DiscriminatorLen])
	return d
}()

// Counter is the persisted record.
type Counter struct {
	Authority codec.Address `json:"authority"`
	Count     uint64        `json:"count"`
	Bump      uint8         `json:"bump"`
}

// [counterPrefix] + [address] + [chunks]
func CounterKey(addr codec.Address) []byte {
	k := make([]byte, 0, consts.ByteLen+codec.AddressLen)
	k = append(k, counterPrefix)
	k = append(k, addr[:]...)
	return keys.EncodeChunks(k, CounterChunks)
}

func MarshalCounter(c *Counter) ([]byte, error) {
	body, err := borsh.Serialize(*c)
	if err != nil {
		return nil, err
	}
	b := make([]byte, 0, RecordSize)
	b = append(b, CounterDiscriminator[:]...)
	b = append(b, body...)
	if len(b) != RecordSize {
		return nil, fmt.Errorf("%w: encoded %d bytes, want %d", ErrInvalidRecord, len(b), RecordSize)
	}
	return b, nil
}

func UnmarshalCounter(b []byte) (*Counter, error) {
	if len(b) != RecordSize {
		return nil, fmt.Errorf("%w: size %d != %d", ErrInvalidRecord, len(b), RecordSize)
	}
	if !bytes.Equal(b[:DiscriminatorLen], CounterDiscriminator[:]) {
		return nil, ErrInvalidDiscriminator
	}
	c := new(Counter)
	if err := borsh.Deserialize(c, b[DiscriminatorLen:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return c, nil
}

// GetCounter returns the record stored at [addr]. If no record exists the
// returned bool is false and the error is nil.
func GetCounter(
	ctx context.Context,
	im state.Immutable,
	addr codec.Address,
) (*Counter, bool, error) {
	v, err := im.GetValue(ctx, CounterKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	c, err := UnmarshalCounter(v)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func SetCounter(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	c *Counter,
) error {
	k := CounterKey(addr)
	v, err := MarshalCounter(c)
	if err != nil {
		return err
	}
	if !keys.VerifyValue(k, v) {
		return fmt.Errorf("%w: value exceeds %d chunks", ErrInvalidRecord, CounterChunks)
	}
	return mu.Insert(ctx, k, v)
}

// SwapCounter writes [next] at [addr] only if the stored record still encodes
// to [prev]. A nil [prev] requires that no record exists.
func SwapCounter(
	ctx context.Context,
	sw state.Swapper,
	addr codec.Address,
	prev *Counter,
	next *Counter,
) (bool, error) {
	k := CounterKey(addr)
	v, err := MarshalCounter(next)
	if err != nil {
		return false, err
	}
	if !keys.VerifyValue(k, v) {
		return false, fmt.Errorf("%w: value exceeds %d chunks", ErrInvalidRecord, CounterChunks)
	}
	var old []byte
	if prev != nil {
		old, err = MarshalCounter(prev)
		if err != nil {
			return false, err
		}
	}
	return sw.CompareAndSwap(ctx, k, old, v)
}
