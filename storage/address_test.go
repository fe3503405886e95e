// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercounter/consts"
)

func TestFindCounterAddressDeterministic(t *testing.T) {
	require := require.New(t)

	addr, bump, err := FindCounterAddress(consts.DefaultTag)
	require.NoError(err)
	require.Equal(CounterAddressTypeID, addr.TypeID())

	addr2, bump2, err := FindCounterAddress(consts.DefaultTag)
	require.NoError(err)
	require.Equal(addr, addr2)
	require.Equal(bump, bump2)

	// The stored bump alone re-derives the address.
	require.NoError(VerifyCounterAddress(consts.DefaultTag, bump, addr))
}

func TestFindCounterAddressDistinctTags(t *testing.T) {
	require := require.New(t)
	seen := make(map[string]bool)
	for _, tag := range []string{"", "counter", "a", "b", "counter-2"} {
		addr, _, err := FindCounterAddress([]byte(tag))
		require.NoError(err)
		require.False(seen[addr.String()], "collision for %q", tag)
		seen[addr.String()] = true
	}
}

func TestFindCounterAddressSkipsOnCurve(t *testing.T) {
	require := require.New(t)
	addr, bump, err := FindCounterAddress([]byte("counter"))
	require.NoError(err)
	// Every bump above the chosen one must have landed on the curve.
	for b := int(bump) + 1; b <= int(consts.MaxUint8); b++ {
		_, err := CreateCounterAddress([]byte("counter"), uint8(b))
		require.ErrorIs(err, ErrBumpOnCurve)
	}
	require.False(onCurve(addr[1:]))
}

func TestVerifyCounterAddressMismatch(t *testing.T) {
	require := require.New(t)
	addr, bump, err := FindCounterAddress([]byte("a"))
	require.NoError(err)

	err = VerifyCounterAddress([]byte("b"), bump, addr)
	require.Error(err)

	_, err = CreateCounterAddress(make([]byte, consts.MaxTagLen+1), 0)
	require.ErrorIs(err, ErrTagTooLarge)
}
