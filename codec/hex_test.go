// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHex(t *testing.T) {
	require := require.New(t)

	require.Equal("00ff10", ToHex([]byte{0x00, 0xff, 0x10}))

	b, err := LoadHex("0x00ff10", 3)
	require.NoError(err)
	require.Equal([]byte{0x00, 0xff, 0x10}, b)

	_, err = LoadHex("00ff10", 2)
	require.ErrorIs(err, ErrInvalidSize)

	_, err = LoadHex("zz", -1)
	require.Error(err)
}

func TestBytesText(t *testing.T) {
	require := require.New(t)

	text, err := Bytes("tag").MarshalText()
	require.NoError(err)
	require.Equal("746167", string(text))

	var b Bytes
	require.NoError(b.UnmarshalText(text))
	require.Equal(Bytes("tag"), b)
}
