// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeChunks(t *testing.T) {
	require := require.New(t)
	k := EncodeChunks([]byte{0x1, 0x2}, 3)
	require.Equal([]byte{0x1, 0x2, 0x0, 0x3}, k)
	require.True(Valid(k))

	chunks, ok := MaxChunks(k)
	require.True(ok)
	require.Equal(uint16(3), chunks)
}

func TestEncode(t *testing.T) {
	tests := []struct {
		size   int
		chunks uint16
	}{
		{size: 0, chunks: 0},
		{size: 1, chunks: 1},
		{size: 50, chunks: 1},
		{size: 64, chunks: 2},
		{size: 200, chunks: 4},
	}
	for _, tt := range tests {
		require := require.New(t)
		k, ok := Encode([]byte("k"), tt.size)
		require.True(ok)
		chunks, ok := MaxChunks(k)
		require.True(ok)
		require.Equal(tt.chunks, chunks, "size %d", tt.size)
	}
}

func TestVerifyValue(t *testing.T) {
	require := require.New(t)
	k := EncodeChunks([]byte("k"), 1)
	require.True(VerifyValue(k, make([]byte, 50)))
	require.False(VerifyValue(k, make([]byte, 64)))
	require.False(VerifyValue([]byte{0x1}, nil))
	require.False(Valid([]byte{0x1}))
}
