// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"crypto/sha256"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToID(t *testing.T) {
	require := require.New(t)
	b := []byte("counter")
	id := ToID(b)
	require.Equal(sha256.Sum256(b), [32]byte(id))
	require.Equal(id, ToID(b))
	require.NotEqual(id, ToID([]byte("other")))
}

func TestInitSubDirectory(t *testing.T) {
	require := require.New(t)
	p, err := InitSubDirectory(t.TempDir(), "db")
	require.NoError(err)
	info, err := os.Stat(p)
	require.NoError(err)
	require.True(info.IsDir())
}
