// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercounter/auth"
	"github.com/ava-labs/hypercounter/cli/prompt"
	"github.com/ava-labs/hypercounter/crypto/ed25519"
)

func TestUnmarshalProfile(t *testing.T) {
	require := require.New(t)

	p, err := unmarshalProfile([]byte(`
endpoint: http://127.0.0.1:9650
key: ./owner.key
tag: votes
`))
	require.NoError(err)
	require.Equal("http://127.0.0.1:9650", p.Endpoint)
	require.Equal("./owner.key", p.Key)
	require.Equal([]byte("votes"), p.TagBytes())

	_, err = unmarshalProfile([]byte("endpoint: [unterminated"))
	require.Error(err)

	_, err = unmarshalProfile([]byte("unknown: field"))
	require.Error(err)

	_, err = unmarshalProfile([]byte("tag: " + strings.Repeat("a", 33)))
	require.ErrorIs(err, prompt.ErrInputTooLarge)
}

func TestLoadProfile(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.yaml")

	p, err := loadProfile(missing, true)
	require.NoError(err)
	require.Equal(&Profile{}, p)

	_, err = loadProfile(missing, false)
	require.ErrorIs(err, os.ErrNotExist)

	path := filepath.Join(dir, "profile.yaml")
	require.NoError(os.WriteFile(path, []byte("endpoint: http://localhost:9650\n"), fsModeWrite))
	p, err = loadProfile(path, false)
	require.NoError(err)
	require.Equal("http://localhost:9650", p.Endpoint)
}

func TestProfileOverride(t *testing.T) {
	require := require.New(t)

	p := &Profile{Endpoint: "http://a", Key: "a.key", Tag: "a"}
	p.override("", "b.key", "")
	require.Equal(&Profile{Endpoint: "http://a", Key: "b.key", Tag: "a"}, p)
	p.override("http://c", "", "c")
	require.Equal(&Profile{Endpoint: "http://c", Key: "b.key", Tag: "c"}, p)
}

func TestProfileFactory(t *testing.T) {
	require := require.New(t)

	_, err := (&Profile{}).Factory()
	require.ErrorIs(err, ErrMissingKey)
	_, err = (&Profile{}).Client()
	require.ErrorIs(err, ErrMissingEndpoint)

	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	path := filepath.Join(t.TempDir(), "owner.key")
	require.NoError(priv.Save(path))

	factory, err := (&Profile{Key: path}).Factory()
	require.NoError(err)
	require.Equal(auth.NewED25519Address(priv.PublicKey()), factory.Address())
}
