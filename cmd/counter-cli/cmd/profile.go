// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/ava-labs/hypercounter/auth"
	"github.com/ava-labs/hypercounter/cli/prompt"
	"github.com/ava-labs/hypercounter/crypto/ed25519"
	"github.com/ava-labs/hypercounter/rpc"
)

// Profile holds client defaults so they need not be repeated on every call.
//
//	endpoint: http://127.0.0.1:9650
//	key: ./owner.key
//	tag: counter
type Profile struct {
	Endpoint string `yaml:"endpoint"`
	Key      string `yaml:"key"`
	Tag      string `yaml:"tag"`
}

func unmarshalProfile(b []byte) (*Profile, error) {
	p := &Profile{}
	if err := yaml.UnmarshalStrict(b, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := prompt.ValidateTag(p.Tag); err != nil {
		return nil, fmt.Errorf("invalid profile tag: %w", err)
	}
	return p, nil
}

// loadProfile reads the profile at [path]. A missing file is an empty
// profile only when [optional] is set.
func loadProfile(path string, optional bool) (*Profile, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && optional {
		return &Profile{}, nil
	}
	if err != nil {
		return nil, err
	}
	return unmarshalProfile(b)
}

// override replaces profile values with any non-empty flag values.
func (p *Profile) override(endpoint, key, tag string) {
	if len(endpoint) > 0 {
		p.Endpoint = endpoint
	}
	if len(key) > 0 {
		p.Key = key
	}
	if len(tag) > 0 {
		p.Tag = tag
	}
}

func (p *Profile) Client() (*rpc.JSONRPCClient, error) {
	if len(p.Endpoint) == 0 {
		return nil, ErrMissingEndpoint
	}
	return rpc.NewJSONRPCClient(p.Endpoint), nil
}

func (p *Profile) Factory() (*auth.ED25519Factory, error) {
	if len(p.Key) == 0 {
		return nil, ErrMissingKey
	}
	priv, err := ed25519.LoadKey(p.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to load key %s: %w", p.Key, err)
	}
	return auth.NewED25519Factory(priv), nil
}

func (p *Profile) TagBytes() []byte {
	return []byte(p.Tag)
}

// currentProfile resolves the profile named by --profile and applies flag
// overrides. The default profile path may be absent.
func currentProfile() (*Profile, error) {
	optional := !rootCmd.PersistentFlags().Changed("profile")
	p, err := loadProfile(profilePath, optional)
	if err != nil {
		return nil, err
	}
	p.override(endpoint, keyPath, tag)
	if err := prompt.ValidateTag(p.Tag); err != nil {
		return nil, err
	}
	return p, nil
}
