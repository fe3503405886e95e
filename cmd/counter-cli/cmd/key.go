// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava-labs/hypercounter/auth"
	"github.com/ava-labs/hypercounter/cli/prompt"
	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/crypto/ed25519"
	"github.com/ava-labs/hypercounter/utils"
)

var (
	keyOut   string
	keyForce bool
)

var keyCmd = &cobra.Command{
	Use: "key",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var genKeyCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an ed25519 key and write it to --out",
	RunE: func(*cobra.Command, []string) error {
		if len(keyOut) == 0 {
			return ErrInvalidArgs
		}
		if !keyForce {
			exists, err := fileExists(keyOut)
			if err != nil {
				return err
			}
			if exists {
				utils.Outf("{{yellow}}%s already exists{{/}}\n", keyOut)
				cont, err := prompt.Continue()
				if err != nil {
					return err
				}
				if !cont {
					return ErrKeyExists
				}
			}
		}
		addr, err := generateKey(keyOut)
		if err != nil {
			return err
		}
		utils.Outf("{{green}}created key:{{/}} %s {{green}}address:{{/}} %s\n", keyOut, addr)
		return nil
	},
}

var addressKeyCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the principal address of --key",
	RunE: func(*cobra.Command, []string) error {
		p, err := currentProfile()
		if err != nil {
			return err
		}
		factory, err := p.Factory()
		if err != nil {
			return err
		}
		utils.Outf("{{green}}address:{{/}} %s\n", factory.Address())
		return nil
	},
}

func generateKey(path string) (codec.Address, error) {
	priv, err := ed25519.GeneratePrivateKey()
	if err != nil {
		return codec.EmptyAddress, err
	}
	if err := priv.Save(path); err != nil {
		return codec.EmptyAddress, err
	}
	return auth.NewED25519Address(priv.PublicKey()), nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
