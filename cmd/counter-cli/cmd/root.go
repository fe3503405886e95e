// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "counter-cli" implements the counter client and server interface.
package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

const (
	requestTimeout = 30 * time.Second
	fsModeWrite    = 0o600
	profileFile    = "counter-cli.yaml"
)

var (
	workDir string

	profilePath string
	endpoint    string
	keyPath     string
	tag         string
	logLevel    string
	logDir      string

	rootCmd = &cobra.Command{
		Use:        "counter-cli",
		Short:      "Authenticated counter CLI",
		SuggestFor: []string{"counter-cli", "countercli"},
	}
)

func init() {
	p, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	workDir = p

	cobra.EnablePrefixMatching = true
	rootCmd.SilenceUsage = true
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.AddCommand(
		keyCmd,
		serveCmd,

		addressCmd,
		getCmd,
		createCmd,
		incrementCmd,
		decrementCmd,
		initOrGetCmd,
	)

	rootCmd.PersistentFlags().StringVar(
		&profilePath,
		"profile",
		filepath.Join(workDir, profileFile),
		"yaml profile with endpoint, key and tag",
	)
	rootCmd.PersistentFlags().StringVar(
		&endpoint,
		"endpoint",
		"",
		"counter server URI (overrides profile)",
	)
	rootCmd.PersistentFlags().StringVar(
		&keyPath,
		"key",
		"",
		"ed25519 private key file (overrides profile)",
	)
	rootCmd.PersistentFlags().StringVar(
		&tag,
		"tag",
		"",
		"counter namespace tag (overrides profile)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		"info",
		"log level",
	)
	rootCmd.PersistentFlags().StringVar(
		&logDir,
		"log-dir",
		filepath.Join(workDir, ".counter-cli", "logs"),
		"directory for rotated log files",
	)

	// key
	keyCmd.AddCommand(
		genKeyCmd,
		addressKeyCmd,
	)
	genKeyCmd.Flags().StringVar(&keyOut, "out", "", "file to write the generated key to")
	genKeyCmd.Flags().BoolVar(&keyForce, "force", false, "overwrite an existing key without asking")

	// serve
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "JSON server config file")

	// increment
	incrementCmd.Flags().IntVar(&times, "times", 1, "number of increments to send")
	incrementCmd.Flags().IntVar(&workers, "workers", 1, "number of concurrent requests")
}

func Execute() error {
	return rootCmd.Execute()
}
