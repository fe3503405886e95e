// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"

	"github.com/neilotoole/errgroup"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"

	"github.com/ava-labs/hypercounter/auth"
	"github.com/ava-labs/hypercounter/counter"
	"github.com/ava-labs/hypercounter/rpc"
	"github.com/ava-labs/hypercounter/storage"
	"github.com/ava-labs/hypercounter/utils"
)

var (
	times   int
	workers int
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the record address for the tag",
	RunE: func(*cobra.Command, []string) error {
		p, cli, err := clientProfile()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		addr, bump, err := cli.Address(ctx, p.TagBytes())
		if err != nil {
			return err
		}
		utils.Outf("{{green}}address:{{/}} %s {{green}}bump:{{/}} %d\n", addr, bump)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the counter for the tag",
	RunE: func(*cobra.Command, []string) error {
		p, cli, err := clientProfile()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		c, _, err := cli.Get(ctx, p.TagBytes())
		if err != nil {
			return err
		}
		printCounter(c)
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the counter for the tag, owned by --key",
	RunE: func(*cobra.Command, []string) error {
		return runMutation(func(ctx context.Context, cli *rpc.JSONRPCClient, tag []byte, factory auth.AuthFactory) (*storage.Counter, error) {
			return cli.Create(ctx, tag, factory)
		})
	},
}

var incrementCmd = &cobra.Command{
	Use:   "increment",
	Short: "Add one to the counter",
	RunE: func(*cobra.Command, []string) error {
		if workers <= 0 {
			return ErrInvalidWorkers
		}
		return runMutation(func(ctx context.Context, cli *rpc.JSONRPCClient, tag []byte, factory auth.AuthFactory) (*storage.Counter, error) {
			if err := repeat(ctx, times, workers, func(ctx context.Context) error {
				_, err := cli.Increment(ctx, tag, factory)
				return err
			}); err != nil {
				return nil, err
			}
			c, _, err := cli.Get(ctx, tag)
			return c, err
		})
	},
}

var decrementCmd = &cobra.Command{
	Use:   "decrement",
	Short: "Subtract one from the counter",
	RunE: func(*cobra.Command, []string) error {
		return runMutation(func(ctx context.Context, cli *rpc.JSONRPCClient, tag []byte, factory auth.AuthFactory) (*storage.Counter, error) {
			return cli.Decrement(ctx, tag, factory)
		})
	},
}

var initOrGetCmd = &cobra.Command{
	Use:   "init-or-get",
	Short: "Print the counter, creating it first if it does not exist",
	RunE: func(*cobra.Command, []string) error {
		return runMutation(func(ctx context.Context, cli *rpc.JSONRPCClient, tag []byte, factory auth.AuthFactory) (*storage.Counter, error) {
			c, created, err := initOrGet(ctx, cli, tag, factory)
			if err != nil {
				return nil, err
			}
			if created {
				utils.Outf("{{green}}created counter{{/}}\n")
			}
			return c, nil
		})
	},
}

func clientProfile() (*Profile, *rpc.JSONRPCClient, error) {
	p, err := currentProfile()
	if err != nil {
		return nil, nil, err
	}
	cli, err := p.Client()
	if err != nil {
		return nil, nil, err
	}
	return p, cli, nil
}

func runMutation(f func(context.Context, *rpc.JSONRPCClient, []byte, auth.AuthFactory) (*storage.Counter, error)) error {
	p, cli, err := clientProfile()
	if err != nil {
		return err
	}
	factory, err := p.Factory()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	c, err := f(ctx, cli, p.TagBytes(), factory)
	if err != nil {
		return err
	}
	printCounter(c)
	return nil
}

// initOrGet returns the counter for [tag], creating it for [factory] if it
// does not exist. The bool reports whether this call created it.
func initOrGet(
	ctx context.Context,
	cli *rpc.JSONRPCClient,
	tag []byte,
	factory auth.AuthFactory,
) (*storage.Counter, bool, error) {
	c, _, err := cli.Get(ctx, tag)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, counter.ErrNotFound) {
		return nil, false, err
	}
	c, err = cli.Create(ctx, tag, factory)
	if errors.Is(err, counter.ErrAlreadyExists) {
		// Lost a race with another creator.
		c, _, err = cli.Get(ctx, tag)
		return c, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// repeat calls [f] [n] times with at most [parallel] calls in flight and
// stops at the first error.
func repeat(ctx context.Context, n int, parallel int, f func(context.Context) error) error {
	if n <= 0 {
		return nil
	}
	g, gctx := errgroup.WithContextN(ctx, parallel, n)
	var sent atomic.Int64
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := f(gctx); err != nil {
				return err
			}
			sent.Inc()
			return nil
		})
	}
	err := g.Wait()
	if n > 1 {
		utils.Outf("{{yellow}}sent:{{/}} %d/%d\n", sent.Load(), n)
	}
	return err
}

func printCounter(c *storage.Counter) {
	utils.Outf(
		"{{yellow}}authority:{{/}} %s {{yellow}}count:{{/}} %d {{yellow}}bump:{{/}} %d\n",
		c.Authority,
		c.Count,
		c.Bump,
	)
}
