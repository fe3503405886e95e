// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/profiler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/hypercounter/config"
	"github.com/ava-labs/hypercounter/counter"
	"github.com/ava-labs/hypercounter/rpc"
	"github.com/ava-labs/hypercounter/server"
	"github.com/ava-labs/hypercounter/storage"
)

const (
	serverLoggerName = "server"
	metricsEndpoint  = "/metrics"
)

var serveConfig string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve counters over JSON-RPC",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(serveConfig)
		if err != nil {
			return err
		}

		logConfig, err := newLogConfig(logLevel, logDir, false)
		if err != nil {
			return err
		}
		logFactory := newLogFactory(logConfig)
		defer logFactory.Close()
		log, err := logFactory.Make(serverLoggerName)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("log-level") {
			if err := logFactory.SetLogLevel(serverLoggerName, cfg.GetLogLevel()); err != nil {
				return err
			}
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		listener, err := net.Listen("tcp", cfg.GetHTTPAddress())
		if err != nil {
			return err
		}
		return runServer(ctx, log, cfg, listener)
	},
}

// runServer serves the counter API on [listener] until [ctx] is done.
func runServer(ctx context.Context, log logging.Logger, cfg *config.Config, listener net.Listener) error {
	db, dbGatherer, err := storage.New(ctx, cfg.GetDatabaseConfig())
	if err != nil {
		_ = listener.Close()
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	store, err := counter.New(log, db, registry, cfg.GetCounterConfig())
	if err != nil {
		_ = listener.Close()
		return err
	}
	api := rpc.NewJSONRPCServer(log, store, cfg.GetNamespace(), cfg.GetCredentialWindow())
	handler, err := rpc.NewJSONRPCHandler(rpc.Name, api)
	if err != nil {
		_ = listener.Close()
		return err
	}

	srv, err := server.New(
		"",
		log,
		listener,
		cfg.HTTPConfig,
		cfg.AllowedOrigins,
		cfg.AllowedHosts,
		cfg.ShutdownTimeout,
	)
	if err != nil {
		_ = listener.Close()
		return err
	}
	if err := srv.AddRoute(handler, rpc.JSONRPCEndpoint, ""); err != nil {
		_ = listener.Close()
		return err
	}
	if cfg.MetricsEnabled {
		gatherers := prometheus.Gatherers{registry}
		if dbGatherer != nil {
			gatherers = append(gatherers, dbGatherer)
		}
		metricsHandler := promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
		if err := srv.AddRoute(metricsHandler, metricsEndpoint, ""); err != nil {
			_ = listener.Close()
			return err
		}
	}

	if profilerConfig := cfg.GetContinuousProfilerConfig(); profilerConfig.Enabled {
		p := profiler.NewContinuous(profilerConfig.Dir, profilerConfig.Freq, profilerConfig.MaxNumFiles)
		go func() {
			if err := p.Dispatch(); err != nil {
				log.Warn("continuous profiler stopped", zap.Error(err))
			}
		}()
		defer p.Shutdown()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Dispatch()
	}()
	log.Info("serving counters",
		zap.Stringer("address", srv.Addr()),
		zap.String("backend", cfg.DatabaseBackend),
		zap.String("namespace", cfg.Namespace),
	)

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		return err
	}
}
