package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/ananthvk/memkv"
	"github.com/ananthvk/memkv/cmd/kvserver/internal"
)

func main() {
	app := &cli.App{
		Name:  "kvserver",
		Usage: "in-memory key value server speaking RESP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "address",
				Usage: "address to listen on",
			},
			&cli.StringFlag{
				Name:  "metrics-address",
				Usage: "address for the Prometheus /metrics endpoint, empty disables it",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "text or json",
			},
			&cli.Float64Flag{
				Name:  "rate-limit",
				Usage: "commands per second allowed on each connection, 0 disables",
			},
			&cli.IntFlag{
				Name:  "max-buffer-bytes",
				Usage: "largest incomplete request a connection may buffer",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("kvserver failed", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := internal.LoadConfig(afero.NewOsFs(), c.String("config"), flagOverrides(c))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := internal.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *internal.Metrics
	if cfg.Metrics.Address != "" {
		metrics = internal.NewMetrics()
		metricsServer := internal.NewMetricsServer(cfg.Metrics.Address, metrics)
		go func() {
			logger.Info("metrics listening", "address", cfg.Metrics.Address)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
	}

	store := memkv.NewStore()
	kv := internal.NewKVStore(store, internal.NewRegistry(metrics), logger)
	server := internal.NewServer(cfg.Server, kv, metrics, logger)

	if err := server.Serve(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// flagOverrides returns the config keys set explicitly on the command line
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	if c.IsSet("address") {
		overrides["server.address"] = c.String("address")
	}
	if c.IsSet("max-buffer-bytes") {
		overrides["server.max_buffer_bytes"] = c.Int("max-buffer-bytes")
	}
	if c.IsSet("rate-limit") {
		overrides["server.rate_limit"] = c.Float64("rate-limit")
	}
	if c.IsSet("metrics-address") {
		overrides["metrics.address"] = c.String("metrics-address")
	}
	if c.IsSet("log-level") {
		overrides["log.level"] = c.String("log-level")
	}
	if c.IsSet("log-format") {
		overrides["log.format"] = c.String("log-format")
	}
	return overrides
}
