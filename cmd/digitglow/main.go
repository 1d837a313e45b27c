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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"libdb.so/digitglow"
)

var (
	config  = "digitglow.toml"
	verbose = false
	listen  = ""
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file, defaults are used if it does not exist")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.StringVar(&listen, "metrics", listen, "address to serve Prometheus metrics on, empty to disable")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, err := digitglow.NewDaemon(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	errg, ctx := errgroup.WithContext(ctx)

	if listen != "" {
		reg := prometheus.NewRegistry()
		d.EnableMetrics(reg)

		server := &http.Server{
			Addr:    listen,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		errg.Go(func() error {
			<-ctx.Done()
			return server.Close()
		})
		errg.Go(func() error {
			slog.Debug("serving metrics", "addr", listen)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})
	}

	errg.Go(func() error {
		return d.Run(ctx)
	})

	if err := errg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("daemon failed: %w", err)
	}

	return nil
}

func readConfig() (*digitglow.Config, error) {
	f, err := os.Open(config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !pflag.CommandLine.Changed("config") {
			slog.Debug("no config file, using defaults", "path", config)
			return digitglow.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return digitglow.ParseConfig(f)
}
