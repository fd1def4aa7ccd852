package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"nftmarket/config"
	"nftmarket/core"
	"nftmarket/core/events"
	"nftmarket/core/genesis"
	"nftmarket/gateway"
	"nftmarket/gateway/middleware"
	"nftmarket/observability/logging"
	telemetry "nftmarket/observability/otel"
	"nftmarket/storage"
	"nftmarket/storage/eventlog"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.toml", "path to marketd configuration")
	flag.Parse()

	if err := run(cfgPath); err != nil {
		slog.Error("marketd exited", "error", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if env := strings.TrimSpace(os.Getenv("MARKET_ENV")); env != "" {
		cfg.Environment = env
	}

	logger := logging.SetupWithOptions(logging.Options{
		Service:    "marketd",
		Env:        cfg.Environment,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: "marketd",
		Environment: cfg.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
	})
	if err != nil {
		return err
	}
	defer func() {
		if shutdownTelemetry != nil {
			_ = shutdownTelemetry(context.Background())
		}
	}()

	logger.Info("marketd starting", startupAttrs(cfg)...)

	settings, err := buildSettings(cfg)
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg.StorageEngine, cfg.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("state store opened", "engine", cfg.StorageEngine, "dir", cfg.DataDir)

	hub := gateway.NewHub(logger)
	sink := events.Multi{hub}
	gwCfg := gateway.Config{
		Hub: hub,
		Auth: middleware.AuthConfig{
			HMACSecret:     cfg.Auth.HMACSecret,
			Issuer:         cfg.Auth.Issuer,
			Audience:       cfg.Auth.Audience,
			AllowAnonymous: cfg.Auth.AllowAnon,
		},
		RateLimits: rateLimits(cfg.RateLimit),
		CORS:       middleware.CORSConfig{AllowedOrigins: cfg.CORSOrigins},
		Logger:     logger,
	}
	if cfg.Archive.Driver != config.ArchiveDriverNone {
		archive, err := eventlog.Open(cfg.Archive.Driver, archiveDSN(cfg))
		if err != nil {
			return err
		}
		defer archive.Close()
		archive.SetLogger(logger)
		sink = append(sink, archive)
		gwCfg.Archive = archive
	}

	exec := core.NewExecutor(db, settings)
	exec.SetLogger(logger)
	exec.SetEmitter(sink)
	gwCfg.Executor = exec

	if path := strings.TrimSpace(cfg.GenesisFile); path != "" {
		if err := applyGenesis(exec, path, logger); err != nil {
			return err
		}
	}

	srv, err := gateway.New(gwCfg)
	if err != nil {
		return err
	}
	server := &http.Server{Addr: cfg.ListenAddress, Handler: srv.Handler()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("marketd listening", "addr", cfg.ListenAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func applyGenesis(exec *core.Executor, path string, logger *slog.Logger) error {
	spec, err := genesis.LoadGenesisSpec(path)
	if err != nil {
		return err
	}
	var applied bool
	err = exec.Execute(context.Background(), "genesis", func(env *core.Env) error {
		var err error
		applied, err = genesis.Apply(spec, env.State, env.Bank, env.Registry)
		return err
	})
	if err != nil {
		return err
	}
	if applied {
		logger.Info("genesis applied", "file", path, "accounts", len(spec.Balances()))
	} else {
		logger.Info("genesis already applied", "file", path)
	}
	return nil
}
