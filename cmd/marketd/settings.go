package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"nftmarket/config"
	"nftmarket/core"
	"nftmarket/gateway/middleware"
	"nftmarket/native/fees"
	"nftmarket/observability/logging"
)

func buildSettings(cfg *config.Config) (core.Settings, error) {
	accounts, err := cfg.Accounts()
	if err != nil {
		return core.Settings{}, err
	}
	auctionFees, err := fees.NewCalculator(cfg.Fees.AuctionRate)
	if err != nil {
		return core.Settings{}, fmt.Errorf("fees.AuctionRate: %w", err)
	}
	marketFees, err := fees.NewCalculator(cfg.Fees.MarketRate)
	if err != nil {
		return core.Settings{}, fmt.Errorf("fees.MarketRate: %w", err)
	}
	royalty, err := fees.NewCalculator(cfg.Fees.RoyaltyRate)
	if err != nil {
		return core.Settings{}, fmt.Errorf("fees.RoyaltyRate: %w", err)
	}
	unit, err := cfg.Auction.MinBidUnitAmount()
	if err != nil {
		return core.Settings{}, err
	}
	auctionQuota, err := cfg.Quotas.Auction.Runtime()
	if err != nil {
		return core.Settings{}, fmt.Errorf("quotas.Auction: %w", err)
	}
	marketQuota, err := cfg.Quotas.Marketplace.Runtime()
	if err != nil {
		return core.Settings{}, fmt.Errorf("quotas.Marketplace: %w", err)
	}
	return core.Settings{
		AuctionVault: accounts.AuctionVault,
		MarketVault:  accounts.MarketVault,
		FeeAccount:   accounts.FeeAccount,
		AuctionFees:  auctionFees,
		MarketFees:   marketFees,
		Royalty:      royalty,
		MinBidUnit:   unit,
		Admins:       accounts.Admins,
		Pauses:       cfg.Pauses.Set(),
		AuctionQuota: auctionQuota,
		MarketQuota:  marketQuota,
	}, nil
}

func rateLimits(cfg config.RateLimit) map[string]middleware.RateLimit {
	limit := middleware.RateLimit{RatePerSecond: cfg.RequestsPerSecond, Burst: cfg.Burst}
	return map[string]middleware.RateLimit{
		"auction":     limit,
		"marketplace": limit,
	}
}

// archiveDSN places relative sqlite files under the data directory.
func archiveDSN(cfg *config.Config) string {
	dsn := strings.TrimSpace(cfg.Archive.DSN)
	if cfg.Archive.Driver != config.ArchiveDriverSQLite || !strings.HasPrefix(dsn, "file:") {
		return dsn
	}
	path, query, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == "" || strings.HasPrefix(path, ":memory:") || filepath.IsAbs(path) {
		return dsn
	}
	out := "file:" + filepath.Join(cfg.DataDir, path)
	if query != "" {
		out += "?" + query
	}
	return out
}

// startupAttrs summarises the configuration for the startup log line. Values
// that may carry credentials go through logging.MaskField.
func startupAttrs(cfg *config.Config) []any {
	attrs := []any{
		slog.String("listen", cfg.ListenAddress),
		logging.MaskField("storage_engine", cfg.StorageEngine),
		logging.MaskField("archive_driver", cfg.Archive.Driver),
		slog.Bool("anonymous_reads", cfg.Auth.AllowAnon),
		logging.MaskField("hmac_secret", cfg.Auth.HMACSecret),
		logging.MaskField("telemetry_headers", cfg.Telemetry.Headers),
	}
	if cfg.Archive.Driver != config.ArchiveDriverNone {
		attrs = append(attrs, logging.MaskField("archive_dsn", archiveDSN(cfg)))
	}
	return attrs
}
