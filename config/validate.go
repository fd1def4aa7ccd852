package config

import (
	"fmt"
	"strings"
)

// Validate rejects configurations the node cannot start with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config must not be nil")
	}
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		return fmt.Errorf("ListenAddress must be set")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("DataDir must be set")
	}
	switch cfg.StorageEngine {
	case "leveldb", "bolt":
	default:
		return fmt.Errorf("StorageEngine must be leveldb or bolt, got %q", cfg.StorageEngine)
	}
	for name, rate := range map[string]interface{ Validate() error }{
		"fees.AuctionRate": cfg.Fees.AuctionRate,
		"fees.MarketRate":  cfg.Fees.MarketRate,
		"fees.RoyaltyRate": cfg.Fees.RoyaltyRate,
	} {
		if err := rate.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	accounts, err := cfg.Accounts()
	if err != nil {
		return err
	}
	if accounts.AuctionVault == accounts.MarketVault {
		return fmt.Errorf("auction and marketplace vaults must differ")
	}
	if accounts.FeeAccount == accounts.AuctionVault || accounts.FeeAccount == accounts.MarketVault {
		return fmt.Errorf("fee account must not be an engine vault")
	}
	if _, err := cfg.Auction.MinBidUnitAmount(); err != nil {
		return err
	}
	for name, q := range map[string]Quota{"quotas.Auction": cfg.Quotas.Auction, "quotas.Marketplace": cfg.Quotas.Marketplace} {
		if _, err := q.Runtime(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if cfg.RateLimit.RequestsPerSecond < 0 || cfg.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit: values must not be negative")
	}
	switch cfg.Archive.Driver {
	case "", ArchiveDriverNone, ArchiveDriverSQLite, ArchiveDriverPostgres:
	default:
		return fmt.Errorf("archive.Driver: unsupported driver %q", cfg.Archive.Driver)
	}
	if cfg.Archive.Driver == ArchiveDriverPostgres && strings.TrimSpace(cfg.Archive.DSN) == "" {
		return fmt.Errorf("archive.DSN required for postgres")
	}
	return nil
}
