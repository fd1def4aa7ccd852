package config

import (
	"nftmarket/native/fees"
)

// Fees configures the fee account and the rates charged by each engine.
// Rates accept "5%" or a parts-per-million integer.
type Fees struct {
	FeeAccount  string    `toml:"FeeAccount"`
	AuctionRate fees.Rate `toml:"AuctionRate"`
	MarketRate  fees.Rate `toml:"MarketRate"`
	RoyaltyRate fees.Rate `toml:"RoyaltyRate"`
}

type Auction struct {
	Vault string `toml:"Vault"`
	// MinBidUnit is both the minimum raise and the alignment unit, in base
	// units.
	MinBidUnit string   `toml:"MinBidUnit"`
	Admins     []string `toml:"Admins"`
}

type Market struct {
	Vault string `toml:"Vault"`
}

// Auth configures HS256 bearer tokens. The token subject is the caller's
// account.
type Auth struct {
	HMACSecret string `toml:"HMACSecret"`
	Issuer     string `toml:"Issuer"`
	Audience   string `toml:"Audience"`
	AllowAnon  bool   `toml:"AllowAnonymousReads"`
}

type RateLimit struct {
	RequestsPerSecond float64 `toml:"RequestsPerSecond"`
	Burst             int     `toml:"Burst"`
}

type Log struct {
	Level      string `toml:"Level"`
	File       string `toml:"File"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
	MaxAgeDays int    `toml:"MaxAgeDays"`
}

type Telemetry struct {
	Endpoint string `toml:"Endpoint"`
	Insecure bool   `toml:"Insecure"`
	Headers  string `toml:"Headers"`
	Metrics  bool   `toml:"Metrics"`
	Traces   bool   `toml:"Traces"`
}

const (
	ArchiveDriverNone     = "none"
	ArchiveDriverSQLite   = "sqlite"
	ArchiveDriverPostgres = "postgres"
)

// Archive selects the relational store that receives committed events.
type Archive struct {
	Driver string `toml:"Driver"`
	DSN    string `toml:"DSN"`
}

type Pauses struct {
	Auction     bool `toml:"Auction"`
	Marketplace bool `toml:"Marketplace"`
}

// Quota defines per-address limits for one module. A zero EpochSeconds
// disables it.
type Quota struct {
	MaxRequestsPerEpoch uint32 `toml:"MaxRequestsPerEpoch"`
	MaxValuePerEpoch    string `toml:"MaxValuePerEpoch"`
	EpochSeconds        uint32 `toml:"EpochSeconds"`
}

// Quotas groups quotas for each module.
type Quotas struct {
	Auction     Quota `toml:"Auction"`
	Marketplace Quota `toml:"Marketplace"`
}
