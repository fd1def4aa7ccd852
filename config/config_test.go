package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nftmarket/native/common"
	"nftmarket/native/fees"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, ":8080", cfg.ListenAddress)

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Fees.AuctionRate, reloaded.Fees.AuctionRate)
	require.Equal(t, 10*time.Second, reloaded.ShutdownTimeout)
	require.NoError(t, Validate(reloaded))
}

func TestLoadParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `ListenAddress = "0.0.0.0:9000"
DataDir = "/var/lib/marketd"
ShutdownTimeout = "3s"

[fees]
FeeAccount = "0x00000000000000000000000000000000000000fe"
AuctionRate = "5%"
MarketRate = 25000
RoyaltyRate = "7.5%"

[auction]
Vault = "0x00000000000000000000000000000000000000a1"
MinBidUnit = "1000"
Admins = ["0x00000000000000000000000000000000000000ad"]

[marketplace]
Vault = "0x00000000000000000000000000000000000000a2"

[pauses]
Marketplace = true

[quotas.Auction]
MaxRequestsPerEpoch = 5
MaxValuePerEpoch = "1000000"
EpochSeconds = 60

[archive]
Driver = "Postgres"
DSN = "postgres://market@localhost/market"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, fees.Rate(50_000), cfg.Fees.AuctionRate)
	require.Equal(t, fees.Rate(25_000), cfg.Fees.MarketRate)
	require.Equal(t, fees.Rate(75_000), cfg.Fees.RoyaltyRate)
	require.Equal(t, ArchiveDriverPostgres, cfg.Archive.Driver)

	accounts, err := cfg.Accounts()
	require.NoError(t, err)
	require.Len(t, accounts.Admins, 1)
	require.Equal(t, byte(0xad), accounts.Admins[0][19])

	unit, err := cfg.Auction.MinBidUnitAmount()
	require.NoError(t, err)
	require.Equal(t, int64(1000), unit.Int64())

	quota, err := cfg.Quotas.Auction.Runtime()
	require.NoError(t, err)
	require.True(t, quota.Enabled())
	require.False(t, cfg.Pauses.Set().IsPaused(common.ModuleAuction))
	require.True(t, cfg.Pauses.Set().IsPaused(common.ModuleMarketplace))
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"rate above 100%":   func(c *Config) { c.Fees.AuctionRate = fees.Rate(fees.RateDenominator + 1) },
		"bad fee account":   func(c *Config) { c.Fees.FeeAccount = "nope" },
		"shared vault":      func(c *Config) { c.Market.Vault = c.Auction.Vault },
		"fee is vault":      func(c *Config) { c.Fees.FeeAccount = c.Auction.Vault },
		"bad bid unit":      func(c *Config) { c.Auction.MinBidUnit = "-1" },
		"unknown archive":   func(c *Config) { c.Archive.Driver = "mysql" },
		"postgres no dsn":   func(c *Config) { c.Archive = Archive{Driver: ArchiveDriverPostgres} },
		"empty listen addr": func(c *Config) { c.ListenAddress = "" },
		"unknown engine":    func(c *Config) { c.StorageEngine = "rocksdb" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			require.Error(t, Validate(cfg))
		})
	}
}
