package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"nftmarket/native/fees"
)

type Config struct {
	ListenAddress   string        `toml:"ListenAddress"`
	DataDir         string        `toml:"DataDir"`
	StorageEngine   string        `toml:"StorageEngine"`
	GenesisFile     string        `toml:"GenesisFile"`
	Environment     string        `toml:"Environment"`
	ShutdownTimeout time.Duration `toml:"ShutdownTimeout"`

	// CORSOrigins lists browser origins allowed to call the gateway. Empty
	// allows any origin.
	CORSOrigins []string `toml:"CORSOrigins"`

	Fees      Fees      `toml:"fees"`
	Auction   Auction   `toml:"auction"`
	Market    Market    `toml:"marketplace"`
	Auth      Auth      `toml:"auth"`
	RateLimit RateLimit `toml:"rate_limit"`
	Log       Log       `toml:"log"`
	Telemetry Telemetry `toml:"telemetry"`
	Archive   Archive   `toml:"archive"`
	Pauses    Pauses    `toml:"pauses"`
	Quotas    Quotas    `toml:"quotas"`
}

// Load loads the configuration from the given path, writing a default file
// on first run.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	} else if err != nil {
		return nil, err
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyFallbacks(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		ListenAddress:   ":8080",
		DataDir:         "./market-data",
		StorageEngine:   "leveldb",
		Environment:     "local",
		ShutdownTimeout: 10 * time.Second,
		Fees: Fees{
			FeeAccount:  "0x00000000000000000000000000000000000000fe",
			AuctionRate: fees.PercentRate(1),
			MarketRate:  fees.PercentRate(1),
		},
		Auction: Auction{
			Vault:      "0x00000000000000000000000000000000000000a1",
			MinBidUnit: "100000000000000",
		},
		Market: Market{
			Vault: "0x00000000000000000000000000000000000000a2",
		},
		Auth: Auth{
			Issuer:   "marketd",
			Audience: "marketd",
		},
		RateLimit: RateLimit{
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
		Telemetry: Telemetry{
			Endpoint: "localhost:4318",
			Insecure: true,
		},
		Archive: Archive{
			Driver: ArchiveDriverSQLite,
			DSN:    "file:events.db?_pragma=busy_timeout(5000)",
		},
	}
}

func applyFallbacks(cfg *Config) {
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "local"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
	cfg.StorageEngine = strings.ToLower(strings.TrimSpace(cfg.StorageEngine))
	if cfg.StorageEngine == "" {
		cfg.StorageEngine = "leveldb"
	}
	cfg.Archive.Driver = strings.ToLower(strings.TrimSpace(cfg.Archive.Driver))
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
