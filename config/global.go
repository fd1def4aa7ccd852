package config

import (
	"fmt"
	"math/big"
	"strings"

	"nftmarket/core/types"
	"nftmarket/native/common"
)

// Accounts are the parsed engine accounts.
type Accounts struct {
	FeeAccount   [20]byte
	AuctionVault [20]byte
	MarketVault  [20]byte
	Admins       [][20]byte
}

// Accounts parses the configured account addresses.
func (c *Config) Accounts() (Accounts, error) {
	var out Accounts
	var err error
	if out.FeeAccount, err = types.ParseAddress(c.Fees.FeeAccount); err != nil {
		return out, fmt.Errorf("fees.FeeAccount: %w", err)
	}
	if out.AuctionVault, err = types.ParseAddress(c.Auction.Vault); err != nil {
		return out, fmt.Errorf("auction.Vault: %w", err)
	}
	if out.MarketVault, err = types.ParseAddress(c.Market.Vault); err != nil {
		return out, fmt.Errorf("marketplace.Vault: %w", err)
	}
	for i, raw := range c.Auction.Admins {
		admin, err := types.ParseAddress(raw)
		if err != nil {
			return out, fmt.Errorf("auction.Admins[%d]: %w", i, err)
		}
		out.Admins = append(out.Admins, admin)
	}
	return out, nil
}

// MinBidUnitAmount parses the auction bid unit; zero means one base unit.
func (a Auction) MinBidUnitAmount() (*big.Int, error) {
	unit, err := parseUintAmount(a.MinBidUnit)
	if err != nil {
		return nil, fmt.Errorf("auction.MinBidUnit: %w", err)
	}
	if unit.Sign() == 0 {
		return big.NewInt(1), nil
	}
	return unit, nil
}

// Runtime converts the quota into the engine representation.
func (q Quota) Runtime() (common.Quota, error) {
	value, err := parseUintAmount(q.MaxValuePerEpoch)
	if err != nil {
		return common.Quota{}, err
	}
	return common.Quota{
		MaxRequestsPerEpoch: q.MaxRequestsPerEpoch,
		MaxValuePerEpoch:    value,
		EpochSeconds:        q.EpochSeconds,
	}, nil
}

// Set returns the pause flags keyed by module name.
func (p Pauses) Set() common.PauseSet {
	return common.PauseSet{
		common.ModuleAuction:     p.Auction,
		common.ModuleMarketplace: p.Marketplace,
	}
}

func parseUintAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return amount, nil
}
