package genesis

import (
	"fmt"
	"math/big"

	"nftmarket/native/registry"
)

type bankSeeder interface {
	Credit(addr [20]byte, amount *big.Int) error
}

type assetSeeder interface {
	Mint(collection, owner [20]byte, uri string) (*registry.Asset, error)
	SetApprovalForAll(collection, owner, operator [20]byte, approved bool) error
}

type marker interface {
	GenesisApplied() (bool, error)
	MarkGenesisApplied() error
}

// Apply seeds balances and assets once. It reports false when the store was
// already seeded.
func Apply(spec *GenesisSpec, state marker, bank bankSeeder, assets assetSeeder) (bool, error) {
	if spec == nil {
		return false, fmt.Errorf("genesis spec must not be nil")
	}
	applied, err := state.GenesisApplied()
	if err != nil {
		return false, err
	}
	if applied {
		return false, nil
	}
	for _, bal := range spec.Balances() {
		if err := bank.Credit(bal.Account, bal.Amount); err != nil {
			return false, fmt.Errorf("alloc: %w", err)
		}
	}
	for i := range spec.Assets {
		a := &spec.Assets[i]
		if _, err := assets.Mint(a.collection, a.owner, a.URI); err != nil {
			return false, fmt.Errorf("asset[%d]: %w", i, err)
		}
		for _, op := range a.operators {
			if err := assets.SetApprovalForAll(a.collection, a.owner, op, true); err != nil {
				return false, fmt.Errorf("asset[%d]: %w", i, err)
			}
		}
	}
	if err := state.MarkGenesisApplied(); err != nil {
		return false, err
	}
	return true, nil
}
