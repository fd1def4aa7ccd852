package state

import (
	"fmt"

	"nftmarket/native/registry"
)

func (m *Manager) RegistryAssetGet(collection [20]byte, tokenID uint64) (*registry.Asset, bool, error) {
	asset := new(registry.Asset)
	ok, err := m.KVGet(assetKey(collection, tokenID), asset)
	if err != nil || !ok {
		return nil, false, err
	}
	return asset, true, nil
}

func (m *Manager) RegistryAssetPut(asset *registry.Asset) error {
	if asset == nil {
		return fmt.Errorf("state: nil asset")
	}
	return m.KVPut(assetKey(asset.Collection, asset.TokenID), asset)
}

func (m *Manager) RegistryOperatorGet(collection, owner, operator [20]byte) (bool, error) {
	var approved bool
	if _, err := m.KVGet(operatorKey(collection, owner, operator), &approved); err != nil {
		return false, err
	}
	return approved, nil
}

func (m *Manager) RegistryOperatorPut(collection, owner, operator [20]byte, approved bool) error {
	return m.KVPut(operatorKey(collection, owner, operator), approved)
}

// RegistryNextTokenID reserves the next token id of collection.
func (m *Manager) RegistryNextTokenID(collection [20]byte) (uint64, error) {
	return m.nextID(tokenCounterKey(collection))
}
