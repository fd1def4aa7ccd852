package state

import (
	"fmt"

	"nftmarket/native/marketplace"
)

// MarketNextID reserves the next listing id.
func (m *Manager) MarketNextID() (uint64, error) { return m.nextID(marketCountKey) }

// MarketCount returns the highest listing id issued so far.
func (m *Manager) MarketCount() (uint64, error) { return m.count(marketCountKey) }

func (m *Manager) MarketItemGet(id uint64) (*marketplace.Item, bool, error) {
	item := new(marketplace.Item)
	ok, err := m.KVGet(marketItemKey(id), item)
	if err != nil || !ok {
		return nil, false, err
	}
	return item, true, nil
}

func (m *Manager) MarketItemPut(item *marketplace.Item) error {
	if item == nil {
		return fmt.Errorf("state: nil marketplace item")
	}
	return m.KVPut(marketItemKey(item.ID), item)
}
