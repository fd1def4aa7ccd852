package state

import (
	"fmt"
	"math/big"

	"nftmarket/native/auction"
)

type storedAuctionItem struct {
	ID         uint64
	Asset      [20]byte
	TokenID    uint64
	Seller     [20]byte
	StartPrice *big.Int
	TopBid     *big.Int
	TopBidder  [20]byte
	StartAt    uint64
	EndAt      uint64
	Status     uint8
}

func newStoredAuctionItem(item *auction.Item) (*storedAuctionItem, error) {
	if item.StartAt < 0 || item.EndAt < 0 {
		return nil, fmt.Errorf("state: auction item %d has negative timestamps", item.ID)
	}
	return &storedAuctionItem{
		ID:         item.ID,
		Asset:      item.Asset,
		TokenID:    item.TokenID,
		Seller:     item.Seller,
		StartPrice: item.StartPrice,
		TopBid:     item.TopBid,
		TopBidder:  item.TopBidder,
		StartAt:    uint64(item.StartAt),
		EndAt:      uint64(item.EndAt),
		Status:     uint8(item.Status),
	}, nil
}

func (s *storedAuctionItem) toItem() *auction.Item {
	return &auction.Item{
		ID:         s.ID,
		Asset:      s.Asset,
		TokenID:    s.TokenID,
		Seller:     s.Seller,
		StartPrice: s.StartPrice,
		TopBid:     s.TopBid,
		TopBidder:  s.TopBidder,
		StartAt:    int64(s.StartAt),
		EndAt:      int64(s.EndAt),
		Status:     auction.Status(s.Status),
	}
}

func (m *Manager) nextID(counter []byte) (uint64, error) {
	var count uint64
	if _, err := m.KVGet(counter, &count); err != nil {
		return 0, err
	}
	count++
	if err := m.KVPut(counter, count); err != nil {
		return 0, err
	}
	return count, nil
}

func (m *Manager) count(counter []byte) (uint64, error) {
	var count uint64
	if _, err := m.KVGet(counter, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// AuctionNextID reserves the next auction item id. Ids start at 1 and are
// never reused.
func (m *Manager) AuctionNextID() (uint64, error) { return m.nextID(auctionCountKey) }

// AuctionCount returns the highest auction item id issued so far.
func (m *Manager) AuctionCount() (uint64, error) { return m.count(auctionCountKey) }

func (m *Manager) AuctionItemGet(id uint64) (*auction.Item, bool, error) {
	stored := new(storedAuctionItem)
	ok, err := m.KVGet(auctionItemKey(id), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored.toItem(), true, nil
}

func (m *Manager) AuctionItemPut(item *auction.Item) error {
	if item == nil {
		return fmt.Errorf("state: nil auction item")
	}
	stored, err := newStoredAuctionItem(item)
	if err != nil {
		return err
	}
	return m.KVPut(auctionItemKey(item.ID), stored)
}

// PendingBidGet returns the escrowed balance of account for an auction item.
func (m *Manager) PendingBidGet(itemID uint64, account [20]byte) (*big.Int, error) {
	amount := new(big.Int)
	ok, err := m.KVGet(pendingBidKey(itemID, account), amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return amount, nil
}

func (m *Manager) PendingBidPut(itemID uint64, account [20]byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return m.KVPut(pendingBidKey(itemID, account), amount)
}
