package marketplace

import (
	"math/big"

	"nftmarket/native/common"
)

// Item is a fixed-price listing. Price never changes after enrollment and
// Sold only ever moves from false to true.
type Item struct {
	ID      uint64
	Asset   [20]byte
	TokenID uint64
	Seller  [20]byte
	Price   *big.Int
	Sold    bool
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	out := *i
	out.Price = common.Clone(i.Price)
	return &out
}
