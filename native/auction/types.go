package auction

import (
	"math/big"

	"nftmarket/native/common"
)

// Status is the lifecycle state of an auction item. Ended and Cancelled are
// terminal.
type Status uint8

const (
	StatusEnrolled Status = iota + 1
	StatusEnded
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusEnrolled:
		return "enrolled"
	case StatusEnded:
		return "ended"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s >= StatusEnrolled && s <= StatusCancelled
}

// Item is one enrolled auction lot.
type Item struct {
	ID         uint64
	Asset      [20]byte
	TokenID    uint64
	Seller     [20]byte
	StartPrice *big.Int
	TopBid     *big.Int
	TopBidder  [20]byte
	StartAt    int64
	EndAt      int64
	Status     Status
}

// HasBidder reports whether any bid has been accepted.
func (i *Item) HasBidder() bool {
	return i != nil && i.TopBidder != ([20]byte{})
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	out := *i
	out.StartPrice = common.Clone(i.StartPrice)
	out.TopBid = common.Clone(i.TopBid)
	return &out
}
