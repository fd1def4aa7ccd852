package auction

import (
	"math/big"

	"nftmarket/core/events"
	"nftmarket/core/types"
)

const (
	EventTypeEnrolled = "auction.enrolled"
	EventTypeBid      = "auction.bid"
	EventTypeWithdraw = "auction.withdraw"
	EventTypeCancel   = "auction.cancel"
	EventTypeEnd      = "auction.end"
)

type auctionEvent struct {
	evt *types.Event
}

func (e auctionEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e auctionEvent) Event() *types.Event { return e.evt }

// NewEnrolledEvent returns the payload emitted when a lot is enrolled.
func NewEnrolledEvent(item *Item) *types.Event {
	return &types.Event{
		Type: EventTypeEnrolled,
		Attributes: map[string]string{
			"itemId":     events.FormatUint(item.ID),
			"startPrice": events.FormatAmount(item.StartPrice),
			"asset":      events.FormatAddress(item.Asset),
			"tokenId":    events.FormatUint(item.TokenID),
			"seller":     events.FormatAddress(item.Seller),
			"endAt":      events.FormatInt(item.EndAt),
		},
	}
}

// NewBidEvent returns the payload emitted for an accepted bid. Amount is the
// nominal contribution credited for this call.
func NewBidEvent(item *Item, bidder [20]byte, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeBid,
		Attributes: map[string]string{
			"itemId": events.FormatUint(item.ID),
			"bidder": events.FormatAddress(bidder),
			"amount": events.FormatAmount(amount),
			"topBid": events.FormatAmount(item.TopBid),
		},
	}
}

func NewWithdrawEvent(itemID uint64, account [20]byte, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeWithdraw,
		Attributes: map[string]string{
			"itemId":  events.FormatUint(itemID),
			"account": events.FormatAddress(account),
			"amount":  events.FormatAmount(amount),
		},
	}
}

func NewCancelEvent(item *Item) *types.Event {
	return &types.Event{
		Type: EventTypeCancel,
		Attributes: map[string]string{
			"itemId": events.FormatUint(item.ID),
			"seller": events.FormatAddress(item.Seller),
		},
	}
}

// NewEndEvent returns the settlement payload. Without a bidder the top bid is
// the start price and the fee is zero.
func NewEndEvent(item *Item, fee *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeEnd,
		Attributes: map[string]string{
			"itemId":    events.FormatUint(item.ID),
			"topBidder": events.FormatAddress(item.TopBidder),
			"seller":    events.FormatAddress(item.Seller),
			"topBid":    events.FormatAmount(item.TopBid),
			"fee":       events.FormatAmount(fee),
		},
	}
}
