package marketplace

import (
	"nftmarket/core/events"
	"nftmarket/core/types"
	"nftmarket/native/fees"
)

const (
	EventTypeEnrolled = "marketplace.enrolled"
	EventTypeBought   = "marketplace.bought"
)

type marketEvent struct {
	evt *types.Event
}

func (e marketEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e marketEvent) Event() *types.Event { return e.evt }

// NewEnrolledEvent returns the payload emitted when a listing is created.
func NewEnrolledEvent(item *Item) *types.Event {
	return &types.Event{
		Type: EventTypeEnrolled,
		Attributes: map[string]string{
			"itemId":  events.FormatUint(item.ID),
			"tokenId": events.FormatUint(item.TokenID),
			"price":   events.FormatAmount(item.Price),
			"seller":  events.FormatAddress(item.Seller),
			"asset":   events.FormatAddress(item.Asset),
		},
	}
}

// NewBoughtEvent returns the payload emitted on purchase.
func NewBoughtEvent(item *Item, buyer [20]byte, split fees.Split) *types.Event {
	return &types.Event{
		Type: EventTypeBought,
		Attributes: map[string]string{
			"itemId":  events.FormatUint(item.ID),
			"tokenId": events.FormatUint(item.TokenID),
			"price":   events.FormatAmount(item.Price),
			"seller":  events.FormatAddress(item.Seller),
			"buyer":   events.FormatAddress(buyer),
			"asset":   events.FormatAddress(item.Asset),
			"fee":     events.FormatAmount(split.Fee),
		},
	}
}
