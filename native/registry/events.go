package registry

import (
	"strconv"

	"nftmarket/core/events"
	"nftmarket/core/types"
)

const (
	EventTypeMinted      = "registry.minted"
	EventTypeTransferred = "registry.transferred"
	EventTypeApproval    = "registry.approval"
	EventTypeOperator    = "registry.operator"
)

type registryEvent struct {
	evt *types.Event
}

func (e registryEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e registryEvent) Event() *types.Event { return e.evt }

// NewMintedEvent returns the payload emitted when a token is minted.
func NewMintedEvent(a *Asset) *types.Event {
	return &types.Event{
		Type: EventTypeMinted,
		Attributes: map[string]string{
			"collection": events.FormatAddress(a.Collection),
			"tokenId":    events.FormatUint(a.TokenID),
			"owner":      events.FormatAddress(a.Owner),
			"uri":        a.URI,
		},
	}
}

// NewTransferredEvent returns the payload emitted when custody moves.
func NewTransferredEvent(collection [20]byte, tokenID uint64, from, to [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeTransferred,
		Attributes: map[string]string{
			"collection": events.FormatAddress(collection),
			"tokenId":    events.FormatUint(tokenID),
			"from":       events.FormatAddress(from),
			"to":         events.FormatAddress(to),
		},
	}
}

func NewApprovalEvent(a *Asset) *types.Event {
	return &types.Event{
		Type: EventTypeApproval,
		Attributes: map[string]string{
			"collection": events.FormatAddress(a.Collection),
			"tokenId":    events.FormatUint(a.TokenID),
			"owner":      events.FormatAddress(a.Owner),
			"approved":   events.FormatAddress(a.Approved),
		},
	}
}

func NewOperatorEvent(collection, owner, operator [20]byte, approved bool) *types.Event {
	return &types.Event{
		Type: EventTypeOperator,
		Attributes: map[string]string{
			"collection": events.FormatAddress(collection),
			"owner":      events.FormatAddress(owner),
			"operator":   events.FormatAddress(operator),
			"approved":   strconv.FormatBool(approved),
		},
	}
}
