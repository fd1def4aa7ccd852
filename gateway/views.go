package gateway

import (
	"math/big"

	"nftmarket/core/events"
	"nftmarket/native/auction"
	"nftmarket/native/marketplace"
	"nftmarket/native/registry"
)

type auctionItemView struct {
	ID         uint64 `json:"id"`
	Asset      string `json:"asset"`
	TokenID    uint64 `json:"tokenId"`
	Seller     string `json:"seller"`
	StartPrice string `json:"startPrice"`
	TopBid     string `json:"topBid"`
	TopBidder  string `json:"topBidder,omitempty"`
	StartAt    int64  `json:"startAt"`
	EndAt      int64  `json:"endAt"`
	Status     string `json:"status"`
}

func newAuctionItemView(item *auction.Item) auctionItemView {
	view := auctionItemView{
		ID:         item.ID,
		Asset:      events.FormatAddress(item.Asset),
		TokenID:    item.TokenID,
		Seller:     events.FormatAddress(item.Seller),
		StartPrice: events.FormatAmount(item.StartPrice),
		TopBid:     events.FormatAmount(item.TopBid),
		StartAt:    item.StartAt,
		EndAt:      item.EndAt,
		Status:     item.Status.String(),
	}
	if item.HasBidder() {
		view.TopBidder = events.FormatAddress(item.TopBidder)
	}
	return view
}

type marketItemView struct {
	ID      uint64 `json:"id"`
	Asset   string `json:"asset"`
	TokenID uint64 `json:"tokenId"`
	Seller  string `json:"seller"`
	Price   string `json:"price"`
	Sold    bool   `json:"sold"`
}

func newMarketItemView(item *marketplace.Item) marketItemView {
	return marketItemView{
		ID:      item.ID,
		Asset:   events.FormatAddress(item.Asset),
		TokenID: item.TokenID,
		Seller:  events.FormatAddress(item.Seller),
		Price:   events.FormatAmount(item.Price),
		Sold:    item.Sold,
	}
}

type assetView struct {
	Collection string `json:"collection"`
	TokenID    uint64 `json:"tokenId"`
	Owner      string `json:"owner"`
	Creator    string `json:"creator"`
	Approved   string `json:"approved,omitempty"`
	URI        string `json:"uri,omitempty"`
}

func newAssetView(asset *registry.Asset) assetView {
	view := assetView{
		Collection: events.FormatAddress(asset.Collection),
		TokenID:    asset.TokenID,
		Owner:      events.FormatAddress(asset.Owner),
		Creator:    events.FormatAddress(asset.Creator),
		URI:        asset.URI,
	}
	if asset.Approved != ([20]byte{}) {
		view.Approved = events.FormatAddress(asset.Approved)
	}
	return view
}

type amountView struct {
	Amount string `json:"amount"`
}

func newAmountView(v *big.Int) amountView {
	return amountView{Amount: events.FormatAmount(v)}
}

type balanceView struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}
