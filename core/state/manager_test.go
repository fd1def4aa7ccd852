package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"nftmarket/native/auction"
	"nftmarket/native/common"
	"nftmarket/native/marketplace"
	"nftmarket/native/registry"
	"nftmarket/storage"
)

func addr(b byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = b
	}
	return a
}

func TestOverlayCommitAndDiscard(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()

	discarded := NewManager(db)
	require.NoError(t, discarded.BalancePut(addr(1), big.NewInt(10)))
	bal, err := discarded.BalanceGet(addr(1))
	require.NoError(t, err)
	require.Equal(t, int64(10), bal.Int64(), "overlay must read its own writes")
	discarded.Discard()
	require.ErrorIs(t, discarded.BalancePut(addr(1), big.NewInt(1)), ErrClosed)

	fresh := NewManager(db)
	bal, err = fresh.BalanceGet(addr(1))
	require.NoError(t, err)
	require.Zero(t, bal.Sign(), "discarded writes must not reach the store")

	require.NoError(t, fresh.BalancePut(addr(1), big.NewInt(25)))
	require.Equal(t, 1, fresh.Pending())
	require.NoError(t, fresh.Commit())
	require.ErrorIs(t, fresh.Commit(), ErrClosed)

	bal, err = NewManager(db).BalanceGet(addr(1))
	require.NoError(t, err)
	require.Equal(t, int64(25), bal.Int64())
}

func TestAuctionRecords(t *testing.T) {
	db := storage.NewMemDB()
	mgr := NewManager(db)

	first, err := mgr.AuctionNextID()
	require.NoError(t, err)
	second, err := mgr.AuctionNextID()
	require.NoError(t, err)
	require.Equal(t, uint64(1), first)
	require.Equal(t, uint64(2), second)
	count, err := mgr.AuctionCount()
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)

	item := &auction.Item{
		ID:         first,
		Asset:      addr(0xC0),
		TokenID:    7,
		Seller:     addr(1),
		StartPrice: big.NewInt(100),
		TopBid:     big.NewInt(300),
		TopBidder:  addr(2),
		StartAt:    1_700_000_000,
		EndAt:      1_700_003_600,
		Status:     auction.StatusEnrolled,
	}
	require.NoError(t, mgr.AuctionItemPut(item))
	require.NoError(t, mgr.PendingBidPut(first, addr(2), big.NewInt(300)))
	require.NoError(t, mgr.Commit())

	reader := NewManager(db)
	loaded, ok, err := reader.AuctionItemGet(first)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, item.Seller, loaded.Seller)
	require.Equal(t, item.EndAt, loaded.EndAt)
	require.Equal(t, auction.StatusEnrolled, loaded.Status)
	require.Zero(t, loaded.TopBid.Cmp(big.NewInt(300)))

	_, ok, err = reader.AuctionItemGet(99)
	require.NoError(t, err)
	require.False(t, ok)

	pending, err := reader.PendingBidGet(first, addr(2))
	require.NoError(t, err)
	require.Equal(t, int64(300), pending.Int64())
	pending, err = reader.PendingBidGet(first, addr(3))
	require.NoError(t, err)
	require.Zero(t, pending.Sign())
}

func TestMarketplaceAndRegistryRecords(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())

	id, err := mgr.MarketNextID()
	require.NoError(t, err)
	require.NoError(t, mgr.MarketItemPut(&marketplace.Item{ID: id, Asset: addr(0xC0), TokenID: 1, Seller: addr(1), Price: big.NewInt(2)}))
	item, ok, err := mgr.MarketItemGet(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, item.Sold)
	require.Equal(t, int64(2), item.Price.Int64())

	tokenID, err := mgr.RegistryNextTokenID(addr(0xC0))
	require.NoError(t, err)
	require.Equal(t, uint64(1), tokenID)
	require.NoError(t, mgr.RegistryAssetPut(&registry.Asset{Collection: addr(0xC0), TokenID: tokenID, Owner: addr(1), Creator: addr(1), URI: "ipfs://x"}))
	asset, ok, err := mgr.RegistryAssetGet(addr(0xC0), tokenID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ipfs://x", asset.URI)

	approved, err := mgr.RegistryOperatorGet(addr(0xC0), addr(1), addr(9))
	require.NoError(t, err)
	require.False(t, approved)
	require.NoError(t, mgr.RegistryOperatorPut(addr(0xC0), addr(1), addr(9), true))
	approved, err = mgr.RegistryOperatorGet(addr(0xC0), addr(1), addr(9))
	require.NoError(t, err)
	require.True(t, approved)
}

func TestQuotaRecords(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())

	usage, err := mgr.QuotaGet(common.ModuleAuction, addr(1))
	require.NoError(t, err)
	require.Zero(t, usage.ReqCount)
	require.Zero(t, usage.ValueUsed.Sign())

	require.NoError(t, mgr.QuotaPut(common.ModuleAuction, addr(1), common.QuotaNow{ReqCount: 3, ValueUsed: big.NewInt(40), EpochID: 9}))
	usage, err = mgr.QuotaGet(common.ModuleAuction, addr(1))
	require.NoError(t, err)
	require.Equal(t, uint32(3), usage.ReqCount)
	require.Equal(t, uint64(9), usage.EpochID)
	other, err := mgr.QuotaGet(common.ModuleMarketplace, addr(1))
	require.NoError(t, err)
	require.Zero(t, other.ReqCount)
}

func TestGenesisMarker(t *testing.T) {
	db := storage.NewMemDB()
	mgr := NewManager(db)
	applied, err := mgr.GenesisApplied()
	require.NoError(t, err)
	require.False(t, applied)
	require.NoError(t, mgr.MarkGenesisApplied())
	require.NoError(t, mgr.Commit())

	applied, err = NewManager(db).GenesisApplied()
	require.NoError(t, err)
	require.True(t, applied)
}
