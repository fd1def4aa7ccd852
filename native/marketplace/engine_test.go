package marketplace

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"nftmarket/core/events"
	marketerrors "nftmarket/core/errors"
	"nftmarket/native/common"
	"nftmarket/native/fees"
)

type quotaKey struct {
	module string
	addr   [20]byte
}

type mockState struct {
	nextID uint64
	items  map[uint64]*Item
	quotas map[quotaKey]common.QuotaNow
}

func newMockState() *mockState {
	return &mockState{
		items:  make(map[uint64]*Item),
		quotas: make(map[quotaKey]common.QuotaNow),
	}
}

func (m *mockState) MarketNextID() (uint64, error) {
	m.nextID++
	return m.nextID, nil
}

func (m *mockState) MarketItemGet(id uint64) (*Item, bool, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, false, nil
	}
	return item.Clone(), true, nil
}

func (m *mockState) MarketItemPut(item *Item) error {
	m.items[item.ID] = item.Clone()
	return nil
}

func (m *mockState) QuotaGet(module string, addr [20]byte) (common.QuotaNow, error) {
	return m.quotas[quotaKey{module, addr}], nil
}

func (m *mockState) QuotaPut(module string, addr [20]byte, usage common.QuotaNow) error {
	m.quotas[quotaKey{module, addr}] = usage
	return nil
}

type mockFunds struct {
	balances map[[20]byte]*big.Int
}

func (f *mockFunds) balance(addr [20]byte) *big.Int {
	if v, ok := f.balances[addr]; ok {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

func (f *mockFunds) Transfer(from, to [20]byte, amount *big.Int, _ string) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	fromBal := f.balance(from)
	if fromBal.Cmp(amount) < 0 {
		return marketerrors.ErrInsufficientBalance
	}
	f.balances[from] = fromBal.Sub(fromBal, amount)
	toBal := f.balance(to)
	f.balances[to] = toBal.Add(toBal, amount)
	return nil
}

type tokenKey struct {
	asset   [20]byte
	tokenID uint64
}

type mockRegistry struct {
	owners     map[tokenKey][20]byte
	creators   map[tokenKey][20]byte
	authorized map[tokenKey][20]byte
}

func (r *mockRegistry) IsAuthorized(asset [20]byte, tokenID uint64, owner, operator [20]byte) (bool, error) {
	key := tokenKey{asset, tokenID}
	holder, ok := r.owners[key]
	if !ok {
		return false, marketerrors.ErrNoSuchAsset
	}
	return holder == owner && r.authorized[key] == operator, nil
}

func (r *mockRegistry) Transfer(asset [20]byte, tokenID uint64, from, to [20]byte) error {
	key := tokenKey{asset, tokenID}
	if r.owners[key] != from {
		return marketerrors.ErrNotOwner
	}
	r.owners[key] = to
	return nil
}

func (r *mockRegistry) CreatorOf(asset [20]byte, tokenID uint64) ([20]byte, error) {
	return r.creators[tokenKey{asset, tokenID}], nil
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, len(addr)))
	return addr
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
}

func hundredths(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(10_000_000_000_000_000))
}

type fixture struct {
	engine   *Engine
	funds    *mockFunds
	registry *mockRegistry
	buf      *events.Buffer
	vault    [20]byte
	feeAcct  [20]byte
	seller   [20]byte
	asset    [20]byte
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		funds: &mockFunds{balances: make(map[[20]byte]*big.Int)},
		registry: &mockRegistry{
			owners:     make(map[tokenKey][20]byte),
			creators:   make(map[tokenKey][20]byte),
			authorized: make(map[tokenKey][20]byte),
		},
		buf:     &events.Buffer{},
		vault:   newTestAddress(0xBB),
		feeAcct: newTestAddress(0xFE),
		seller:  newTestAddress(0x01),
		asset:   newTestAddress(0xC0),
	}
	calc, err := fees.NewCalculator(fees.PercentRate(1))
	if err != nil {
		t.Fatalf("calculator: %v", err)
	}
	engine := NewEngine()
	engine.SetState(newMockState())
	engine.SetEmitter(f.buf)
	engine.SetNowFunc(func() int64 { return 1_700_000_000 })
	engine.SetRegistry(f.registry)
	engine.SetFunds(f.funds)
	engine.SetVault(f.vault)
	engine.SetFeeAccount(f.feeAcct)
	engine.SetFeeCalculator(calc)
	f.engine = engine
	return f
}

func (f *fixture) mintApproved(tokenID uint64) {
	key := tokenKey{f.asset, tokenID}
	f.registry.owners[key] = f.seller
	f.registry.creators[key] = f.seller
	f.registry.authorized[key] = f.vault
}

func TestEnrollMovesCustody(t *testing.T) {
	f := newFixture(t)
	f.mintApproved(1)
	f.registry.owners[tokenKey{f.asset, 2}] = f.seller

	if _, err := f.engine.Enroll(f.seller, f.asset, 1, big.NewInt(0)); !errors.Is(err, marketerrors.ErrPriceMustBePositive) {
		t.Fatalf("expected PriceMustBePositive, got %v", err)
	}
	if _, err := f.engine.Enroll(f.seller, f.asset, 2, ether(2)); !errors.Is(err, marketerrors.ErrNotAuthorized) {
		t.Fatalf("expected NotAuthorized, got %v", err)
	}
	item, err := f.engine.Enroll(f.seller, f.asset, 1, ether(2))
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if item.ID != 1 || item.Sold {
		t.Fatalf("unexpected item %+v", item)
	}
	if f.registry.owners[tokenKey{f.asset, 1}] != f.vault {
		t.Fatalf("listing must move custody to the vault")
	}
	evts := f.buf.Events()
	if len(evts) != 1 || evts[0].EventType() != EventTypeEnrolled {
		t.Fatalf("expected enrolled event, got %+v", evts)
	}
	attrs := evts[0].(events.Payload).Event().Attributes
	if attrs["price"] != ether(2).String() || attrs["tokenId"] != "1" {
		t.Fatalf("unexpected attributes %+v", attrs)
	}
}

func TestObservedPurchaseScenario(t *testing.T) {
	f := newFixture(t)
	f.mintApproved(1)
	buyer := newTestAddress(0x02)
	f.funds.balances[buyer] = ether(10)
	item, err := f.engine.Enroll(f.seller, f.asset, 1, ether(2))
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	total, err := f.engine.TotalPrice(item.ID)
	if err != nil {
		t.Fatalf("total price: %v", err)
	}
	if total.Cmp(hundredths(202)) != 0 {
		t.Fatalf("expected 2.02, got %s", total)
	}
	for _, id := range []uint64{0, 2} {
		if _, err := f.engine.Purchase(buyer, id, total); !errors.Is(err, marketerrors.ErrNoSuchItem) {
			t.Fatalf("item %d: expected NoSuchItem, got %v", id, err)
		}
	}
	if _, err := f.engine.Purchase(buyer, item.ID, ether(2)); !errors.Is(err, marketerrors.ErrInsufficientPayment) {
		t.Fatalf("expected InsufficientPayment, got %v", err)
	}

	sold, err := f.engine.Purchase(buyer, item.ID, total)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !sold.Sold {
		t.Fatalf("item must be marked sold")
	}
	if got := f.funds.balance(f.seller); got.Cmp(ether(2)) != 0 {
		t.Fatalf("seller should gain 2, got %s", got)
	}
	if got := f.funds.balance(f.feeAcct); got.Cmp(hundredths(2)) != 0 {
		t.Fatalf("fee account should gain 0.02, got %s", got)
	}
	if got := f.funds.balance(f.vault); got.Sign() != 0 {
		t.Fatalf("vault should be empty, got %s", got)
	}
	if f.registry.owners[tokenKey{f.asset, 1}] != buyer {
		t.Fatalf("buyer should hold the token")
	}
	if _, err := f.engine.Purchase(buyer, item.ID, total); !errors.Is(err, marketerrors.ErrAlreadySold) {
		t.Fatalf("expected AlreadySold, got %v", err)
	}
}

func TestPurchaseRefundsOverpayment(t *testing.T) {
	f := newFixture(t)
	f.mintApproved(1)
	buyer := newTestAddress(0x02)
	f.funds.balances[buyer] = ether(10)
	item, err := f.engine.Enroll(f.seller, f.asset, 1, ether(2))
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if _, err := f.engine.Purchase(buyer, item.ID, ether(3)); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	want := new(big.Int).Sub(ether(10), hundredths(202))
	if got := f.funds.balance(buyer); got.Cmp(want) != 0 {
		t.Fatalf("buyer should only pay the total, balance %s want %s", got, want)
	}
}

func TestPurchasePaysCreatorRoyalty(t *testing.T) {
	f := newFixture(t)
	f.mintApproved(1)
	creator := newTestAddress(0x0C)
	f.registry.creators[tokenKey{f.asset, 1}] = creator
	royalty, err := fees.NewCalculator(fees.Rate(75_000))
	if err != nil {
		t.Fatalf("royalty: %v", err)
	}
	f.engine.SetRoyalty(royalty)
	buyer := newTestAddress(0x02)
	f.funds.balances[buyer] = ether(10)
	item, err := f.engine.Enroll(f.seller, f.asset, 1, ether(2))
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if _, err := f.engine.Purchase(buyer, item.ID, hundredths(202)); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if got := f.funds.balance(creator); got.Cmp(hundredths(15)) != 0 {
		t.Fatalf("creator should receive 7.5%% of 2, got %s", got)
	}
	if got := f.funds.balance(f.seller); got.Cmp(hundredths(185)) != 0 {
		t.Fatalf("seller should receive 1.85, got %s", got)
	}
	if got := f.funds.balance(f.feeAcct); got.Cmp(hundredths(2)) != 0 {
		t.Fatalf("fee unchanged by royalty, got %s", got)
	}
}

func TestPausedMarketplace(t *testing.T) {
	f := newFixture(t)
	f.mintApproved(1)
	f.engine.SetPauses(common.PauseSet{common.ModuleMarketplace: true})

	if _, err := f.engine.Enroll(f.seller, f.asset, 1, ether(2)); !errors.Is(err, marketerrors.ErrModulePaused) {
		t.Fatalf("expected ModulePaused, got %v", err)
	}
}

func TestPurchaseWithoutFundsFails(t *testing.T) {
	f := newFixture(t)
	f.mintApproved(1)
	buyer := newTestAddress(0x02)
	item, err := f.engine.Enroll(f.seller, f.asset, 1, ether(2))
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if _, err := f.engine.Purchase(buyer, item.ID, hundredths(202)); !errors.Is(err, marketerrors.ErrInsufficientBalance) {
		t.Fatalf("expected InsufficientBalance, got %v", err)
	}
	stored, _ := f.engine.Item(item.ID)
	if stored.Sold {
		t.Fatalf("failed purchase must not mark the item sold")
	}
}
