package marketplace

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"nftmarket/core/events"
	marketerrors "nftmarket/core/errors"
	"nftmarket/core/types"
	"nftmarket/native/common"
	"nftmarket/native/fees"
)

var (
	errNilState    = errors.New("marketplace engine: state not configured")
	errNilRegistry = errors.New("marketplace engine: asset registry not configured")
	errNilFunds    = errors.New("marketplace engine: funds not configured")
	errNilVault    = errors.New("marketplace engine: vault not configured")
)

type engineState interface {
	MarketNextID() (uint64, error)
	MarketItemGet(id uint64) (*Item, bool, error)
	MarketItemPut(item *Item) error
	QuotaGet(module string, addr [20]byte) (common.QuotaNow, error)
	QuotaPut(module string, addr [20]byte, usage common.QuotaNow) error
}

type creatorLookup interface {
	CreatorOf(asset [20]byte, tokenID uint64) ([20]byte, error)
}

// Engine runs fixed-price listings. Listed tokens are held by the vault
// account until a buyer pays the fee-inclusive total.
type Engine struct {
	state      engineState
	emitter    events.Emitter
	registry   common.AssetRegistry
	funds      common.Funds
	vault      [20]byte
	feeAccount [20]byte
	calc       fees.Calculator
	royalty    fees.Calculator
	pauses     common.PauseView
	quota      common.Quota
	nowFn      func() int64
}

// NewEngine creates a marketplace engine with a no-op emitter and no fee.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine. Passing nil resets
// the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for quota epochs.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetRegistry configures custody. When the registry also reports creators,
// royalties are paid to them.
func (e *Engine) SetRegistry(registry common.AssetRegistry) { e.registry = registry }

func (e *Engine) SetFunds(funds common.Funds) { e.funds = funds }

// SetVault configures the escrow account that holds listed tokens and
// in-flight payments.
func (e *Engine) SetVault(addr [20]byte) { e.vault = addr }

func (e *Engine) SetFeeAccount(addr [20]byte) { e.feeAccount = addr }

func (e *Engine) SetFeeCalculator(calc fees.Calculator) { e.calc = calc }

// SetRoyalty configures the share of the price paid to the token creator.
func (e *Engine) SetRoyalty(calc fees.Calculator) { e.royalty = calc }

func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetQuota configures the per-buyer purchase quota.
func (e *Engine) SetQuota(q common.Quota) { e.quota = q }

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(marketEvent{evt: evt})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) readyForTransfers() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.registry == nil {
		return errNilRegistry
	}
	if e.funds == nil {
		return errNilFunds
	}
	if e.vault == ([20]byte{}) {
		return errNilVault
	}
	return nil
}

func (e *Engine) load(id uint64) (*Item, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if id == 0 {
		return nil, fmt.Errorf("marketplace: item 0: %w", marketerrors.ErrNoSuchItem)
	}
	item, ok, err := e.state.MarketItemGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || item == nil {
		return nil, fmt.Errorf("marketplace: item %d: %w", id, marketerrors.ErrNoSuchItem)
	}
	return item, nil
}

// Enroll lists a token at a fixed price and moves it into the vault.
func (e *Engine) Enroll(seller [20]byte, asset [20]byte, tokenID uint64, price *big.Int) (*Item, error) {
	if err := common.Guard(e.pauses, common.ModuleMarketplace); err != nil {
		return nil, err
	}
	if err := e.readyForTransfers(); err != nil {
		return nil, err
	}
	if price == nil || price.Sign() <= 0 {
		return nil, fmt.Errorf("marketplace: price: %w", marketerrors.ErrPriceMustBePositive)
	}
	// Listing a price whose total overflows would make the item unbuyable.
	if _, err := e.calc.WithFee(price); err != nil {
		return nil, err
	}
	ok, err := e.registry.IsAuthorized(asset, tokenID, seller, e.vault)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("marketplace: enroll %s/%d: %w", events.FormatAddress(asset), tokenID, marketerrors.ErrNotAuthorized)
	}
	id, err := e.state.MarketNextID()
	if err != nil {
		return nil, err
	}
	item := &Item{
		ID:      id,
		Asset:   asset,
		TokenID: tokenID,
		Seller:  seller,
		Price:   common.Clone(price),
	}
	if err := e.state.MarketItemPut(item); err != nil {
		return nil, err
	}
	if err := e.registry.Transfer(asset, tokenID, seller, e.vault); err != nil {
		return nil, err
	}
	e.emit(NewEnrolledEvent(item))
	return item.Clone(), nil
}

// TotalPrice returns the fee-inclusive amount a buyer must pay.
func (e *Engine) TotalPrice(itemID uint64) (*big.Int, error) {
	item, err := e.load(itemID)
	if err != nil {
		return nil, err
	}
	return e.calc.WithFee(item.Price)
}

// Item returns a copy of the listing.
func (e *Engine) Item(itemID uint64) (*Item, error) {
	item, err := e.load(itemID)
	if err != nil {
		return nil, err
	}
	return item.Clone(), nil
}

// Purchase settles a listing. The seller receives the price less any creator
// royalty, the fee account the fee, and any payment above the total is
// refunded to the buyer.
func (e *Engine) Purchase(buyer [20]byte, itemID uint64, payment *big.Int) (*Item, error) {
	if err := common.Guard(e.pauses, common.ModuleMarketplace); err != nil {
		return nil, err
	}
	if err := e.readyForTransfers(); err != nil {
		return nil, err
	}
	item, err := e.load(itemID)
	if err != nil {
		return nil, err
	}
	if item.Sold {
		return nil, fmt.Errorf("marketplace: item %d: %w", itemID, marketerrors.ErrAlreadySold)
	}
	split, err := e.calc.Quote(item.Price)
	if err != nil {
		return nil, err
	}
	paid, err := common.ToUint256(payment)
	if err != nil {
		return nil, err
	}
	if paid.ToBig().Cmp(split.Gross) < 0 {
		return nil, fmt.Errorf("marketplace: paid %s, need %s: %w", paid.ToBig(), split.Gross, marketerrors.ErrInsufficientPayment)
	}
	refund := new(big.Int).Sub(paid.ToBig(), split.Gross)
	creator, royalty, err := e.royaltyFor(item)
	if err != nil {
		return nil, err
	}
	if err := common.ConsumeQuota(e.state, common.ModuleMarketplace, e.quota, e.now(), buyer, split.Gross); err != nil {
		return nil, err
	}
	if err := e.funds.Transfer(buyer, e.vault, payment, "marketplace payment"); err != nil {
		return nil, err
	}
	item.Sold = true
	if err := e.state.MarketItemPut(item); err != nil {
		return nil, err
	}
	proceeds := new(big.Int).Sub(item.Price, royalty)
	if err := e.funds.Transfer(e.vault, item.Seller, proceeds, "marketplace proceeds"); err != nil {
		return nil, err
	}
	if err := e.funds.Transfer(e.vault, creator, royalty, "marketplace royalty"); err != nil {
		return nil, err
	}
	if err := e.funds.Transfer(e.vault, e.feeAccount, split.Fee, "marketplace fee"); err != nil {
		return nil, err
	}
	if err := e.funds.Transfer(e.vault, buyer, refund, "marketplace refund"); err != nil {
		return nil, err
	}
	if err := e.registry.Transfer(item.Asset, item.TokenID, e.vault, buyer); err != nil {
		return nil, err
	}
	e.emit(NewBoughtEvent(item, buyer, split))
	return item.Clone(), nil
}

func (e *Engine) royaltyFor(item *Item) ([20]byte, *big.Int, error) {
	none := big.NewInt(0)
	if e.royalty.Rate() == 0 {
		return [20]byte{}, none, nil
	}
	lookup, ok := e.registry.(creatorLookup)
	if !ok {
		return [20]byte{}, none, nil
	}
	creator, err := lookup.CreatorOf(item.Asset, item.TokenID)
	if err != nil {
		return [20]byte{}, nil, err
	}
	if creator == ([20]byte{}) || creator == item.Seller {
		return [20]byte{}, none, nil
	}
	royalty, err := e.royalty.Portion(item.Price)
	if err != nil {
		return [20]byte{}, nil, err
	}
	return creator, royalty, nil
}
