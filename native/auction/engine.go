package auction

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"nftmarket/core/events"
	marketerrors "nftmarket/core/errors"
	"nftmarket/core/types"
	"nftmarket/native/common"
	"nftmarket/native/escrow"
	"nftmarket/native/fees"
)

var (
	errNilState    = errors.New("auction engine: state not configured")
	errNilRegistry = errors.New("auction engine: asset registry not configured")
	errNilFunds    = errors.New("auction engine: funds not configured")
	errNilVault    = errors.New("auction engine: vault not configured")
)

type engineState interface {
	AuctionNextID() (uint64, error)
	AuctionItemGet(id uint64) (*Item, bool, error)
	AuctionItemPut(item *Item) error
	PendingBidGet(itemID uint64, account [20]byte) (*big.Int, error)
	PendingBidPut(itemID uint64, account [20]byte, amount *big.Int) error
	QuotaGet(module string, addr [20]byte) (common.QuotaNow, error)
	QuotaPut(module string, addr [20]byte, usage common.QuotaNow) error
}

// Engine runs the timed auction state machine. Bids are escrowed in the
// vault account and tracked per bidder in the escrow ledger; the asset stays
// with the seller until settlement.
type Engine struct {
	state      engineState
	ledger     *escrow.Ledger
	emitter    events.Emitter
	registry   common.AssetRegistry
	funds      common.Funds
	vault      [20]byte
	feeAccount [20]byte
	calc       fees.Calculator
	minBidUnit *big.Int
	admins     map[[20]byte]struct{}
	pauses     common.PauseView
	quota      common.Quota
	nowFn      func() int64
}

// NewEngine creates an auction engine with a no-op emitter, no fee and a
// minimum bid unit of one base unit.
func NewEngine() *Engine {
	return &Engine{
		emitter:    events.NoopEmitter{},
		minBidUnit: big.NewInt(1),
		admins:     make(map[[20]byte]struct{}),
		nowFn:      func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend and binds the escrow ledger to it.
func (e *Engine) SetState(state engineState) {
	e.state = state
	if state == nil {
		e.ledger = nil
		return
	}
	e.ledger = escrow.NewLedger(state)
}

// SetEmitter configures the event emitter used by the engine. Passing nil resets
// the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source. Primarily intended for tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) SetRegistry(registry common.AssetRegistry) { e.registry = registry }

func (e *Engine) SetFunds(funds common.Funds) { e.funds = funds }

// SetVault configures the account that holds escrowed bids. It is also the
// operator identity the registry must authorize.
func (e *Engine) SetVault(addr [20]byte) { e.vault = addr }

// SetFeeAccount configures the account that receives settlement fees. The fee
// account is always privileged.
func (e *Engine) SetFeeAccount(addr [20]byte) { e.feeAccount = addr }

func (e *Engine) SetFeeCalculator(calc fees.Calculator) { e.calc = calc }

// SetMinBidUnit configures the bid increment and alignment unit. Values below
// one are clamped to one.
func (e *Engine) SetMinBidUnit(unit *big.Int) {
	if unit == nil || unit.Sign() <= 0 {
		e.minBidUnit = big.NewInt(1)
		return
	}
	e.minBidUnit = new(big.Int).Set(unit)
}

// SetAdmins replaces the additional privileged accounts.
func (e *Engine) SetAdmins(admins [][20]byte) {
	e.admins = make(map[[20]byte]struct{}, len(admins))
	for _, addr := range admins {
		e.admins[addr] = struct{}{}
	}
}

func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetQuota configures the per-bidder bid quota.
func (e *Engine) SetQuota(q common.Quota) { e.quota = q }

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(auctionEvent{evt: evt})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil || e.ledger == nil {
		return errNilState
	}
	return nil
}

func (e *Engine) readyForTransfers() error {
	if err := e.ready(); err != nil {
		return err
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
	item, ok, err := e.state.AuctionItemGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || item == nil {
		return nil, fmt.Errorf("auction: item %d: %w", id, marketerrors.ErrNoSuchItem)
	}
	return item, nil
}

func (e *Engine) requirePrivileged(caller [20]byte) error {
	if !common.Privileged(caller, e.feeAccount, e.admins) {
		return fmt.Errorf("auction: %s: %w", events.FormatAddress(caller), marketerrors.ErrNotPrivileged)
	}
	return nil
}

// Enroll lists a token for auction. The registry must already authorize the
// vault to move the token out of the seller's custody; the token itself stays
// with the seller until settlement.
func (e *Engine) Enroll(seller [20]byte, startPrice *big.Int, endAt int64, asset [20]byte, tokenID uint64) (*Item, error) {
	if err := common.Guard(e.pauses, common.ModuleAuction); err != nil {
		return nil, err
	}
	if err := e.readyForTransfers(); err != nil {
		return nil, err
	}
	if e.registry == nil {
		return nil, errNilRegistry
	}
	if startPrice == nil || startPrice.Sign() <= 0 {
		return nil, fmt.Errorf("auction: start price: %w", marketerrors.ErrPriceMustBePositive)
	}
	if _, err := common.ToUint256(startPrice); err != nil {
		return nil, err
	}
	now := e.now()
	if endAt <= now {
		return nil, fmt.Errorf("auction: end %d not after %d: %w", endAt, now, marketerrors.ErrInvalidEndTime)
	}
	ok, err := e.registry.IsAuthorized(asset, tokenID, seller, e.vault)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("auction: enroll %s/%d: %w", events.FormatAddress(asset), tokenID, marketerrors.ErrNotAuthorized)
	}
	id, err := e.state.AuctionNextID()
	if err != nil {
		return nil, err
	}
	item := &Item{
		ID:         id,
		Asset:      asset,
		TokenID:    tokenID,
		Seller:     seller,
		StartPrice: common.Clone(startPrice),
		TopBid:     common.Clone(startPrice),
		StartAt:    now,
		EndAt:      endAt,
		Status:     StatusEnrolled,
	}
	if err := e.state.AuctionItemPut(item); err != nil {
		return nil, err
	}
	e.emit(NewEnrolledEvent(item))
	return item.Clone(), nil
}

// Bid escrows payment against the item. The fee is stripped from payment and
// the remainder is added to the bidder's pending balance; the new aggregate
// must beat the top bid by at least one bid unit and be a multiple of it.
func (e *Engine) Bid(bidder [20]byte, itemID uint64, payment *big.Int) (*Item, error) {
	if err := common.Guard(e.pauses, common.ModuleAuction); err != nil {
		return nil, err
	}
	if err := e.readyForTransfers(); err != nil {
		return nil, err
	}
	item, err := e.load(itemID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if item.Status != StatusEnrolled || now >= item.EndAt {
		return nil, fmt.Errorf("auction: item %d: %w", itemID, marketerrors.ErrAuctionClosed)
	}
	nominal, err := e.calc.StripFee(payment)
	if err != nil {
		return nil, err
	}
	pending, err := e.ledger.Peek(itemID, bidder)
	if err != nil {
		return nil, err
	}
	aggregated, err := common.AddChecked(pending, nominal)
	if err != nil {
		return nil, err
	}
	threshold, err := common.AddChecked(item.TopBid, e.minBidUnit)
	if err != nil {
		return nil, err
	}
	if aggregated.Cmp(threshold) < 0 {
		return nil, fmt.Errorf("auction: aggregate %s below %s: %w", aggregated, threshold, marketerrors.ErrBidTooSmall)
	}
	if new(big.Int).Mod(aggregated, e.minBidUnit).Sign() != 0 {
		return nil, fmt.Errorf("auction: aggregate %s not a multiple of %s: %w", aggregated, e.minBidUnit, marketerrors.ErrBidNotUnitAligned)
	}
	if err := common.ConsumeQuota(e.state, common.ModuleAuction, e.quota, now, bidder, nominal); err != nil {
		return nil, err
	}
	if err := e.funds.Transfer(bidder, e.vault, payment, "auction bid"); err != nil {
		return nil, err
	}
	if _, err := e.ledger.Credit(itemID, bidder, nominal); err != nil {
		return nil, err
	}
	item.TopBid = aggregated
	item.TopBidder = bidder
	if err := e.state.AuctionItemPut(item); err != nil {
		return nil, err
	}
	e.emit(NewBidEvent(item, bidder, nominal))
	return item.Clone(), nil
}

// Withdraw returns the caller's pending balance. The current leader of an
// open auction cannot withdraw. Withdrawals are not subject to module pauses
// so escrowed funds can always leave.
func (e *Engine) Withdraw(caller [20]byte, itemID uint64) (*big.Int, error) {
	if err := e.readyForTransfers(); err != nil {
		return nil, err
	}
	item, err := e.load(itemID)
	if err != nil {
		return nil, err
	}
	if item.Status == StatusEnrolled && item.HasBidder() && item.TopBidder == caller {
		return nil, fmt.Errorf("auction: item %d: %w", itemID, marketerrors.ErrTopBidderCannotWithdraw)
	}
	amount, err := e.ledger.DebitAll(itemID, caller)
	if err != nil {
		return nil, err
	}
	if err := e.funds.Transfer(e.vault, caller, amount, "auction withdraw"); err != nil {
		return nil, err
	}
	e.emit(NewWithdrawEvent(itemID, caller, amount))
	return amount, nil
}

// Cancel lets the seller abort an open auction. No funds move; every pending
// balance, including the former leader's, becomes withdrawable.
func (e *Engine) Cancel(caller [20]byte, itemID uint64) (*Item, error) {
	if err := common.Guard(e.pauses, common.ModuleAuction); err != nil {
		return nil, err
	}
	if err := e.ready(); err != nil {
		return nil, err
	}
	item, err := e.load(itemID)
	if err != nil {
		return nil, err
	}
	if item.Seller != caller {
		return nil, fmt.Errorf("auction: item %d: %w", itemID, marketerrors.ErrNotSeller)
	}
	return e.cancel(item)
}

// ForceCancel cancels an open auction on behalf of a privileged caller.
func (e *Engine) ForceCancel(caller [20]byte, itemID uint64) (*Item, error) {
	if err := common.Guard(e.pauses, common.ModuleAuction); err != nil {
		return nil, err
	}
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.requirePrivileged(caller); err != nil {
		return nil, err
	}
	item, err := e.load(itemID)
	if err != nil {
		return nil, err
	}
	return e.cancel(item)
}

func (e *Engine) cancel(item *Item) (*Item, error) {
	if item.Status != StatusEnrolled {
		return nil, fmt.Errorf("auction: item %d is %s: %w", item.ID, item.Status, marketerrors.ErrAuctionClosed)
	}
	item.Status = StatusCancelled
	if err := e.state.AuctionItemPut(item); err != nil {
		return nil, err
	}
	e.emit(NewCancelEvent(item))
	return item.Clone(), nil
}

// End settles an auction once its end time has passed. Anyone may call it.
func (e *Engine) End(itemID uint64) (*Item, error) {
	if err := common.Guard(e.pauses, common.ModuleAuction); err != nil {
		return nil, err
	}
	if err := e.readyForTransfers(); err != nil {
		return nil, err
	}
	item, err := e.load(itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != StatusEnrolled {
		return nil, fmt.Errorf("auction: item %d is %s: %w", itemID, item.Status, marketerrors.ErrAuctionClosed)
	}
	if now := e.now(); now < item.EndAt {
		return nil, fmt.Errorf("auction: item %d ends at %d: %w", itemID, item.EndAt, marketerrors.ErrTooEarly)
	}
	return e.settle(item)
}

// ForceEnd settles an open auction immediately on behalf of a privileged
// caller.
func (e *Engine) ForceEnd(caller [20]byte, itemID uint64) (*Item, error) {
	if err := common.Guard(e.pauses, common.ModuleAuction); err != nil {
		return nil, err
	}
	if err := e.readyForTransfers(); err != nil {
		return nil, err
	}
	if err := e.requirePrivileged(caller); err != nil {
		return nil, err
	}
	item, err := e.load(itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != StatusEnrolled {
		return nil, fmt.Errorf("auction: item %d is %s: %w", itemID, item.Status, marketerrors.ErrAuctionClosed)
	}
	return e.settle(item)
}

// settle closes the item. With a leader, the leader's balance is zeroed
// before any payout: the seller receives the top bid, the fee account the
// fee on it, and custody moves from seller to leader.
func (e *Engine) settle(item *Item) (*Item, error) {
	fee := big.NewInt(0)
	if !item.HasBidder() {
		item.Status = StatusEnded
		if err := e.state.AuctionItemPut(item); err != nil {
			return nil, err
		}
		e.emit(NewEndEvent(item, fee))
		return item.Clone(), nil
	}
	if e.registry == nil {
		return nil, errNilRegistry
	}
	held, err := e.ledger.DebitAll(item.ID, item.TopBidder)
	if err != nil {
		return nil, err
	}
	excess, err := common.SubChecked(held, item.TopBid)
	if err != nil {
		return nil, err
	}
	fee, err = e.calc.Fee(item.TopBid)
	if err != nil {
		return nil, err
	}
	item.Status = StatusEnded
	if err := e.state.AuctionItemPut(item); err != nil {
		return nil, err
	}
	if err := e.funds.Transfer(e.vault, item.Seller, item.TopBid, "auction proceeds"); err != nil {
		return nil, err
	}
	if err := e.funds.Transfer(e.vault, e.feeAccount, fee, "auction fee"); err != nil {
		return nil, err
	}
	if err := e.funds.Transfer(e.vault, item.TopBidder, excess, "auction excess"); err != nil {
		return nil, err
	}
	if err := e.registry.Transfer(item.Asset, item.TokenID, item.Seller, item.TopBidder); err != nil {
		return nil, err
	}
	e.emit(NewEndEvent(item, fee))
	return item.Clone(), nil
}

// PriceWithFee returns the fee-inclusive payment for a nominal amount.
func (e *Engine) PriceWithFee(amount *big.Int) (*big.Int, error) {
	return e.calc.WithFee(amount)
}

// Item returns a copy of the auction item.
func (e *Engine) Item(itemID uint64) (*Item, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	item, err := e.load(itemID)
	if err != nil {
		return nil, err
	}
	return item.Clone(), nil
}

// PendingBid returns the account's escrowed balance for the item.
func (e *Engine) PendingBid(itemID uint64, account [20]byte) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if _, err := e.load(itemID); err != nil {
		return nil, err
	}
	return e.ledger.Peek(itemID, account)
}
