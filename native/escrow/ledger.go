package escrow

import (
	"errors"
	"fmt"
	"math/big"

	marketerrors "nftmarket/core/errors"
	"nftmarket/native/common"
)

var errNilState = errors.New("escrow ledger: state not configured")

type ledgerState interface {
	PendingBidGet(itemID uint64, account [20]byte) (*big.Int, error)
	PendingBidPut(itemID uint64, account [20]byte, amount *big.Int) error
}

// Ledger tracks the funds each account has committed to an item. A credited
// balance can be taken out exactly once: DebitAll zeroes the entry before the
// caller is handed the amount to transfer.
type Ledger struct {
	state ledgerState
}

// NewLedger binds a ledger to the supplied state backend.
func NewLedger(state ledgerState) *Ledger {
	return &Ledger{state: state}
}

func (l *Ledger) ready() error {
	if l == nil || l.state == nil {
		return errNilState
	}
	return nil
}

// Peek returns the pending balance without modifying it.
func (l *Ledger) Peek(itemID uint64, account [20]byte) (*big.Int, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	balance, err := l.state.PendingBidGet(itemID, account)
	if err != nil {
		return nil, err
	}
	return common.Clone(balance), nil
}

// Credit adds amount to the pending balance and returns the new balance. The
// sum is bounded to 256 bits; overflow aborts without writing.
func (l *Ledger) Credit(itemID uint64, account [20]byte, amount *big.Int) (*big.Int, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("escrow: credit %w", marketerrors.ErrInvalidAmount)
	}
	current, err := l.state.PendingBidGet(itemID, account)
	if err != nil {
		return nil, err
	}
	next, err := common.AddChecked(current, amount)
	if err != nil {
		return nil, fmt.Errorf("escrow: credit item %d: %w", itemID, err)
	}
	if err := l.state.PendingBidPut(itemID, account, next); err != nil {
		return nil, err
	}
	return common.Clone(next), nil
}

// DebitAll zeroes the pending balance and returns what it held. A zero
// balance fails with NothingToWithdraw.
func (l *Ledger) DebitAll(itemID uint64, account [20]byte) (*big.Int, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	current, err := l.state.PendingBidGet(itemID, account)
	if err != nil {
		return nil, err
	}
	if current == nil || current.Sign() == 0 {
		return nil, fmt.Errorf("escrow: item %d: %w", itemID, marketerrors.ErrNothingToWithdraw)
	}
	if err := l.state.PendingBidPut(itemID, account, big.NewInt(0)); err != nil {
		return nil, err
	}
	return common.Clone(current), nil
}
