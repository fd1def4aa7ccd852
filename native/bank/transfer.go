package bank

import (
	"errors"
	"fmt"
	"math/big"

	"nftmarket/core/events"
	marketerrors "nftmarket/core/errors"
	"nftmarket/native/common"
)

var errNilState = errors.New("bank: state not configured")

type bankState interface {
	BalanceGet(addr [20]byte) (*big.Int, error)
	BalancePut(addr [20]byte, amount *big.Int) error
}

// Bank moves native funds between accounts. Engines receive payments into
// their vault and pay out from it exclusively through Transfer.
type Bank struct {
	state   bankState
	emitter events.Emitter
}

// NewBank creates a bank bound to state with a no-op emitter.
func NewBank(state bankState) *Bank {
	return &Bank{state: state, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (b *Bank) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		b.emitter = events.NoopEmitter{}
		return
	}
	b.emitter = emitter
}

// Balance returns the spendable balance of addr.
func (b *Bank) Balance(addr [20]byte) (*big.Int, error) {
	if b == nil || b.state == nil {
		return nil, errNilState
	}
	bal, err := b.state.BalanceGet(addr)
	if err != nil {
		return nil, err
	}
	return common.Clone(bal), nil
}

// Credit mints amount into addr. It is only used to seed balances.
func (b *Bank) Credit(addr [20]byte, amount *big.Int) error {
	if b == nil || b.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("bank: credit %w", marketerrors.ErrInvalidAmount)
	}
	current, err := b.state.BalanceGet(addr)
	if err != nil {
		return err
	}
	next, err := common.AddChecked(current, amount)
	if err != nil {
		return err
	}
	if err := b.state.BalancePut(addr, next); err != nil {
		return err
	}
	b.emitter.Emit(events.Credit{Account: addr, Amount: common.Clone(amount)})
	return nil
}

// Transfer moves amount from one account to another. A zero amount is a
// no-op; an insufficient source balance fails without writing.
func (b *Bank) Transfer(from, to [20]byte, amount *big.Int, memo string) error {
	if b == nil || b.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("bank: transfer %w", marketerrors.ErrInvalidAmount)
	}
	fromBal, err := b.state.BalanceGet(from)
	if err != nil {
		return err
	}
	remaining, err := common.SubChecked(fromBal, amount)
	if err != nil {
		return fmt.Errorf("bank: transfer from %s: %w", events.FormatAddress(from), err)
	}
	if from != to {
		toBal, err := b.state.BalanceGet(to)
		if err != nil {
			return err
		}
		credited, err := common.AddChecked(toBal, amount)
		if err != nil {
			return err
		}
		if err := b.state.BalancePut(from, remaining); err != nil {
			return err
		}
		if err := b.state.BalancePut(to, credited); err != nil {
			return err
		}
	}
	b.emitter.Emit(events.Transfer{From: from, To: to, Amount: common.Clone(amount), Memo: memo})
	return nil
}
