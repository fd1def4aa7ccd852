package events

import (
	"math/big"
	"strings"

	"nftmarket/core/types"
)

const (
	// TypeTransfer is emitted for every balance movement performed by the bank.
	TypeTransfer = "bank.transfer"
	// TypeCredit is emitted when balances are seeded from genesis.
	TypeCredit = "bank.credit"
)

type Transfer struct {
	From   [20]byte
	To     [20]byte
	Amount *big.Int
	Memo   string
}

func (Transfer) EventType() string { return TypeTransfer }

func (e Transfer) Event() *types.Event {
	attrs := map[string]string{
		"from":   FormatAddress(e.From),
		"to":     FormatAddress(e.To),
		"amount": FormatAmount(e.Amount),
	}
	if memo := strings.TrimSpace(e.Memo); memo != "" {
		attrs["memo"] = memo
	}
	return &types.Event{Type: TypeTransfer, Attributes: attrs}
}

type Credit struct {
	Account [20]byte
	Amount  *big.Int
}

func (Credit) EventType() string { return TypeCredit }

func (e Credit) Event() *types.Event {
	return &types.Event{
		Type: TypeCredit,
		Attributes: map[string]string{
			"account": FormatAddress(e.Account),
			"amount":  FormatAmount(e.Amount),
		},
	}
}
