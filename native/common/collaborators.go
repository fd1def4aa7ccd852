package common

import "math/big"

// AssetRegistry is the custody interface engines consume. The registry owns
// canonical title; engines only ask whether they may move a token and then
// move it.
type AssetRegistry interface {
	IsAuthorized(asset [20]byte, tokenID uint64, owner, operator [20]byte) (bool, error)
	Transfer(asset [20]byte, tokenID uint64, from, to [20]byte) error
}

// Funds moves native balances between accounts.
type Funds interface {
	Transfer(from, to [20]byte, amount *big.Int, memo string) error
}

// Privileged reports whether caller is the fee account or one of admins.
func Privileged(caller, feeAccount [20]byte, admins map[[20]byte]struct{}) bool {
	if caller == ([20]byte{}) {
		return false
	}
	if caller == feeAccount {
		return true
	}
	_, ok := admins[caller]
	return ok
}
