package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

// FormatAddress renders a 20-byte account in EIP-55 checksum form.
func FormatAddress(addr [20]byte) string {
	return common.Address(addr).Hex()
}

// FormatAmount renders an amount in base units; nil renders as "0".
func FormatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

// FormatUint renders identifiers and token ids.
func FormatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// FormatInt renders signed values such as unix timestamps.
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
