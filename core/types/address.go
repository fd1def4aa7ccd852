package types

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
)

// Bech32Prefix is the human readable part of bech32 account strings.
const Bech32Prefix = "mkt"

// ParseAddress decodes an account given either as 0x-prefixed hex or as a
// bech32 string with the mkt prefix. Hex checksums are not enforced.
func ParseAddress(raw string) ([20]byte, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(trimmed), Bech32Prefix+"1") {
		return parseBech32(trimmed)
	}
	if !common.IsHexAddress(trimmed) {
		return [20]byte{}, fmt.Errorf("invalid address %q", raw)
	}
	return common.HexToAddress(trimmed), nil
}

func parseBech32(addr string) ([20]byte, error) {
	var out [20]byte
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return out, fmt.Errorf("decode bech32 account: %w", err)
	}
	if hrp != Bech32Prefix {
		return out, fmt.Errorf("decode bech32 account: unsupported hrp %q", hrp)
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return out, fmt.Errorf("decode bech32 account: %w", err)
	}
	if len(decoded) != len(out) {
		return out, fmt.Errorf("decode bech32 account: invalid address length %d", len(decoded))
	}
	copy(out[:], decoded)
	return out, nil
}

// EncodeBech32 renders addr with the mkt prefix.
func EncodeBech32(addr [20]byte) (string, error) {
	conv, err := bech32.ConvertBits(addr[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(Bech32Prefix, conv)
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(raw string) [20]byte {
	addr, err := ParseAddress(raw)
	if err != nil {
		panic(err)
	}
	return addr
}
