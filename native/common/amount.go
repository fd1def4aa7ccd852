package common

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	marketerrors "nftmarket/core/errors"
)

// ToUint256 converts v into the engine's 256-bit unsigned amount domain. A nil
// value is treated as zero.
func ToUint256(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", marketerrors.ErrInvalidAmount, v)
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("%w: %s exceeds 256 bits", marketerrors.ErrOverflow, v)
	}
	return out, nil
}

// AddChecked returns a+b, failing instead of wrapping when the sum leaves the
// 256-bit domain.
func AddChecked(a, b *big.Int) (*big.Int, error) {
	x, err := ToUint256(a)
	if err != nil {
		return nil, err
	}
	y, err := ToUint256(b)
	if err != nil {
		return nil, err
	}
	sum, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, fmt.Errorf("%w: %s + %s", marketerrors.ErrOverflow, a, b)
	}
	return sum.ToBig(), nil
}

// SubChecked returns a-b and fails when b exceeds a.
func SubChecked(a, b *big.Int) (*big.Int, error) {
	x, err := ToUint256(a)
	if err != nil {
		return nil, err
	}
	y, err := ToUint256(b)
	if err != nil {
		return nil, err
	}
	diff, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, fmt.Errorf("%w: %s - %s", marketerrors.ErrInsufficientBalance, a, b)
	}
	return diff.ToBig(), nil
}

// Clone returns a copy of v, substituting zero for nil.
func Clone(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
