package fees

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	marketerrors "nftmarket/core/errors"
	"nftmarket/native/common"
)

// RateDenominator expresses fee rates in parts per million: 50_000 is 5%.
const RateDenominator uint64 = 1_000_000

// Rate is a fee or royalty rate in parts per million.
type Rate uint32

// PercentRate converts a whole percentage into a Rate.
func PercentRate(pct uint32) Rate {
	return Rate(uint64(pct) * RateDenominator / 100)
}

// Validate rejects rates above 100%.
func (r Rate) Validate() error {
	if uint64(r) > RateDenominator {
		return fmt.Errorf("%w: %d ppm", marketerrors.ErrInvalidFeeRate, uint32(r))
	}
	return nil
}

// Split breaks a settlement into its nominal, fee and fee-inclusive parts.
type Split struct {
	Nominal *big.Int
	Fee     *big.Int
	Gross   *big.Int
}

// Calculator converts nominal prices into fee-inclusive payments and back. It
// is a value type; the zero value charges no fee.
type Calculator struct {
	rate Rate
}

// NewCalculator validates the rate and returns a calculator for it.
func NewCalculator(rate Rate) (Calculator, error) {
	if err := rate.Validate(); err != nil {
		return Calculator{}, err
	}
	return Calculator{rate: rate}, nil
}

// Rate returns the configured fee rate.
func (c Calculator) Rate() Rate { return c.rate }

func (c Calculator) mulDiv(amount *big.Int, num, den uint64) (*big.Int, error) {
	x, err := common.ToUint256(amount)
	if err != nil {
		return nil, err
	}
	out, overflow := new(uint256.Int).MulDivOverflow(x, uint256.NewInt(num), uint256.NewInt(den))
	if overflow {
		return nil, fmt.Errorf("%w: %s * %d / %d", marketerrors.ErrOverflow, amount, num, den)
	}
	return out.ToBig(), nil
}

func (c Calculator) mulDivUp(amount *big.Int, num, den uint64) (*big.Int, error) {
	out, err := c.mulDiv(amount, num, den)
	if err != nil {
		return nil, err
	}
	product := new(big.Int).Mul(amount, new(big.Int).SetUint64(num))
	if new(big.Int).Mod(product, new(big.Int).SetUint64(den)).Sign() == 0 {
		return out, nil
	}
	out.Add(out, big.NewInt(1))
	if _, err := common.ToUint256(out); err != nil {
		return nil, fmt.Errorf("%w: %s * %d / %d", marketerrors.ErrOverflow, amount, num, den)
	}
	return out, nil
}

// WithFee returns ceil(amount * (1 + rate)). Rounding up keeps
// StripFee(WithFee(x)) == x for every x.
func (c Calculator) WithFee(amount *big.Int) (*big.Int, error) {
	return c.mulDivUp(amount, RateDenominator+uint64(c.rate), RateDenominator)
}

// StripFee returns floor(gross / (1 + rate)). Settlement never relies on it;
// it only converts an incoming payment into the nominal amount it covers.
func (c Calculator) StripFee(gross *big.Int) (*big.Int, error) {
	return c.mulDiv(gross, RateDenominator, RateDenominator+uint64(c.rate))
}

// Fee returns WithFee(amount) - amount, the fee rounded up.
func (c Calculator) Fee(amount *big.Int) (*big.Int, error) {
	gross, err := c.WithFee(amount)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(gross, common.Clone(amount)), nil
}

// Quote computes the full split for a nominal amount.
func (c Calculator) Quote(nominal *big.Int) (Split, error) {
	gross, err := c.WithFee(nominal)
	if err != nil {
		return Split{}, err
	}
	base := common.Clone(nominal)
	return Split{
		Nominal: base,
		Fee:     new(big.Int).Sub(gross, base),
		Gross:   gross,
	}, nil
}

// Portion returns floor(amount * rate), used for royalties carved out of a
// nominal price.
func (c Calculator) Portion(amount *big.Int) (*big.Int, error) {
	return c.mulDiv(amount, uint64(c.rate), RateDenominator)
}
