package fees

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	marketerrors "nftmarket/core/errors"
)

// ParseRate accepts either a raw parts-per-million integer ("50000") or a
// percentage with an explicit suffix ("5%", "2.5%").
func ParseRate(raw string) (Rate, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}
	if strings.HasSuffix(trimmed, "%") {
		pct := strings.TrimSpace(strings.TrimSuffix(trimmed, "%"))
		value, ok := new(big.Rat).SetString(pct)
		if !ok || value.Sign() < 0 {
			return 0, fmt.Errorf("fees: invalid percentage %q", raw)
		}
		ppm := new(big.Rat).Mul(value, new(big.Rat).SetUint64(RateDenominator/100))
		if !ppm.IsInt() {
			return 0, fmt.Errorf("fees: percentage %q finer than one part per million", raw)
		}
		num := ppm.Num()
		if !num.IsUint64() || num.Uint64() > RateDenominator {
			return 0, fmt.Errorf("%w: %s", marketerrors.ErrInvalidFeeRate, raw)
		}
		return Rate(num.Uint64()), nil
	}
	parsed, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("fees: invalid rate %q: %w", raw, err)
	}
	rate := Rate(parsed)
	if err := rate.Validate(); err != nil {
		return 0, err
	}
	return rate, nil
}

// String renders the rate as a percentage, e.g. "2.5%".
func (r Rate) String() string {
	pct := new(big.Rat).SetFrac(new(big.Int).SetUint64(uint64(r)), new(big.Int).SetUint64(RateDenominator/100))
	text := pct.FloatString(4)
	text = strings.TrimRight(text, "0")
	text = strings.TrimSuffix(text, ".")
	return text + "%"
}

// MarshalText implements encoding.TextMarshaler.
func (r Rate) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so rates can be written as
// "5%" in TOML and JSON configuration.
func (r *Rate) UnmarshalText(text []byte) error {
	parsed, err := ParseRate(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
