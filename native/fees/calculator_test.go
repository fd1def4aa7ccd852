package fees

import (
	"errors"
	"math/big"
	"testing"

	marketerrors "nftmarket/core/errors"
)

func ethToWei(num, den int64) *big.Int {
	wei := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	wei.Mul(wei, big.NewInt(num))
	return wei.Div(wei, big.NewInt(den))
}

func TestWithFeeMatchesMarketplaceQuote(t *testing.T) {
	calc, err := NewCalculator(PercentRate(1))
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	total, err := calc.WithFee(ethToWei(2, 1))
	if err != nil {
		t.Fatalf("with fee: %v", err)
	}
	if want := ethToWei(202, 100); total.Cmp(want) != 0 {
		t.Fatalf("total mismatch: got %s want %s", total, want)
	}
	fee, err := calc.Fee(ethToWei(2, 1))
	if err != nil {
		t.Fatalf("fee: %v", err)
	}
	if want := ethToWei(2, 100); fee.Cmp(want) != 0 {
		t.Fatalf("fee mismatch: got %s want %s", fee, want)
	}
}

func TestAuctionSettlementFee(t *testing.T) {
	calc, _ := NewCalculator(PercentRate(1))
	fee, err := calc.Fee(ethToWei(5, 10_000))
	if err != nil {
		t.Fatalf("fee: %v", err)
	}
	if want := ethToWei(5, 1_000_000); fee.Cmp(want) != 0 {
		t.Fatalf("fee mismatch: got %s want %s", fee, want)
	}
}

func TestStripFeeRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		rate   Rate
		amount *big.Int
	}{
		{"zero", PercentRate(1), big.NewInt(0)},
		{"one wei", PercentRate(1), big.NewInt(1)},
		{"odd", 25_000, big.NewInt(999_999_937)},
		{"bid unit", PercentRate(1), ethToWei(1, 10_000)},
		{"five percent", 50_000, ethToWei(3, 7)},
		{"free", 0, big.NewInt(12345)},
		{"full rate", Rate(RateDenominator), big.NewInt(77)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calc, err := NewCalculator(tc.rate)
			if err != nil {
				t.Fatalf("new calculator: %v", err)
			}
			gross, err := calc.WithFee(tc.amount)
			if err != nil {
				t.Fatalf("with fee: %v", err)
			}
			back, err := calc.StripFee(gross)
			if err != nil {
				t.Fatalf("strip fee: %v", err)
			}
			if back.Cmp(tc.amount) != 0 {
				t.Fatalf("round trip drifted: amount %s back %s", tc.amount, back)
			}
		})
	}
}

func TestWithFeeRoundsUp(t *testing.T) {
	calc, _ := NewCalculator(PercentRate(3))
	for n := int64(0); n < 2_000; n++ {
		nominal := big.NewInt(n)
		gross, err := calc.WithFee(nominal)
		if err != nil {
			t.Fatalf("with fee: %v", err)
		}
		// gross is the smallest payment whose stripped value covers n.
		if back, _ := calc.StripFee(gross); back.Cmp(nominal) != 0 {
			t.Fatalf("nominal %d: gross %s strips to %s", n, gross, back)
		}
		if n > 0 {
			less := new(big.Int).Sub(gross, big.NewInt(1))
			if back, _ := calc.StripFee(less); back.Cmp(nominal) >= 0 {
				t.Fatalf("nominal %d: gross %s is not minimal", n, gross)
			}
		}
	}
	gross, _ := calc.WithFee(big.NewInt(14))
	if gross.Int64() != 15 {
		t.Fatalf("expected 14 at 3%% to cost 15, got %s", gross)
	}
}

func TestStripFeeExactForAlignedAmounts(t *testing.T) {
	calc, _ := NewCalculator(PercentRate(1))
	for _, n := range []int64{2, 3, 4, 5} {
		nominal := ethToWei(n, 10_000)
		gross, _ := calc.WithFee(nominal)
		back, _ := calc.StripFee(gross)
		if back.Cmp(nominal) != 0 {
			t.Fatalf("expected exact round trip for %s, got %s", nominal, back)
		}
	}
}

func TestWithFeeMonotonic(t *testing.T) {
	calc, _ := NewCalculator(33_333)
	prev := big.NewInt(-1)
	for i := int64(0); i < 500; i++ {
		got, err := calc.WithFee(big.NewInt(i * 37))
		if err != nil {
			t.Fatalf("with fee: %v", err)
		}
		if got.Cmp(prev) < 0 {
			t.Fatalf("with fee not monotonic at %d", i)
		}
		prev = got
	}
}

func TestCalculatorRejectsOverflowAndBadInput(t *testing.T) {
	if _, err := NewCalculator(Rate(RateDenominator + 1)); !errors.Is(err, marketerrors.ErrInvalidFeeRate) {
		t.Fatalf("expected invalid rate, got %v", err)
	}
	calc, _ := NewCalculator(PercentRate(1))
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	if _, err := calc.WithFee(max); !errors.Is(err, marketerrors.ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := calc.WithFee(big.NewInt(-5)); !errors.Is(err, marketerrors.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if got, err := calc.StripFee(max); err != nil || got.Cmp(max) >= 0 {
		t.Fatalf("strip fee of max should shrink without overflow: %v %v", got, err)
	}
}

func TestPortion(t *testing.T) {
	calc, _ := NewCalculator(75_000)
	royalty, err := calc.Portion(big.NewInt(2_000))
	if err != nil {
		t.Fatalf("portion: %v", err)
	}
	if royalty.Int64() != 150 {
		t.Fatalf("unexpected royalty %s", royalty)
	}
}

func TestParseRate(t *testing.T) {
	cases := map[string]Rate{
		"5%":    50_000,
		"2.5%":  25_000,
		"7.5 %": 75_000,
		"1%":    10_000,
		"50000": 50_000,
		"":      0,
	}
	for raw, want := range cases {
		got, err := ParseRate(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %d want %d", raw, got, want)
		}
	}
	for _, raw := range []string{"101%", "abc", "0.00001%", "-1%", "2000000"} {
		if _, err := ParseRate(raw); err == nil {
			t.Fatalf("expected %q to fail", raw)
		}
	}
	if s := Rate(25_000).String(); s != "2.5%" {
		t.Fatalf("unexpected string %q", s)
	}
	var r Rate
	if err := r.UnmarshalText([]byte("1%")); err != nil || r != PercentRate(1) {
		t.Fatalf("unmarshal text: %v %d", err, r)
	}
}
