package model

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// TokenDecimals is the precision of stake and reward tokens.
const TokenDecimals = 18

func pow10(decimals uint8) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
}

// FormatUnits renders base units as a decimal token amount, trimming trailing zeros.
func FormatUnits(v *uint256.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	scale := pow10(decimals)
	whole, frac := new(uint256.Int).DivMod(v, scale, new(uint256.Int))
	if frac.IsZero() {
		return whole.Dec()
	}
	fs := frac.Dec()
	fs = strings.Repeat("0", int(decimals)-len(fs)) + fs
	return whole.Dec() + "." + strings.TrimRight(fs, "0")
}

// ParseUnits converts a decimal token amount such as "1.5" into base units.
func ParseUnits(s string, decimals uint8) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty amount")
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > int(decimals) {
		return nil, errors.Errorf("amount %q has more than %d decimals", s, decimals)
	}
	if whole == "" {
		whole = "0"
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))
	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, errors.Wrapf(err, "parse amount %q", s)
	}
	return v, nil
}
