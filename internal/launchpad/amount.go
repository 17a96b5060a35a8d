package launchpad

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var maxRawAmount = decimal.NewFromUint64(math.MaxUint64)

// ScaleAmount converts a whole-token amount to base units: amount * 10^decimals.
// The result must be a positive integer that fits in a u64.
func ScaleAmount(amount string, decimals uint8) (uint64, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, amount)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, amount)
	}

	raw := d.Shift(int32(decimals))
	if !raw.IsInteger() {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, amount, decimals)
	}
	if raw.GreaterThan(maxRawAmount) {
		return 0, fmt.Errorf("%w: %s overflows u64 at %d decimals", ErrInvalidAmount, amount, decimals)
	}

	return raw.BigInt().Uint64(), nil
}

// ParseDecimals parses a decimals field as entered. Empty means 0.
func ParseDecimals(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 || n > math.MaxUint8 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDecimals, s)
	}
	return uint8(n), nil
}

// ParseSupply parses the initial supply field. Empty means 0.
func ParseSupply(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: initial supply %q", ErrInvalidAmount, s)
	}
	return n, nil
}
