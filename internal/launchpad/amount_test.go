package launchpad

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleAmount(t *testing.T) {
	tests := []struct {
		amount   string
		decimals uint8
		want     uint64
	}{
		{"1", 0, 1},
		{"10", 6, 10_000_000},
		{"1.5", 6, 1_500_000},
		{"0.000001", 6, 1},
		{" 42 ", 9, 42_000_000_000},
		{"18446744073709551615", 0, math.MaxUint64},
		{"18.446744073709551615", 18, math.MaxUint64},
		{"1.50", 1, 15},
	}

	for _, tt := range tests {
		got, err := ScaleAmount(tt.amount, tt.decimals)
		require.NoError(t, err, "amount %q decimals %d", tt.amount, tt.decimals)
		assert.Equal(t, tt.want, got, "amount %q decimals %d", tt.amount, tt.decimals)
	}
}

func TestScaleAmount_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
	}{
		{"empty", "", 6},
		{"not a number", "ten", 6},
		{"zero", "0", 6},
		{"negative", "-1", 6},
		{"too precise", "0.0000001", 6},
		{"fraction at zero decimals", "1.5", 0},
		{"overflow", "18446744073709551616", 0},
		{"overflow after scaling", "18446744073710", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScaleAmount(tt.amount, tt.decimals)
			assert.True(t, errors.Is(err, ErrInvalidAmount), "got %v", err)
		})
	}
}

func TestParseDecimals(t *testing.T) {
	for in, want := range map[string]uint8{"": 0, "0": 0, "6": 6, " 9 ": 9, "255": 255} {
		got, err := ParseDecimals(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"-1", "256", "six", "1.5"} {
		_, err := ParseDecimals(in)
		assert.ErrorIs(t, err, ErrInvalidDecimals, in)
	}
}

func TestParseSupply(t *testing.T) {
	got, err := ParseSupply("1000000")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), got)

	got, err = ParseSupply("")
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = ParseSupply("-5")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
