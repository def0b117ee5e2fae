package model

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1000000000000000000", "1"},
		{"1500000000000000000", "1.5"},
		{"100000000000000000000", "100"},
		{"1", "0.000000000000000001"},
		{"123456789000000000000", "123.456789"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := uint256.FromDecimal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatUnits(v, TokenDecimals))
		})
	}
	assert.Equal(t, "0", FormatUnits(nil, TokenDecimals))
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1", "1000000000000000000", false},
		{"1.5", "1500000000000000000", false},
		{".25", "250000000000000000", false},
		{"0", "0", false},
		{"0.000000000000000001", "1", false},
		{"1.0000000000000000001", "", true},
		{"abc", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseUnits(tt.in, TokenDecimals)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Dec())
		})
	}
}

func TestPoolClosed(t *testing.T) {
	p := PoolState{StakingEnd: 100}
	assert.False(t, p.Closed(99))
	assert.True(t, p.Closed(100))
	assert.True(t, p.Closed(101))
}

func TestPriceFloat64(t *testing.T) {
	p := Price{Value: *uint256.NewInt(99990000), Decimals: 8}
	assert.InDelta(t, 0.9999, p.Float64(), 1e-12)
	assert.False(t, p.IsZero())
	assert.True(t, (&Price{}).IsZero())
}
