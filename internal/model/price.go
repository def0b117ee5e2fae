package model

import (
	"math"

	"github.com/holiman/uint256"
)

// Price is a fixed-point quote from a price oracle.
type Price struct {
	Value     uint256.Int
	Decimals  uint8
	Timestamp int64 // unix seconds the quote was produced by the source
	Source    string
}

// IsZero reports whether the price carries no value.
func (p *Price) IsZero() bool {
	return p.Value.IsZero()
}

// Float64 returns the price as a float, for display only.
func (p *Price) Float64() float64 {
	return p.Value.Float64() / math.Pow10(int(p.Decimals))
}
