package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		qty   int64
		long  bool
		short bool
		flat  bool
	}{
		{qty: 10, long: true},
		{qty: -10, short: true},
		{qty: 0, flat: true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.long, IsLong(tt.qty), "IsLong(%d)", tt.qty)
		assert.Equal(t, tt.short, IsShort(tt.qty), "IsShort(%d)", tt.qty)
		assert.Equal(t, tt.flat, IsFlat(tt.qty), "IsFlat(%d)", tt.qty)
	}
}

func TestIsLiquidating(t *testing.T) {
	t.Parallel()

	assert.True(t, IsLiquidating(10, 10))
	assert.False(t, IsLiquidating(10, 4))
	assert.False(t, IsLiquidating(10, 12))
	assert.True(t, IsLiquidating(-5, -5))
}

func TestOrderMarketValue(t *testing.T) {
	t.Parallel()

	price := decimal.RequireFromString("12.34")
	assert.True(t, decimal.RequireFromString("123.40").Equal(OrderMarketValue(10, price)))
	assert.True(t, decimal.RequireFromString("123.40").Equal(OrderMarketValue(-10, price)))
	assert.True(t, OrderMarketValue(0, price).IsZero())
}
