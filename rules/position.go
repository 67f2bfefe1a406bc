package rules

import "github.com/shopspring/decimal"

func IsLong(qty int64) bool  { return qty > 0 }
func IsShort(qty int64) bool { return qty < 0 }
func IsFlat(qty int64) bool  { return qty == 0 }

// IsLiquidating is true when the order closes the position exactly.
func IsLiquidating(positionQty, orderQty int64) bool {
	return positionQty-orderQty == 0
}

// OrderMarketValue is |qty| * price. Short-sell quantities may arrive negative.
func OrderMarketValue(qty int64, price decimal.Decimal) decimal.Decimal {
	if qty < 0 {
		qty = -qty
	}
	return price.Mul(decimal.NewFromInt(qty))
}
