package services

import (
	"errors"
	"fmt"

	"github.com/Injajul/Foodify2/entity"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func LineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// GroupTotal sums the lines of one restaurant group at current prices.
// Lines whose product is not in prices add nothing and are returned as missing.
func GroupTotal(items []entity.CartItem, prices map[uint]entity.Product) (decimal.Decimal, []uint) {
	total := decimal.Zero
	var missing []uint
	for _, it := range items {
		p, ok := prices[it.ProductID]
		if !ok {
			missing = append(missing, it.ProductID)
			continue
		}
		total = total.Add(LineTotal(p.Price, it.Quantity))
	}
	return total, missing
}

func CartTotal(groups []entity.CartGroup, prices map[uint]entity.Product) (decimal.Decimal, []uint) {
	total := decimal.Zero
	var missing []uint
	for _, g := range groups {
		sub, m := GroupTotal(g.Items, prices)
		total = total.Add(sub)
		missing = append(missing, m...)
	}
	return total, missing
}

// MaxChargeMinor is the largest amount the payment processor accepts in one
// charge, in minor units.
const MaxChargeMinor int64 = 99_999_999

var ErrAmountTooLarge = errors.New("amount exceeds the maximum charge")

// MinorUnits converts a major-unit amount to the integer the payment
// processor expects, rounding half away from zero. Amounts outside
// [0, MaxChargeMinor] are rejected rather than truncated.
func MinorUnits(total decimal.Decimal) (int64, error) {
	minor := total.Mul(hundred).Round(0)
	if minor.IsNegative() {
		return 0, fmt.Errorf("negative amount %s", total)
	}
	if minor.GreaterThan(decimal.NewFromInt(MaxChargeMinor)) {
		return 0, fmt.Errorf("%w: %s", ErrAmountTooLarge, total)
	}
	return minor.IntPart(), nil
}
