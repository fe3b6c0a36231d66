package services

import "github.com/shopspring/decimal"

// Money is an amount in a response. It is written as a JSON number, where
// decimal.Decimal on its own writes a quoted string.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{Decimal: d} }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}
