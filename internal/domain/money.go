package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money is an amount in the smallest unit of Currency.
type Money struct {
	Amount   int64
	Currency currency.Unit
}

func NewMoney(amount int64, unit currency.Unit) Money {
	return Money{Amount: amount, Currency: unit}
}

// Decimal converts the minor-unit amount into a decimal in major units,
// e.g. 1999 USD -> 19.99, 2500 KRW -> 2500.
func (m Money) Decimal() decimal.Decimal {
	scale, _ := currency.Standard.Rounding(m.Currency)
	return decimal.New(m.Amount, -int32(scale))
}

func (m Money) String() string {
	scale, _ := currency.Standard.Rounding(m.Currency)
	return fmt.Sprintf("%s %s", m.Currency.String(), m.Decimal().StringFixed(int32(scale)))
}
