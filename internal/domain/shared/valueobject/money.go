// Package valueobject holds the money rules shared by every ledger amount.
package valueobject

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AmountPlaces is the number of decimal places amounts are rounded to.
// Every amount is in Colombian pesos.
const AmountPlaces int32 = 2

var copTag = language.MustParse("es-CO")

// RoundAmount rounds amount to AmountPlaces
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(AmountPlaces)
}

// FormatCOP renders an amount the way it is shown to users, with Colombian
// digit grouping and no decimals for whole pesos.
func FormatCOP(amount decimal.Decimal) string {
	p := message.NewPrinter(copTag)
	if amount.Equal(amount.Truncate(0)) {
		return p.Sprintf("$ %d", amount.IntPart())
	}
	f, _ := RoundAmount(amount).Float64()
	return p.Sprintf("$ %.2f", f)
}
