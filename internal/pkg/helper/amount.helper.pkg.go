package helper

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount for display with thousands grouping and
// exactly two decimal places, e.g. 1000 -> "1,000.00".
func FormatAmount(amount decimal.Decimal) string {
	v, _ := amount.Float64()
	return amountPrinter.Sprint(number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}
