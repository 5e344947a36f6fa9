package sitebook

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/etnz/sitebook/date"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// amounts are grouped the Indian way: 1,00,000.00
var amountPrinter = message.NewPrinter(language.Make("en-IN"))

// FormatCurrency renders a like "₹1,250.50" with the given symbol.
func FormatCurrency(a Amount, symbol string) string {
	sign := ""
	if a.IsNegative() {
		sign = "-"
		a = a.Neg()
	}
	v := a.value.Round(2).InexactFloat64()
	return sign + symbol + amountPrinter.Sprint(number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatDate renders t with a display token (DD/MM/YYYY, MM/DD/YYYY or
// YYYY-MM-DD). The zero time renders empty.
func FormatDate(t time.Time, token string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(date.Layout(token))
}

// CurrencySymbol returns the symbol of an ISO 4217 currency code. Anything
// that is not a known code is returned unchanged, so that a symbol can be
// given directly.
func CurrencySymbol(code string) string {
	cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if cur == nil {
		return code
	}
	return cur.Grapheme
}

// Money converts a into a money value of the currency code, rounded to the
// currency's minor unit. It returns nil for an unknown code.
func (a Amount) Money(code string) *money.Money {
	cur := money.GetCurrency(code)
	if cur == nil {
		return nil
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	return money.New(a.value.Mul(factor).Round(0).IntPart(), code)
}
