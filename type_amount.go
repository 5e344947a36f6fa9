package sitebook

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Amount represents an exact monetary amount in the document currency.
//
// Its zero value is a valid zero amount.
type Amount struct {
	value decimal.Decimal
}

// A is a convenient factory for Amount.
func A[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Amount {
	return Amount{value: newDecimal(value)}
}

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// ParseAmount parses a decimal amount like "1250.50".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, err
	}
	return Amount{value: d}, nil
}

func (a Amount) Add(b Amount) Amount           { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount           { return Amount{value: a.value.Sub(b.value)} }
func (a Amount) Neg() Amount                   { return Amount{value: a.value.Neg()} }
func (a Amount) Equal(b Amount) bool           { return a.value.Equal(b.value) }
func (a Amount) LessThan(b Amount) bool        { return a.value.LessThan(b.value) }
func (a Amount) GreaterThan(b Amount) bool     { return a.value.GreaterThan(b.value) }
func (a Amount) IsZero() bool                  { return a.value.IsZero() }
func (a Amount) IsPositive() bool              { return a.value.IsPositive() }
func (a Amount) IsNegative() bool              { return a.value.IsNegative() }
func (a Amount) Decimal() decimal.Decimal      { return a.value }
func (a Amount) String() string                { return a.value.String() }
func (a Amount) StringFixed(places int) string { return a.value.StringFixed(int32(places)) }

// Float64 returns the nearest float64, for display and charts only.
func (a Amount) Float64() float64 { return a.value.InexactFloat64() }

func (a Amount) MarshalJSON() ([]byte, error) {
	return a.value.MarshalJSON()
}

// UnmarshalJSON reads a number or a numeric string. Anything else (null, an
// empty string, garbage) is coerced to zero: amounts are made valid once, here,
// instead of being checked by every computation.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		d = decimal.Zero
	}
	a.value = d
	return nil
}
