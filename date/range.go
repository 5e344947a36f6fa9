package date

import "fmt"

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange return the period containing d.
func NewRange(d Date, period Period) Range {
	return Range{From: d.StartOf(period), To: d.EndOf(period)}
}

// Contains return true date is included in the range (boundaries included).
// A zero bound is open.
func (r Range) Contains(date Date) bool {
	if !r.From.IsZero() && date.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && date.After(r.To) {
		return false
	}
	return true
}

func (r Range) String() string {
	switch {
	case r.From.IsZero() && r.To.IsZero():
		return "all time"
	case r.From.IsZero():
		return fmt.Sprintf("until %s", r.To)
	case r.To.IsZero():
		return fmt.Sprintf("since %s", r.From)
	case r.From == r.To:
		return r.From.String()
	}
	return fmt.Sprintf("%s to %s", r.From, r.To)
}
