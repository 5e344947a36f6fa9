package date

import (
	"fmt"
	"slices"
	"strings"
)

// Period is the span of a summary: a day, a week starting on Monday, a
// calendar month, quarter or year.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Quarterly
	Yearly
)

var periodNames = []string{"day", "week", "month", "quarter", "year"}

// String returns the noun of the period, as accepted by ParsePeriod.
func (p Period) String() string {
	if p < 0 || int(p) >= len(periodNames) {
		return fmt.Sprintf("Period(%d)", int(p))
	}
	return periodNames[p]
}

// ParsePeriod reads a period noun ("month") or adverb ("monthly").
func ParsePeriod(str string) (Period, error) {
	s := strings.ToLower(strings.TrimSpace(str))
	if s == "daily" {
		s = "day"
	}
	s = strings.TrimSuffix(s, "ly")
	if i := slices.Index(periodNames, s); i >= 0 {
		return Period(i), nil
	}
	return Daily, fmt.Errorf("unknown period %q, want one of %v", str, periodNames)
}
