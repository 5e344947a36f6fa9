package sitebook

import "fmt"

// Percent is a percentage in the [0, 100] range.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

// clamp returns p bounded to [lo, hi].
func (p Percent) clamp(lo, hi Percent) Percent {
	return max(lo, min(p, hi))
}
