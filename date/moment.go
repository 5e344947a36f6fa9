package date

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Moment is the date recorded on a payment. It is either a calendar day, as
// typed in a form, or a full instant, as stamped when no date was given.
// It encodes back in the form it was read.
//
// The zero Moment is unset and encodes as an empty string.
type Moment struct {
	t       time.Time
	instant bool
}

// OnDay returns a Moment for a calendar day.
func OnDay(d Date) Moment { return Moment{t: d.time()} }

// At returns a Moment for an instant, normalized to UTC.
func At(t time.Time) Moment { return Moment{t: t.UTC(), instant: true} }

// ParseMoment reads a calendar day ("2025-07-31") or an RFC 3339 instant.
func ParseMoment(str string) (Moment, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return Moment{}, nil
	}
	if strings.Contains(str, "T") {
		t, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return Moment{}, fmt.Errorf("invalid instant %q: %w", str, err)
		}
		return At(t), nil
	}
	d, err := Parse(str)
	if err != nil {
		return Moment{}, err
	}
	return OnDay(d), nil
}

func (m Moment) IsZero() bool         { return m.t.IsZero() }
func (m Moment) IsInstant() bool      { return m.instant }
func (m Moment) Time() time.Time      { return m.t }
func (m Moment) Day() Date            { return Of(m.t) }
func (m Moment) Before(n Moment) bool { return m.t.Before(n.t) }

// Equal reports whether m and n denote the same moment in the same form.
func (m Moment) Equal(n Moment) bool { return m.instant == n.instant && m.t.Equal(n.t) }

func (m Moment) String() string {
	switch {
	case m.IsZero():
		return ""
	case m.instant:
		return m.t.Format(time.RFC3339Nano)
	default:
		return m.t.Format(DateFormat)
	}
}

// Format formats the moment with one of the display tokens of Layout.
func (m Moment) Format(token string) string {
	if m.IsZero() {
		return ""
	}
	return m.t.Format(Layout(token))
}

func (m Moment) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Moment) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	v, err := ParseMoment(str)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// check that a Moment pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Moment)(nil)
var _ json.Unmarshaler = (*Moment)(nil)

// Display tokens supported in settings.
const (
	DayMonthYear = "DD/MM/YYYY"
	MonthDayYear = "MM/DD/YYYY"
	YearMonthDay = "YYYY-MM-DD"
)

// Layout returns the time layout for a display token. Unknown tokens fall back
// to DD/MM/YYYY.
func Layout(token string) string {
	switch token {
	case MonthDayYear:
		return "01/02/2006"
	case YearMonthDay:
		return DateFormat
	default:
		return "02/01/2006"
	}
}
