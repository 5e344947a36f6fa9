package date

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMomentJSON(t *testing.T) {
	testCases := []struct {
		name    string
		json    string
		instant bool
	}{
		{name: "day", json: `"2025-03-04"`},
		{name: "instant", json: `"2025-03-04T10:11:12.5Z"`, instant: true},
		{name: "unset", json: `""`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var m Moment
			if err := json.Unmarshal([]byte(tc.json), &m); err != nil {
				t.Fatalf("Unmarshal(%s) unexpected error: %v", tc.json, err)
			}
			if m.IsInstant() != tc.instant {
				t.Errorf("IsInstant() = %v, want %v", m.IsInstant(), tc.instant)
			}
			got, err := json.Marshal(m)
			if err != nil {
				t.Fatalf("Marshal() unexpected error: %v", err)
			}
			if string(got) != tc.json {
				t.Errorf("Marshal() = %s, want %s", got, tc.json)
			}
		})
	}
}

func TestMomentFormat(t *testing.T) {
	m := OnDay(New(2025, time.March, 4))
	testCases := map[string]string{
		DayMonthYear: "04/03/2025",
		MonthDayYear: "03/04/2025",
		YearMonthDay: "2025-03-04",
		"bogus":      "04/03/2025",
	}
	for token, want := range testCases {
		if got := m.Format(token); got != want {
			t.Errorf("Format(%q) = %q, want %q", token, got, want)
		}
	}
	if got := (Moment{}).Format(DayMonthYear); got != "" {
		t.Errorf("unset moment Format() = %q, want empty", got)
	}
}

func TestMomentEqual(t *testing.T) {
	day := OnDay(New(2025, time.March, 4))
	midnight := At(time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC))
	if day.Equal(midnight) {
		t.Errorf("a day and an instant at midnight should differ")
	}
	if !midnight.Equal(At(midnight.Time().In(time.FixedZone("X", 3600)))) {
		t.Errorf("instants should compare regardless of location")
	}
}
