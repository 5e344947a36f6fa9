package sitebook

import (
	"slices"

	"github.com/etnz/sitebook/date"
	"github.com/shopspring/decimal"
)

// UnknownDepartment is the label of an expense whose department was deleted.
const UnknownDepartment = "Unknown"

// All functions in this file are pure: they derive figures from a project's
// ledgers and never retain or modify them.

// TotalIn returns the sum of the payments received.
func TotalIn(payments []PaymentIn) Amount {
	var total Amount
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// TotalOut returns the sum of the expenses.
func TotalOut(payments []PaymentOut) Amount {
	var total Amount
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Balance returns the payments received minus the expenses.
func Balance(in []PaymentIn, out []PaymentOut) Amount {
	return TotalIn(in).Sub(TotalOut(out))
}

// NeedsReminder reports whether expenses exceed the payments received, in
// which case the client should be reminded to pay.
func NeedsReminder(in []PaymentIn, out []PaymentOut) bool {
	return Balance(in, out).IsNegative()
}

// DepartmentExpense is the total spent by a department.
type DepartmentExpense struct {
	DepartmentID string `json:"id"`
	Name         string `json:"name"`
	Total        Amount `json:"total"`
	Count        int    `json:"count"`
}

// ExpensesByDepartment returns one bucket per department, in department
// order, including departments without expenses. Expenses whose department is
// not in departments are left out of every bucket.
func ExpensesByDepartment(out []PaymentOut, departments []Department) []DepartmentExpense {
	buckets := make([]DepartmentExpense, 0, len(departments))
	index := make(map[string]int, len(departments))
	for _, d := range departments {
		if i, exists := index[d.ID]; exists {
			// same id twice: a single bucket with the latest name.
			buckets[i].Name = d.Name
			continue
		}
		index[d.ID] = len(buckets)
		buckets = append(buckets, DepartmentExpense{DepartmentID: d.ID, Name: d.Name})
	}
	for _, p := range out {
		i, ok := index[p.DepartmentID]
		if !ok {
			continue
		}
		buckets[i].Total = buckets[i].Total.Add(p.Amount)
		buckets[i].Count++
	}
	return buckets
}

// Spent filters out buckets without expenses, as shown on charts.
func Spent(buckets []DepartmentExpense) []DepartmentExpense {
	return slices.DeleteFunc(slices.Clone(buckets), func(b DepartmentExpense) bool { return !b.Total.IsPositive() })
}

// CategoryExpense is the total spent in a category.
type CategoryExpense struct {
	Category Category `json:"category"`
	Total    Amount   `json:"total"`
	Count    int      `json:"count"`
}

// ExpensesByCategory returns one bucket per category, in Categories order.
// Expenses with an unknown category count as CategoryOther.
func ExpensesByCategory(out []PaymentOut) []CategoryExpense {
	buckets := make([]CategoryExpense, len(Categories))
	for i, c := range Categories {
		buckets[i].Category = c
	}
	for _, p := range out {
		i := slices.Index(Categories, p.Category)
		if i < 0 {
			i = slices.Index(Categories, CategoryOther)
		}
		buckets[i].Total = buckets[i].Total.Add(p.Amount)
		buckets[i].Count++
	}
	return buckets
}

// DepartmentName resolves a department id, or returns UnknownDepartment.
func DepartmentName(departments []Department, id string) string {
	for _, d := range departments {
		if d.ID == id {
			return d.Name
		}
	}
	return UnknownDepartment
}

// Progress tells how much of the committed amount has been received.
type Progress struct {
	TotalCommitted      Amount  `json:"totalCommitted"`
	TotalReceived       Amount  `json:"totalReceived"`
	RemainingBalance    Amount  `json:"remainingBalance"`
	PercentageReceived  Percent `json:"percentageReceived"`
	PercentageRemaining Percent `json:"percentageRemaining"`
}

var hundred = decimal.NewFromInt(100)

// PaymentProgress computes the progress of the payments received against the
// committed amount. Percentages are within [0, 100]; a project without a
// committed amount has received 0%.
func PaymentProgress(p Project) Progress {
	committed := p.TotalCommittedAmount
	received := TotalIn(p.PaymentsIn)

	var pct Percent
	if committed.IsPositive() {
		ratio := received.value.Div(committed.value).Mul(hundred)
		pct = Percent(ratio.InexactFloat64()).clamp(0, 100)
	}
	return Progress{
		TotalCommitted:      committed,
		TotalReceived:       received,
		RemainingBalance:    committed.Sub(received),
		PercentageReceived:  pct,
		PercentageRemaining: max(100-pct, 0),
	}
}

// Summary is the financial overview of a project.
type Summary struct {
	Progress
	TotalExpenses        Amount `json:"totalExpenses"`
	NetBalance           Amount `json:"netBalance"`
	NeedsPaymentReminder bool   `json:"needsPaymentReminder"`
}

// ProjectSummary combines the payment progress with the expenses.
func ProjectSummary(p Project) Summary {
	out := TotalOut(p.PaymentsOut)
	net := TotalIn(p.PaymentsIn).Sub(out)
	return Summary{
		Progress:             PaymentProgress(p),
		TotalExpenses:        out,
		NetBalance:           net,
		NeedsPaymentReminder: net.IsNegative(),
	}
}

// MarshalJSON flattens the progress fields into the summary object.
func (s Summary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(s.Progress)
	w.Append("totalExpenses", s.TotalExpenses)
	w.Append("netBalance", s.NetBalance)
	w.Append("needsPaymentReminder", s.NeedsPaymentReminder)
	return w.MarshalJSON()
}

// PaymentsInDuring returns the payments received whose date falls in r.
// Undated payments are only kept by an unbounded range.
func PaymentsInDuring(payments []PaymentIn, r date.Range) []PaymentIn {
	var kept []PaymentIn
	for _, p := range payments {
		if during(p.Date, r) {
			kept = append(kept, p)
		}
	}
	return kept
}

// PaymentsOutDuring returns the expenses whose date falls in r.
func PaymentsOutDuring(payments []PaymentOut, r date.Range) []PaymentOut {
	var kept []PaymentOut
	for _, p := range payments {
		if during(p.Date, r) {
			kept = append(kept, p)
		}
	}
	return kept
}

func during(m date.Moment, r date.Range) bool {
	if m.IsZero() {
		return r == date.Range{}
	}
	return r.Contains(m.Day())
}
