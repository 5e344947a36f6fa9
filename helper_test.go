package sitebook

import (
	"fmt"
	"testing"
	"time"

	"github.com/etnz/sitebook/date"
	"github.com/etnz/sitebook/storage"
)

// day is the fixed clock of the tests.
var day = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

// fixClock makes timeNow return now and NewID return "id-1", "id-2"... for
// the duration of the test.
func fixClock(t *testing.T, now time.Time) {
	t.Helper()
	prevNow, prevID := timeNow, NewID
	n := 0
	timeNow = func() time.Time { return now }
	NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	t.Cleanup(func() { timeNow, NewID = prevNow, prevID })
}

// newMemoryStore returns a store over a fresh in-memory storage.
func newMemoryStore() (*Store, *storage.Memory) {
	m := storage.NewMemory()
	return NewStore(m), m
}

// sampleDocument returns a document with one current project, two payments
// received and two expenses.
func sampleDocument(t *testing.T) *Document {
	t.Helper()
	d, p := NewDocument(DefaultSettings(), timeNow()).AddProject("Villa", A(100000), "two floors")
	mason, plumbing := p.Departments[0].ID, p.Departments[1].ID

	var err error
	d, _, err = d.AddPaymentIn(PaymentIn{Amount: A(40000), Date: date.OnDay(date.New(2025, time.March, 1)), Type: PaymentAdvance, ClientName: "Mr. Rao"})
	if err != nil {
		t.Fatalf("AddPaymentIn() failed: %v", err)
	}
	d, _, err = d.AddPaymentIn(PaymentIn{Amount: A(20000), Type: PaymentInstallment})
	if err != nil {
		t.Fatalf("AddPaymentIn() failed: %v", err)
	}
	d, _, err = d.AddPaymentOut(PaymentOut{Amount: A(15000.5), Date: date.OnDay(date.New(2025, time.March, 2)), DepartmentID: mason, Category: CategoryMaterial})
	if err != nil {
		t.Fatalf("AddPaymentOut() failed: %v", err)
	}
	d, _, err = d.AddPaymentOut(PaymentOut{Amount: A(5000), DepartmentID: plumbing, Category: CategoryLabor})
	if err != nil {
		t.Fatalf("AddPaymentOut() failed: %v", err)
	}
	return d
}
