package sitebook

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/etnz/sitebook/storage"
	"github.com/google/go-cmp/cmp"
)

func TestSession_Update(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	store, _ := newMemoryStore()
	s := Open(ctx, store)
	before := s.Document()

	err := s.Update(ctx, func(d *Document) (*Document, error) {
		next, _ := d.AddProject("Villa", A(100), "")
		return next, nil
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if len(before.Projects) != 0 {
		t.Errorf("Update() modified the previous snapshot")
	}
	if _, ok := s.CurrentProject(); !ok {
		t.Errorf("CurrentProject() not found after AddProject")
	}
	if diff := cmp.Diff(s.Document(), Open(ctx, store).Document()); diff != "" {
		t.Errorf("Update() did not persist (-want +got):\n%s", diff)
	}

	// a failed change is not applied.
	current := s.Document()
	err = s.Update(ctx, func(d *Document) (*Document, error) { return d.DeleteProject("x"), ErrNoCurrentProject })
	if !errors.Is(err, ErrNoCurrentProject) || s.Document() != current {
		t.Errorf("Update() = %v, snapshot replaced: %v", err, s.Document() != current)
	}
}

func TestSession_UpdateNotPersisted(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	store, _ := newMemoryStore()
	store.Storage = storage.WithQuota(store.Storage, 10)
	s := Open(ctx, store)

	err := s.Update(ctx, func(d *Document) (*Document, error) {
		next, _ := d.AddProject("Villa", A(100), "")
		return next, nil
	})
	if !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Errorf("Update() error = %v, want ErrQuotaExceeded", err)
	}
	if len(s.Document().Projects) != 1 {
		t.Errorf("the in-memory change was dropped")
	}
}

func TestSession_Concurrent(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	store, _ := newMemoryStore()
	s := Open(ctx, store)
	if err := s.Update(ctx, func(d *Document) (*Document, error) {
		next, _ := d.AddProject("Villa", A(100), "")
		return next, nil
	}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, func(d *Document) (*Document, error) {
				next, _, err := d.AddPaymentIn(PaymentIn{Amount: A(1)})
				return next, err
			})
			p, _ := s.CurrentProject()
			_ = TotalIn(p.PaymentsIn)
		}()
	}
	wg.Wait()

	p, _ := s.CurrentProject()
	if got := TotalIn(p.PaymentsIn); !got.Equal(A(20)) {
		t.Errorf("TotalIn() = %v, want 20", got)
	}
}

func TestSession_RestoreReset(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	store, m := newMemoryStore()
	s := Open(ctx, store)

	b, err := ExportCompressed(sampleDocument(t), day)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Restore(ctx, bytes.NewReader(b.Data), b.Name); err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if len(s.Document().Projects) != 1 {
		t.Errorf("Restore() did not replace the snapshot")
	}

	current := s.Document()
	if err := s.Restore(ctx, strings.NewReader(`{"projects": []}`), "x.ttf"); !errors.Is(err, ErrInvalidBackup) {
		t.Errorf("Restore() error = %v, want ErrInvalidBackup", err)
	}
	if s.Document() != current {
		t.Errorf("a rejected Restore() replaced the snapshot")
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	if len(s.Document().Projects) != 0 || len(m.Keys()) != 0 {
		t.Errorf("Reset() left projects %d, keys %v", len(s.Document().Projects), m.Keys())
	}
}

func TestSession_Login(t *testing.T) {
	fixClock(t, day)
	ctx := context.Background()
	store, _ := newMemoryStore()
	s := Open(ctx, store)

	if _, err := s.Login(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong) error = %v, want ErrInvalidCredentials", err)
	}
	if _, ok := s.CurrentUser(ctx); ok {
		t.Errorf("CurrentUser() found before login")
	}

	u, err := s.Login(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	want := User{ID: "1", Username: "admin", Role: RoleAdmin, Name: "Administrator"}
	if diff := cmp.Diff(want, u); diff != "" {
		t.Errorf("Login() mismatch (-want +got):\n%s", diff)
	}
	got, ok := s.CurrentUser(ctx)
	if !ok || !got.IsAdmin() {
		t.Errorf("CurrentUser() = %+v, %v", got, ok)
	}

	if err := s.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.CurrentUser(ctx); ok {
		t.Errorf("CurrentUser() found after logout")
	}
}
