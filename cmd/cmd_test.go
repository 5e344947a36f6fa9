package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/sitebook"
	"github.com/google/subcommands"
)

// useTempStorage points the global flags to a fresh file storage.
func useTempStorage(t *testing.T) {
	t.Helper()
	storage, path := *storageFlag, *pathFlag
	*storageFlag, *pathFlag = "file", t.TempDir()
	t.Cleanup(func() { *storageFlag, *pathFlag = storage, path })
}

// run parses args for c and executes it.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("%s: cannot parse %v: %v", c.Name(), args, err)
	}
	return c.Execute(context.Background(), f)
}

// load reads back the stored document.
func load(t *testing.T) *sitebook.Document {
	t.Helper()
	s, closer, err := OpenSession(context.Background())
	if err != nil {
		t.Fatalf("OpenSession() error: %v", err)
	}
	defer closer()
	return s.Document()
}

func mustRun(t *testing.T, c subcommands.Command, args ...string) {
	t.Helper()
	if got := run(t, c, args...); got != subcommands.ExitSuccess {
		t.Fatalf("%s %v = %v, want success", c.Name(), args, got)
	}
}

func TestProjectCommands(t *testing.T) {
	useTempStorage(t)

	if got := run(t, &projectAddCmd{}, "-name", "Villa"); got != subcommands.ExitUsageError {
		t.Errorf("project-add without amount = %v, want usage error", got)
	}
	mustRun(t, &projectAddCmd{}, "-name", "Villa", "-committed", "100000", "-desc", "3BHK")
	mustRun(t, &projectAddCmd{}, "-name", "Office", "-committed", "50000")

	d := load(t)
	if len(d.Projects) != 2 {
		t.Fatalf("got %d projects, want 2", len(d.Projects))
	}
	villa, office := d.Projects[0], d.Projects[1]
	if cur, _ := d.CurrentProject(); cur.ID != office.ID {
		t.Errorf("current project = %q, want the last one created", cur.Name)
	}
	if villa.Description != "3BHK" || len(villa.Departments) != 6 {
		t.Errorf("unexpected project %+v", villa)
	}

	mustRun(t, &useCmd{}, villa.ID)
	mustRun(t, &projectUpdateCmd{}, "-status", "on-hold", "-name", "Villa Rao")
	if got := run(t, &projectUpdateCmd{}, "-status", "paused"); got != subcommands.ExitUsageError {
		t.Errorf("project-update -status paused = %v, want usage error", got)
	}
	p, _ := load(t).CurrentProject()
	if p.Name != "Villa Rao" || p.Status != sitebook.StatusOnHold {
		t.Errorf("updated project = %q %q, want Villa Rao on-hold", p.Name, p.Status)
	}

	mustRun(t, &projectDeleteCmd{}, "-y", villa.ID)
	d = load(t)
	if len(d.Projects) != 1 {
		t.Fatalf("got %d projects after delete, want 1", len(d.Projects))
	}
	if cur, ok := d.CurrentProject(); !ok || cur.ID != office.ID {
		t.Errorf("current project after delete = %q, want Office", cur.Name)
	}
	if got := run(t, &useCmd{}, "unknown"); got != subcommands.ExitFailure {
		t.Errorf("use unknown = %v, want failure", got)
	}
}

func TestPaymentCommands(t *testing.T) {
	useTempStorage(t)

	if got := run(t, &inAddCmd{}, "-amount", "100"); got != subcommands.ExitFailure {
		t.Errorf("in-add without project = %v, want failure", got)
	}
	mustRun(t, &projectAddCmd{}, "-name", "Villa", "-committed", "100000")
	mustRun(t, &departmentAddCmd{}, "Pool")

	mustRun(t, &inAddCmd{}, "-amount", "40000", "-type", "advance", "-client", "Mr. Rao", "-d", "2025-03-01")
	if got := run(t, &inAddCmd{}, "-amount", "-5"); got != subcommands.ExitUsageError {
		t.Errorf("in-add negative amount = %v, want usage error", got)
	}

	bill := filepath.Join(t.TempDir(), "bill.txt")
	if err := os.WriteFile(bill, []byte("cement 10 bags"), 0o644); err != nil {
		t.Fatal(err)
	}
	mustRun(t, &outAddCmd{}, "-amount", "15000.50", "-dept", "mason", "-category", "labor", bill)
	mustRun(t, &outAddCmd{}, "-amount", "2000", "-dept", "pool")
	if got := run(t, &outAddCmd{}, "-amount", "10", "-dept", "Roofing"); got != subcommands.ExitFailure {
		t.Errorf("out-add unknown department = %v, want failure", got)
	}
	if got := run(t, &outAddCmd{}, "-amount", "10", "-dept", "Mason", "-category", "food"); got != subcommands.ExitUsageError {
		t.Errorf("out-add unknown category = %v, want usage error", got)
	}

	p, _ := load(t).CurrentProject()
	if len(p.PaymentsIn) != 1 || len(p.PaymentsOut) != 2 {
		t.Fatalf("got %d payments in and %d out, want 1 and 2", len(p.PaymentsIn), len(p.PaymentsOut))
	}
	in := p.PaymentsIn[0]
	if in.Type != sitebook.PaymentAdvance || in.ClientName != "Mr. Rao" || in.Amount.String() != "40000" {
		t.Errorf("unexpected payment in %+v", in)
	}
	out := p.PaymentsOut[0]
	if out.Category != sitebook.CategoryLabor || len(out.Attachments) != 1 || out.Attachments[0].Type != "text/plain" {
		t.Errorf("unexpected expense %+v", out)
	}
	if dep, _ := p.Department(p.PaymentsOut[1].DepartmentID); dep.Name != "Pool" {
		t.Errorf("expense department = %q, want Pool", dep.Name)
	}

	// attachments round trip through the file system.
	dir := t.TempDir()
	mustRun(t, &attachmentGetCmd{}, "-o", dir, out.ID, out.Attachments[0].ID)
	content, err := os.ReadFile(filepath.Join(dir, "bill.txt"))
	if err != nil || string(content) != "cement 10 bags" {
		t.Errorf("saved attachment = %q, %v", content, err)
	}
	mustRun(t, &attachCmd{}, "-remove", out.Attachments[0].ID, out.ID)
	p, _ = load(t).CurrentProject()
	if n := len(p.PaymentsOut[0].Attachments); n != 0 {
		t.Errorf("got %d attachments after remove, want 0", n)
	}

	mustRun(t, &outUpdateCmd{}, "-amount", "16000", out.ID)
	mustRun(t, &inDeleteCmd{}, "-y", in.ID)
	p, _ = load(t).CurrentProject()
	if len(p.PaymentsIn) != 0 || p.PaymentsOut[0].Amount.String() != "16000" {
		t.Errorf("unexpected project after update and delete: %+v", p)
	}
}

func TestDepartmentDelete(t *testing.T) {
	useTempStorage(t)
	mustRun(t, &projectAddCmd{}, "-name", "Villa", "-committed", "100000")
	mustRun(t, &departmentAddCmd{}, "Pool")

	p, _ := load(t).CurrentProject()
	if got := run(t, &departmentDeleteCmd{}, "-y", p.Departments[0].ID); got != subcommands.ExitFailure {
		t.Errorf("deleting a default department = %v, want failure", got)
	}
	pool := p.Departments[len(p.Departments)-1]
	mustRun(t, &departmentDeleteCmd{}, "-y", pool.ID)
	p, _ = load(t).CurrentProject()
	if _, ok := p.Department(pool.ID); ok {
		t.Errorf("department Pool still present")
	}
}

func TestBackupRestoreCommands(t *testing.T) {
	useTempStorage(t)
	mustRun(t, &projectAddCmd{}, "-name", "Villa", "-committed", "100000")

	dir := t.TempDir()
	mustRun(t, &backupCmd{}, "-z", "-o", dir)
	files, _ := filepath.Glob(filepath.Join(dir, "sitebook_backup_*.json.gz"))
	if len(files) != 1 {
		t.Fatalf("got backups %v, want exactly one", files)
	}

	mustRun(t, &clearCmd{}, "-y")
	if n := len(load(t).Projects); n != 0 {
		t.Fatalf("got %d projects after clear, want 0", n)
	}

	mustRun(t, &restoreCmd{}, "-y", files[0])
	d := load(t)
	if len(d.Projects) != 1 || d.Projects[0].Name != "Villa" {
		t.Errorf("restored projects = %+v, want Villa", d.Projects)
	}

	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := run(t, &restoreCmd{}, "-y", other); got != subcommands.ExitUsageError {
		t.Errorf("restore notes.txt = %v, want usage error", got)
	}
}

func TestQuery(t *testing.T) {
	d, _ := sitebook.NewDocument(sitebook.DefaultSettings(), time.Now()).AddProject("Villa", sitebook.A(100000), "")

	got, err := query(d, "$.projects[0].name")
	if err != nil {
		t.Fatalf("query() error: %v", err)
	}
	if got != "Villa" {
		t.Errorf("query($.projects[0].name) = %v, want Villa", got)
	}

	got, err = query(d, "$.users[*].username")
	if err != nil {
		t.Fatalf("query() error: %v", err)
	}
	users, ok := got.([]any)
	if !ok || len(users) != 2 || users[0] != "admin" {
		t.Errorf("query($.users[*].username) = %v, want [admin user]", got)
	}

	if _, err := query(d, "$.projects[("); err == nil {
		t.Errorf("query() with an invalid path succeeded")
	}
}

func TestParsers(t *testing.T) {
	if _, err := parseCategory("equipment"); err != nil {
		t.Errorf("parseCategory(equipment) error: %v", err)
	}
	if _, err := parseCategory("Equipment"); err == nil {
		t.Errorf("parseCategory(Equipment) succeeded")
	}
	if got, err := parsePaymentType("advance"); err != nil || got != sitebook.PaymentAdvance {
		t.Errorf("parsePaymentType(advance) = %q, %v", got, err)
	}
	if _, err := parsePaymentType("loan"); err == nil {
		t.Errorf("parsePaymentType(loan) succeeded")
	}
	for _, s := range []string{"0", "-1", "abc"} {
		if _, err := parsePositiveAmount(s); err == nil {
			t.Errorf("parsePositiveAmount(%q) succeeded", s)
		}
	}
}

func TestConfirm(t *testing.T) {
	old := stdin
	t.Cleanup(func() { stdin = old })

	tests := []struct {
		yes    bool
		answer string
		want   bool
	}{
		{yes: true, answer: "", want: true},
		{answer: "y\n", want: true},
		{answer: " YES \n", want: true},
		{answer: "n\n", want: false},
		{answer: "", want: false},
	}
	for _, tt := range tests {
		stdin = strings.NewReader(tt.answer)
		if got := confirm(tt.yes, "Proceed?"); got != tt.want {
			t.Errorf("confirm(%v) with %q = %v, want %v", tt.yes, tt.answer, got, tt.want)
		}
	}
}

func TestLoginCommand(t *testing.T) {
	useTempStorage(t)
	old := stdin
	t.Cleanup(func() { stdin = old })

	stdin = strings.NewReader("wrong\n")
	if got := run(t, &loginCmd{}, "admin"); got != subcommands.ExitFailure {
		t.Errorf("login with a wrong password = %v, want failure", got)
	}
	stdin = strings.NewReader("admin123\n")
	mustRun(t, &loginCmd{}, "admin")

	s, closer, err := OpenSession(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	u, ok := s.CurrentUser(context.Background())
	closer()
	if !ok || u.Username != "admin" || u.Password != "" {
		t.Errorf("CurrentUser() = %+v, %v, want admin without password", u, ok)
	}

	mustRun(t, &loginCmd{}, "-logout")
	s, closer, _ = OpenSession(context.Background())
	defer closer()
	if _, ok := s.CurrentUser(context.Background()); ok {
		t.Errorf("still logged in after logout")
	}
}
