package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/etnz/sitebook"
	"github.com/etnz/sitebook/renderer"
	"github.com/google/subcommands"
)

type outCmd struct{}

func (*outCmd) Name() string     { return "out" }
func (*outCmd) Synopsis() string { return "list the expenses of the current project" }
func (*outCmd) Usage() string {
	return `sb out

  Lists the expenses of the current project, by date. Expenses of deleted
  departments show as Unknown.
`
}

func (*outCmd) SetFlags(f *flag.FlagSet) {}

func (*outCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		p, ok := currentProject(s)
		if !ok {
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.PaymentsOutMarkdown(p, s.Document().Settings))
		return subcommands.ExitSuccess
	})
}

type outAddCmd struct {
	amount      string
	date        string
	department  string
	category    string
	description string
}

func (*outAddCmd) Name() string     { return "out-add" }
func (*outAddCmd) Synopsis() string { return "record an expense" }
func (*outAddCmd) Usage() string {
	return `sb out-add -amount <amount> -dept <department> [-d <date>] [-category <category>] [-desc <text>] [<file>...]

  Records an expense of the current project. The department is given by id
  or by name. The files given as arguments are attached to the expense.
`
}

func (c *outAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "Amount paid (required)")
	f.StringVar(&c.department, "dept", "", "Department id or name (required)")
	f.StringVar(&c.date, "d", "", "Payment date. Defaults to now.")
	f.StringVar(&c.category, "category", string(sitebook.CategoryMaterial), "Category (material, labor, equipment, transport, other)")
	f.StringVar(&c.description, "desc", "", "Description")
}

func (c *outAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.department == "" {
		fmt.Fprintln(os.Stderr, "Error: -dept is required.")
		return subcommands.ExitUsageError
	}
	amount, err := parsePositiveAmount(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	on, err := parseMoment(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	category, err := parseCategory(c.category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	attachments, ok := attachFiles(nil, f.Args())
	if !ok {
		return subcommands.ExitFailure
	}

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		p, ok := currentProject(s)
		if !ok {
			return subcommands.ExitFailure
		}
		dep, ok := findDepartment(p, c.department)
		if !ok {
			return subcommands.ExitFailure
		}
		var out sitebook.PaymentOut
		err := s.Update(ctx, func(d *sitebook.Document) (next *sitebook.Document, err error) {
			next, out, err = d.AddPaymentOut(sitebook.PaymentOut{
				Amount:       amount,
				Date:         on,
				DepartmentID: dep.ID,
				Description:  c.description,
				Category:     category,
				Attachments:  attachments,
			})
			return next, err
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error recording expense: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Recorded expense of %s for %s (%s)\n", sitebook.FormatCurrency(out.Amount, s.Document().Settings.Currency), dep.Name, out.ID)
		return subcommands.ExitSuccess
	})
}

type outUpdateCmd struct {
	amount      string
	date        string
	department  string
	category    string
	description string
}

func (*outUpdateCmd) Name() string     { return "out-update" }
func (*outUpdateCmd) Synopsis() string { return "update an expense" }
func (*outUpdateCmd) Usage() string {
	return `sb out-update [-amount <amount>] [-dept <department>] [-d <date>] [-category <category>] [-desc <text>] <id>

  Updates the given fields of an expense of the current project.
`
}

func (c *outUpdateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "New amount")
	f.StringVar(&c.department, "dept", "", "New department id or name")
	f.StringVar(&c.date, "d", "", "New payment date")
	f.StringVar(&c.category, "category", "", "New category")
	f.StringVar(&c.description, "desc", "", "New description")
}

func (c *outUpdateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a single expense id is required.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	var patch sitebook.PaymentOutPatch
	var err error
	f.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "amount":
			var a sitebook.Amount
			a, err = parsePositiveAmount(c.amount)
			patch.Amount = &a
		case "d":
			on, perr := parseMoment(c.date)
			err = perr
			patch.Date = &on
		case "category":
			category, perr := parseCategory(c.category)
			err = perr
			patch.Category = &category
		case "desc":
			patch.Description = &c.description
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		if _, ok := findPaymentOut(s, id); !ok {
			return subcommands.ExitFailure
		}
		if c.department != "" {
			p, _ := s.CurrentProject()
			dep, ok := findDepartment(p, c.department)
			if !ok {
				return subcommands.ExitFailure
			}
			patch.DepartmentID = &dep.ID
		}
		if err := s.Update(ctx, func(d *sitebook.Document) (*sitebook.Document, error) {
			return d.UpdatePaymentOut(id, patch)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error updating expense: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Updated expense %s\n", id)
		return subcommands.ExitSuccess
	})
}

type outDeleteCmd struct {
	yes bool
}

func (*outDeleteCmd) Name() string     { return "out-delete" }
func (*outDeleteCmd) Synopsis() string { return "delete an expense" }
func (*outDeleteCmd) Usage() string {
	return `sb out-delete [-y] <id>

  Deletes an expense of the current project, with its attachments.
`
}

func (c *outDeleteCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation")
}

func (c *outDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a single expense id is required.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		out, ok := findPaymentOut(s, id)
		if !ok {
			return subcommands.ExitFailure
		}
		if !confirm(c.yes, "Delete the expense of %s?", out.Amount) {
			return subcommands.ExitFailure
		}
		if err := s.Update(ctx, func(d *sitebook.Document) (*sitebook.Document, error) {
			return d.DeletePaymentOut(id)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting expense: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Deleted expense %s\n", id)
		return subcommands.ExitSuccess
	})
}

func parseCategory(s string) (sitebook.Category, error) {
	c := sitebook.Category(s)
	if !slices.Contains(sitebook.Categories, c) {
		return "", fmt.Errorf("invalid category %q, want one of %v", s, sitebook.Categories)
	}
	return c, nil
}

// findDepartment resolves a department by id, or by name ignoring case.
func findDepartment(p sitebook.Project, idOrName string) (sitebook.Department, bool) {
	if d, ok := p.Department(idOrName); ok {
		return d, true
	}
	for _, d := range p.Departments {
		if strings.EqualFold(d.Name, idOrName) {
			return d, true
		}
	}
	fmt.Fprintf(os.Stderr, "Error: department %q not found in %q.\n", idOrName, p.Name)
	return sitebook.Department{}, false
}

// findPaymentOut looks up an expense of the current project.
func findPaymentOut(s *sitebook.Session, id string) (sitebook.PaymentOut, bool) {
	p, ok := currentProject(s)
	if !ok {
		return sitebook.PaymentOut{}, false
	}
	for _, out := range p.PaymentsOut {
		if out.ID == id {
			return out, true
		}
	}
	fmt.Fprintf(os.Stderr, "Error: expense %q not found in %q.\n", id, p.Name)
	return sitebook.PaymentOut{}, false
}
