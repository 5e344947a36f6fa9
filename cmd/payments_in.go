package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/sitebook"
	"github.com/etnz/sitebook/renderer"
	"github.com/google/subcommands"
)

type inCmd struct{}

func (*inCmd) Name() string     { return "in" }
func (*inCmd) Synopsis() string { return "list the payments received on the current project" }
func (*inCmd) Usage() string {
	return `sb in

  Lists the payments received from the client on the current project, by
  date.
`
}

func (*inCmd) SetFlags(f *flag.FlagSet) {}

func (*inCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		p, ok := currentProject(s)
		if !ok {
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.PaymentsInMarkdown(p, s.Document().Settings))
		return subcommands.ExitSuccess
	})
}

type inAddCmd struct {
	amount      string
	date        string
	kind        string
	description string
	client      string
}

func (*inAddCmd) Name() string     { return "in-add" }
func (*inAddCmd) Synopsis() string { return "record a payment received" }
func (*inAddCmd) Usage() string {
	return `sb in-add -amount <amount> [-d <date>] [-type advance|installment] [-client <name>] [-desc <text>] [<file>...]

  Records a payment received from the client on the current project. The
  files given as arguments are attached to the payment.
`
}

func (c *inAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "Amount received (required)")
	f.StringVar(&c.date, "d", "", "Payment date. Defaults to now.")
	f.StringVar(&c.kind, "type", string(sitebook.PaymentInstallment), "Payment type (advance, installment)")
	f.StringVar(&c.client, "client", "", "Client name")
	f.StringVar(&c.description, "desc", "", "Description")
}

func (c *inAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	kind, err := parsePaymentType(c.kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	attachments, ok := attachFiles(nil, f.Args())
	if !ok {
		return subcommands.ExitFailure
	}

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		var in sitebook.PaymentIn
		err := s.Update(ctx, func(d *sitebook.Document) (next *sitebook.Document, err error) {
			next, in, err = d.AddPaymentIn(sitebook.PaymentIn{
				Amount:      amount,
				Date:        on,
				Type:        kind,
				Description: c.description,
				ClientName:  c.client,
				Attachments: attachments,
			})
			return next, err
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error recording payment: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Recorded payment of %s (%s)\n", sitebook.FormatCurrency(in.Amount, s.Document().Settings.Currency), in.ID)
		return subcommands.ExitSuccess
	})
}

type inUpdateCmd struct {
	amount      string
	date        string
	kind        string
	description string
	client      string
}

func (*inUpdateCmd) Name() string     { return "in-update" }
func (*inUpdateCmd) Synopsis() string { return "update a payment received" }
func (*inUpdateCmd) Usage() string {
	return `sb in-update [-amount <amount>] [-d <date>] [-type advance|installment] [-client <name>] [-desc <text>] <id>

  Updates the given fields of a payment received on the current project.
`
}

func (c *inUpdateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "New amount")
	f.StringVar(&c.date, "d", "", "New payment date")
	f.StringVar(&c.kind, "type", "", "New payment type (advance, installment)")
	f.StringVar(&c.client, "client", "", "New client name")
	f.StringVar(&c.description, "desc", "", "New description")
}

func (c *inUpdateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a single payment id is required.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	var patch sitebook.PaymentInPatch
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
		case "type":
			kind, perr := parsePaymentType(c.kind)
			err = perr
			patch.Type = &kind
		case "client":
			patch.ClientName = &c.client
		case "desc":
			patch.Description = &c.description
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		if _, ok := findPaymentIn(s, id); !ok {
			return subcommands.ExitFailure
		}
		if err := s.Update(ctx, func(d *sitebook.Document) (*sitebook.Document, error) {
			return d.UpdatePaymentIn(id, patch)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error updating payment: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Updated payment %s\n", id)
		return subcommands.ExitSuccess
	})
}

type inDeleteCmd struct {
	yes bool
}

func (*inDeleteCmd) Name() string     { return "in-delete" }
func (*inDeleteCmd) Synopsis() string { return "delete a payment received" }
func (*inDeleteCmd) Usage() string {
	return `sb in-delete [-y] <id>

  Deletes a payment received on the current project, with its attachments.
`
}

func (c *inDeleteCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation")
}

func (c *inDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a single payment id is required.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		in, ok := findPaymentIn(s, id)
		if !ok {
			return subcommands.ExitFailure
		}
		if !confirm(c.yes, "Delete the payment of %s?", in.Amount) {
			return subcommands.ExitFailure
		}
		if err := s.Update(ctx, func(d *sitebook.Document) (*sitebook.Document, error) {
			return d.DeletePaymentIn(id)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting payment: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Deleted payment %s\n", id)
		return subcommands.ExitSuccess
	})
}

func parsePaymentType(s string) (sitebook.PaymentType, error) {
	switch t := sitebook.PaymentType(s); t {
	case sitebook.PaymentAdvance, sitebook.PaymentInstallment:
		return t, nil
	}
	return "", fmt.Errorf("invalid payment type %q, want advance or installment", s)
}

// findPaymentIn looks up a payment of the current project.
func findPaymentIn(s *sitebook.Session, id string) (sitebook.PaymentIn, bool) {
	p, ok := currentProject(s)
	if !ok {
		return sitebook.PaymentIn{}, false
	}
	for _, in := range p.PaymentsIn {
		if in.ID == id {
			return in, true
		}
	}
	fmt.Fprintf(os.Stderr, "Error: payment %q not found in %q.\n", id, p.Name)
	return sitebook.PaymentIn{}, false
}
