package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/sitebook"
	"github.com/etnz/sitebook/date"
	"github.com/etnz/sitebook/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	period string
	date   string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the financial summary of the current project" }
func (*summaryCmd) Usage() string {
	return `sb summary [-p <period>] [-d <date>]

  Displays the payment progress of the current project, its net balance and
  its expenses by department and by category. A payment reminder is shown
  when expenses exceed the payments received.

  With -p, only the payments of the period containing -d are accounted.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "", "Restrict to a period (day, week, month, quarter, year).")
	f.StringVar(&c.date, "d", "0d", "A date in the period. See the user manual for supported date formats.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var r date.Range
	if c.period != "" {
		period, err := date.ParsePeriod(c.period)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing period: %v\n", err)
			return subcommands.ExitUsageError
		}
		on, err := date.Parse(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		r = date.NewRange(on, period)
	}

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		p, ok := currentProject(s)
		if !ok {
			return subcommands.ExitFailure
		}
		if r != (date.Range{}) {
			p.PaymentsIn = sitebook.PaymentsInDuring(p.PaymentsIn, r)
			p.PaymentsOut = sitebook.PaymentsOutDuring(p.PaymentsOut, r)
			p.Description = fmt.Sprintf("Payments from %s", r)
		}
		printMarkdown(renderer.SummaryMarkdown(p, s.Document().Settings))
		return subcommands.ExitSuccess
	})
}
