package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/etnz/sitebook"
	"github.com/etnz/sitebook/date"
	"github.com/etnz/sitebook/renderer"
	"github.com/google/subcommands"
)

type settingsCmd struct {
	currency        string
	dateFormat      string
	autoBackup      string
	backupFrequency string
}

func (*settingsCmd) Name() string     { return "settings" }
func (*settingsCmd) Synopsis() string { return "show or change the settings" }
func (*settingsCmd) Usage() string {
	return `sb settings [-currency <code or symbol>] [-date-format <format>] [-auto-backup true|false] [-backup-frequency daily|weekly|monthly]

  Without flags, shows the settings. The currency is a symbol or an ISO
  4217 code (INR, USD...) converted to its symbol. Date formats are
  DD/MM/YYYY, MM/DD/YYYY and YYYY-MM-DD.
`
}

func (c *settingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "Currency code or symbol")
	f.StringVar(&c.dateFormat, "date-format", "", "Date display format")
	f.StringVar(&c.autoBackup, "auto-backup", "", "Remind to back up (true, false)")
	f.StringVar(&c.backupFrequency, "backup-frequency", "", "Backup frequency (daily, weekly, monthly)")
}

func (c *settingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		settings := s.Document().Settings
		changed := false
		var err error
		f.Visit(func(fl *flag.Flag) {
			changed = true
			if err != nil {
				return
			}
			switch fl.Name {
			case "currency":
				settings.Currency = sitebook.CurrencySymbol(c.currency)
			case "date-format":
				switch c.dateFormat {
				case date.DayMonthYear, date.MonthDayYear, date.YearMonthDay:
					settings.DateFormat = c.dateFormat
				default:
					err = fmt.Errorf("invalid date format %q", c.dateFormat)
				}
			case "auto-backup":
				settings.AutoBackup, err = strconv.ParseBool(c.autoBackup)
			case "backup-frequency":
				switch freq := sitebook.BackupFrequency(c.backupFrequency); freq {
				case sitebook.BackupDaily, sitebook.BackupWeekly, sitebook.BackupMonthly:
					settings.BackupFrequency = freq
				default:
					err = fmt.Errorf("invalid backup frequency %q", c.backupFrequency)
				}
			}
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}

		if changed {
			if err := s.Update(ctx, func(d *sitebook.Document) (*sitebook.Document, error) {
				return d.UpdateSettings(settings), nil
			}); err != nil {
				fmt.Fprintf(os.Stderr, "Error saving settings: %v\n", err)
				return subcommands.ExitFailure
			}
		}
		printMarkdown(renderer.SettingsMarkdown(s.Document()))
		return subcommands.ExitSuccess
	})
}
