package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/sitebook"
	"github.com/google/subcommands"
)

type backupCmd struct {
	output     string
	compressed bool
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "export the whole document to a backup file" }
func (*backupCmd) Usage() string {
	return `sb backup [-z] [-o <dir>]

  Writes the whole document to sitebook_backup_<timestamp>.ttf, pretty
  printed JSON, or with -z to sitebook_backup_<timestamp>.json.gz, gzip
  compressed JSON.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", ".", "Output directory")
	f.BoolVar(&c.compressed, "z", false, "Compress the backup with gzip")
}

func (c *backupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	export := sitebook.ExportRaw
	if c.compressed {
		export = sitebook.ExportCompressed
	}
	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		b, err := export(s.Document(), time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
			return subcommands.ExitFailure
		}
		path, err := b.WriteFile(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Backup written to %s\n", path)
		return subcommands.ExitSuccess
	})
}

type restoreCmd struct {
	yes bool
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "replace the whole document with a backup" }
func (*restoreCmd) Usage() string {
	return `sb restore [-y] <file>

  Replaces all the data with the content of a backup file. Files ending in
  .gz are decompressed first. A backup without users or departments is
  rejected and the data is left untouched.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation")
}

func (c *restoreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a single backup file is required.")
		return subcommands.ExitUsageError
	}
	path := f.Arg(0)
	name := filepath.Base(path)
	if !sitebook.ValidBackupName(name) {
		fmt.Fprintf(os.Stderr, "Error: %q is not a backup file (%s or %s).\n", name, sitebook.BackupExtension, sitebook.CompressedBackupExtension)
		return subcommands.ExitUsageError
	}
	if !confirm(c.yes, "Replace all the data with %q?", name) {
		return subcommands.ExitFailure
	}

	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		if err := s.Restore(ctx, file, name); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Restored %d project(s) from %s\n", len(s.Document().Projects), name)
		return subcommands.ExitSuccess
	})
}

type clearCmd struct {
	yes bool
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "delete all the data" }
func (*clearCmd) Usage() string {
	return `sb clear [-y]

  Deletes the stored document. The next command starts from an empty book.
`
}

func (c *clearCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation")
}

func (c *clearCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !confirm(c.yes, "Delete all the data?") {
		return subcommands.ExitFailure
	}
	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		if err := s.Reset(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println("All data cleared")
		return subcommands.ExitSuccess
	})
}
