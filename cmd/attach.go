package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/sitebook"
	"github.com/etnz/sitebook/renderer"
	"github.com/google/subcommands"
)

type attachCmd struct {
	remove string
}

func (*attachCmd) Name() string     { return "attach" }
func (*attachCmd) Synopsis() string { return "list, add or remove the files attached to a payment" }
func (*attachCmd) Usage() string {
	return `sb attach [-remove <attachment id>] <payment id> [<file>...]

  Attaches files to a payment received or an expense of the current project.
  Without files, lists the attachments. Images, PDF, Word, Excel, text and
  CSV files up to 5MB are accepted.
`
}

func (c *attachCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.remove, "remove", "", "Remove this attachment")
}

func (c *attachCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: a payment id is required.")
		return subcommands.ExitUsageError
	}
	id, files := f.Arg(0), f.Args()[1:]

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		existing, kind, ok := findAttachments(s, id)
		if !ok {
			return subcommands.ExitFailure
		}
		if c.remove == "" && len(files) == 0 {
			printMarkdown(renderer.AttachmentsMarkdown(existing))
			return subcommands.ExitSuccess
		}

		attachments := existing
		if c.remove != "" {
			attachments = sitebook.Detach(attachments, c.remove)
			if len(attachments) == len(existing) {
				fmt.Fprintf(os.Stderr, "Error: attachment %q not found.\n", c.remove)
				return subcommands.ExitFailure
			}
		}
		attachments, ok = attachFiles(attachments, files)
		if !ok {
			return subcommands.ExitFailure
		}

		err := s.Update(ctx, func(d *sitebook.Document) (*sitebook.Document, error) {
			if kind == "in" {
				return d.UpdatePaymentIn(id, sitebook.PaymentInPatch{Attachments: &attachments})
			}
			return d.UpdatePaymentOut(id, sitebook.PaymentOutPatch{Attachments: &attachments})
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error saving attachments: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Payment %s has %d attachment(s)\n", id, len(attachments))
		return subcommands.ExitSuccess
	})
}

type attachmentGetCmd struct {
	output string
}

func (*attachmentGetCmd) Name() string     { return "attachment-get" }
func (*attachmentGetCmd) Synopsis() string { return "save an attached file" }
func (*attachmentGetCmd) Usage() string {
	return `sb attachment-get [-o <dir>] <payment id> <attachment id>

  Saves an attached file under its original name.
`
}

func (c *attachmentGetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", ".", "Output directory")
}

func (c *attachmentGetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: a payment id and an attachment id are required.")
		return subcommands.ExitUsageError
	}
	id, attachmentID := f.Arg(0), f.Arg(1)

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		attachments, _, ok := findAttachments(s, id)
		if !ok {
			return subcommands.ExitFailure
		}
		for _, a := range attachments {
			if a.ID != attachmentID {
				continue
			}
			_, content, err := sitebook.DecodeData(a.Data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error decoding %q: %v\n", a.Name, err)
				return subcommands.ExitFailure
			}
			path := filepath.Join(c.output, filepath.Base(a.Name))
			if err := os.WriteFile(path, content, 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", path, err)
				return subcommands.ExitFailure
			}
			fmt.Printf("Saved %s (%s)\n", path, sitebook.FormatFileSize(int64(len(content))))
			return subcommands.ExitSuccess
		}
		fmt.Fprintf(os.Stderr, "Error: attachment %q not found.\n", attachmentID)
		return subcommands.ExitFailure
	})
}

// findAttachments returns the attachments of a payment of the current
// project, and whether it is a payment received ("in") or an expense ("out").
func findAttachments(s *sitebook.Session, id string) ([]sitebook.Attachment, string, bool) {
	p, ok := currentProject(s)
	if !ok {
		return nil, "", false
	}
	for _, in := range p.PaymentsIn {
		if in.ID == id {
			return in.Attachments, "in", true
		}
	}
	for _, out := range p.PaymentsOut {
		if out.ID == id {
			return out.Attachments, "out", true
		}
	}
	fmt.Fprintf(os.Stderr, "Error: payment %q not found in %q.\n", id, p.Name)
	return nil, "", false
}

// attachFiles encodes the files and appends them to existing. Files that
// cannot be attached are reported and skipped; ok is false when the batch is
// rejected.
func attachFiles(existing []sitebook.Attachment, paths []string) (attachments []sitebook.Attachment, ok bool) {
	if len(paths) == 0 {
		return existing, true
	}
	uploads := make([]sitebook.Upload, 0, len(paths))
	for _, p := range paths {
		pending := sitebook.PendingUpload{Path: filepath.Base(p)}
		uploads = append(uploads, pending.Encode(os.DirFS(filepath.Dir(p))))
	}
	attachments, err := sitebook.Attach(existing, uploads, cfg.MaxAttachments)
	if errors.Is(err, sitebook.ErrTooManyFiles) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return existing, false
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning, some files were not attached:\n%v\n", err)
	}
	return attachments, true
}
