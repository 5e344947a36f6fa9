package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/etnz/sitebook"
	"github.com/etnz/sitebook/date"
	"github.com/etnz/sitebook/renderer"
	"github.com/google/subcommands"
)

type projectsCmd struct{}

func (*projectsCmd) Name() string     { return "projects" }
func (*projectsCmd) Synopsis() string { return "list the projects" }
func (*projectsCmd) Usage() string {
	return `sb projects

  Lists the projects with their payment progress. The current project is
  marked with a star.
`
}

func (*projectsCmd) SetFlags(f *flag.FlagSet) {}

func (*projectsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		printMarkdown(renderer.ProjectsMarkdown(s.Document()))
		return subcommands.ExitSuccess
	})
}

type projectAddCmd struct {
	name        string
	committed   string
	description string
}

func (*projectAddCmd) Name() string     { return "project-add" }
func (*projectAddCmd) Synopsis() string { return "create a project and make it current" }
func (*projectAddCmd) Usage() string {
	return `sb project-add -name <name> -committed <amount> [-desc <description>]

  Creates an active project with the default departments (Mason, Plumbing,
  Electrical, Interior, Painting, Miscellaneous) and makes it the current
  project.
`
}

func (c *projectAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Project name (required)")
	f.StringVar(&c.committed, "committed", "", "Total amount committed by the client (required)")
	f.StringVar(&c.description, "desc", "", "Project description")
}

func (c *projectAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" || c.committed == "" {
		fmt.Fprintln(os.Stderr, "Error: -name and -committed are required.")
		return subcommands.ExitUsageError
	}
	committed, err := parsePositiveAmount(c.committed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		var p sitebook.Project
		err := s.Update(ctx, func(d *sitebook.Document) (*sitebook.Document, error) {
			var next *sitebook.Document
			next, p = d.AddProject(c.name, committed, c.description)
			return next, nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error saving project: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Created project %q (%s)\n", p.Name, p.ID)
		return subcommands.ExitSuccess
	})
}

type projectUpdateCmd struct {
	id          string
	name        string
	committed   string
	description string
	start       string
	status      string
}

func (*projectUpdateCmd) Name() string     { return "project-update" }
func (*projectUpdateCmd) Synopsis() string { return "update a project" }
func (*projectUpdateCmd) Usage() string {
	return `sb project-update [-id <id>] [-name <name>] [-committed <amount>] [-desc <text>] [-start <date>] [-status active|completed|on-hold]

  Updates the given fields of a project, the current one by default.
`
}

func (c *projectUpdateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Project to update. Defaults to the current project.")
	f.StringVar(&c.name, "name", "", "New name")
	f.StringVar(&c.committed, "committed", "", "New committed amount")
	f.StringVar(&c.description, "desc", "", "New description")
	f.StringVar(&c.start, "start", "", "New start date. See the user manual for supported date formats.")
	f.StringVar(&c.status, "status", "", "New status (active, completed, on-hold)")
}

func (c *projectUpdateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var patch sitebook.ProjectPatch
	var err error
	f.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "name":
			patch.Name = &c.name
		case "desc":
			patch.Description = &c.description
		case "committed":
			var a sitebook.Amount
			a, err = parsePositiveAmount(c.committed)
			patch.TotalCommittedAmount = &a
		case "start":
			var d date.Date
			d, err = date.Parse(c.start)
			start := d.Time()
			patch.StartDate = &start
		case "status":
			status := sitebook.Status(c.status)
			if !slices.Contains([]sitebook.Status{sitebook.StatusActive, sitebook.StatusCompleted, sitebook.StatusOnHold}, status) {
				err = fmt.Errorf("invalid status %q", c.status)
			}
			patch.Status = &status
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		id, ok := projectID(s, c.id)
		if !ok {
			return subcommands.ExitFailure
		}
		if err := s.Update(ctx, func(d *sitebook.Document) (*sitebook.Document, error) {
			return d.UpdateProject(id, patch), nil
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving project: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Updated project %s\n", id)
		return subcommands.ExitSuccess
	})
}

type projectDeleteCmd struct {
	yes bool
}

func (*projectDeleteCmd) Name() string     { return "project-delete" }
func (*projectDeleteCmd) Synopsis() string { return "delete a project and all its records" }
func (*projectDeleteCmd) Usage() string {
	return `sb project-delete [-y] <id>

  Deletes a project with its departments, payments and attachments. When it
  was the current project, the first remaining project becomes current.
`
}

func (c *projectDeleteCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation")
}

func (c *projectDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a single project id is required.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		p, ok := s.Document().Project(id)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: project %q not found.\n", id)
			return subcommands.ExitFailure
		}
		if !confirm(c.yes, "Delete project %q and all its records?", p.Name) {
			return subcommands.ExitFailure
		}
		if err := s.Update(ctx, func(d *sitebook.Document) (*sitebook.Document, error) {
			return d.DeleteProject(id), nil
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Deleted project %q\n", p.Name)
		return subcommands.ExitSuccess
	})
}

type useCmd struct{}

func (*useCmd) Name() string     { return "use" }
func (*useCmd) Synopsis() string { return "select the current project" }
func (*useCmd) Usage() string {
	return `sb use <id>

  Makes a project the current one: departments, payments and the summary
  apply to the current project.
`
}

func (*useCmd) SetFlags(f *flag.FlagSet) {}

func (*useCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a single project id is required.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		p, ok := s.Document().Project(id)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: project %q not found.\n", id)
			return subcommands.ExitFailure
		}
		if err := s.Update(ctx, func(d *sitebook.Document) (*sitebook.Document, error) {
			return d.SetCurrentProject(id), nil
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Current project is %q\n", p.Name)
		return subcommands.ExitSuccess
	})
}

// projectID returns id, or the current project id when id is empty.
func projectID(s *sitebook.Session, id string) (string, bool) {
	if id == "" {
		p, ok := currentProject(s)
		return p.ID, ok
	}
	if _, ok := s.Document().Project(id); !ok {
		fmt.Fprintf(os.Stderr, "Error: project %q not found.\n", id)
		return "", false
	}
	return id, true
}

// parsePositiveAmount parses an amount entered by the user.
func parsePositiveAmount(s string) (sitebook.Amount, error) {
	a, err := sitebook.ParseAmount(s)
	if err != nil {
		return sitebook.Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !a.IsPositive() {
		return sitebook.Amount{}, fmt.Errorf("amount must be positive, got %s", a)
	}
	return a, nil
}

// parseMoment parses a payment date flag. Empty means now.
func parseMoment(s string) (date.Moment, error) {
	if s == "" {
		return date.At(time.Now()), nil
	}
	return date.ParseMoment(s)
}
