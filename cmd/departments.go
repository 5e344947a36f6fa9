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

type departmentsCmd struct{}

func (*departmentsCmd) Name() string     { return "departments" }
func (*departmentsCmd) Synopsis() string { return "list the departments of the current project" }
func (*departmentsCmd) Usage() string {
	return `sb departments

  Lists the departments of the current project.
`
}

func (*departmentsCmd) SetFlags(f *flag.FlagSet) {}

func (*departmentsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		p, ok := currentProject(s)
		if !ok {
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.DepartmentsMarkdown(p))
		return subcommands.ExitSuccess
	})
}

type departmentAddCmd struct{}

func (*departmentAddCmd) Name() string     { return "department-add" }
func (*departmentAddCmd) Synopsis() string { return "add a department to the current project" }
func (*departmentAddCmd) Usage() string {
	return `sb department-add <name>

  Adds a custom department to the current project.
`
}

func (*departmentAddCmd) SetFlags(f *flag.FlagSet) {}

func (*departmentAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || f.Arg(0) == "" {
		fmt.Fprintln(os.Stderr, "Error: a department name is required.")
		return subcommands.ExitUsageError
	}
	name := f.Arg(0)

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		var dep sitebook.Department
		err := s.Update(ctx, func(d *sitebook.Document) (next *sitebook.Document, err error) {
			next, dep, err = d.AddDepartment(name)
			return next, err
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error adding department: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Added department %q (%s)\n", dep.Name, dep.ID)
		return subcommands.ExitSuccess
	})
}

type departmentDeleteCmd struct {
	yes bool
}

func (*departmentDeleteCmd) Name() string     { return "department-delete" }
func (*departmentDeleteCmd) Synopsis() string { return "delete a custom department" }
func (*departmentDeleteCmd) Usage() string {
	return `sb department-delete [-y] <id>

  Deletes a custom department of the current project. Default departments
  cannot be deleted. Expenses of a deleted department are kept and show as
  Unknown.
`
}

func (c *departmentDeleteCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation")
}

func (c *departmentDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a single department id is required.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		p, ok := currentProject(s)
		if !ok {
			return subcommands.ExitFailure
		}
		dep, ok := p.Department(id)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: department %q not found.\n", id)
			return subcommands.ExitFailure
		}
		if dep.IsDefault {
			fmt.Fprintf(os.Stderr, "Error: %q is a default department and cannot be deleted.\n", dep.Name)
			return subcommands.ExitFailure
		}
		if !confirm(c.yes, "Delete department %q?", dep.Name) {
			return subcommands.ExitFailure
		}
		if err := s.Update(ctx, func(d *sitebook.Document) (*sitebook.Document, error) {
			return d.DeleteDepartment(id)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting department: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Deleted department %q\n", dep.Name)
		return subcommands.ExitSuccess
	})
}
