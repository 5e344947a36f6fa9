package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/sitebook"
	"github.com/google/subcommands"
)

type queryCmd struct{}

func (*queryCmd) Name() string { return "query" }
func (*queryCmd) Synopsis() string {
	return "extract values from the document with a JSONPath expression"
}
func (*queryCmd) Usage() string {
	return `sb query <jsonpath>

  Evaluates a JSONPath expression against the stored document, in its
  backup format. Strings are printed as is, other values as JSON.

Usage Examples:
$ sb query '$.projects[*].name'
$ sb query '$.projects[?(@.status == "active")].totalCommittedAmount'
`
}

func (*queryCmd) SetFlags(f *flag.FlagSet) {}

func (*queryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a single JSONPath expression is required.")
		return subcommands.ExitUsageError
	}
	path := f.Arg(0)

	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		v, err := query(s.Document(), path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if str, ok := v.(string); ok {
			fmt.Println(str)
			return subcommands.ExitSuccess
		}
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(out))
		return subcommands.ExitSuccess
	})
}

// query evaluates a JSONPath expression on the JSON form of d.
func query(d *sitebook.Document, path string) (any, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	v, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", path, err)
	}
	return v, nil
}
