// Package cmd implements the sb command line application to keep the
// expense book of construction projects.
package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/sitebook"
	"github.com/etnz/sitebook/config"
	"github.com/etnz/sitebook/storage"
	"github.com/etnz/sitebook/storage/bbolt"
	"github.com/etnz/sitebook/storage/file"
	"github.com/etnz/sitebook/storage/sqlite"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&projectsCmd{}, "projects")
	c.Register(&projectAddCmd{}, "projects")
	c.Register(&projectUpdateCmd{}, "projects")
	c.Register(&projectDeleteCmd{}, "projects")
	c.Register(&useCmd{}, "projects")
	c.Register(&summaryCmd{}, "projects")

	c.Register(&departmentsCmd{}, "departments")
	c.Register(&departmentAddCmd{}, "departments")
	c.Register(&departmentDeleteCmd{}, "departments")

	c.Register(&inCmd{}, "payments")
	c.Register(&inAddCmd{}, "payments")
	c.Register(&inUpdateCmd{}, "payments")
	c.Register(&inDeleteCmd{}, "payments")
	c.Register(&outCmd{}, "payments")
	c.Register(&outAddCmd{}, "payments")
	c.Register(&outUpdateCmd{}, "payments")
	c.Register(&outDeleteCmd{}, "payments")
	c.Register(&attachCmd{}, "payments")
	c.Register(&attachmentGetCmd{}, "payments")

	c.Register(&backupCmd{}, "data")
	c.Register(&restoreCmd{}, "data")
	c.Register(&clearCmd{}, "data")
	c.Register(&queryCmd{}, "data")
	c.Register(&settingsCmd{}, "data")
	c.Register(&loginCmd{}, "data")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var cfg = loadConfig()

var (
	storageFlag = flag.String("storage", cfg.Storage, "Storage backend (bolt, sqlite, file, memory). Defaults to $SITEBOOK_STORAGE.")
	pathFlag    = flag.String("path", cfg.Path, "Storage file or directory. Defaults to $SITEBOOK_PATH or the user config directory.")
	keyFlag     = flag.String("key", cfg.Key, "Storage key of the document. Defaults to $SITEBOOK_KEY.")
)

func loadConfig() config.Config {
	c, err := config.Load()
	if err != nil {
		log.Printf("warning, invalid configuration, using defaults: %v", err)
		c = config.Config{
			Storage:        config.Bolt,
			Key:            sitebook.StorageKey,
			Currency:       "INR",
			DateFormat:     sitebook.DefaultSettings().DateFormat,
			MaxAttachments: sitebook.MaxAttachments,
			Quota:          storage.DefaultQuota,
		}
	}
	return c
}

// OpenStorage opens the storage selected by the global flags. The returned
// function releases it.
func OpenStorage() (storage.Storage, func() error, error) {
	c := cfg
	c.Storage, c.Path = *storageFlag, *pathFlag
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	if c.Storage == config.Memory {
		return storage.WithQuota(storage.NewMemory(), c.Quota), func() error { return nil }, nil
	}
	path, err := c.StoragePath()
	if err != nil {
		return nil, nil, err
	}

	var s interface {
		storage.Storage
		Close() error
	}
	switch c.Storage {
	case config.Bolt, config.SQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create storage directory: %w", err)
		}
		if c.Storage == config.Bolt {
			s, err = bbolt.Open(path)
		} else {
			s, err = sqlite.Open(path)
		}
	case config.File:
		s, err = file.Open(path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s storage %q: %w", c.Storage, path, err)
	}
	return storage.WithQuota(s, c.Quota), s.Close, nil
}

// OpenSession opens the storage and loads the document.
func OpenSession(ctx context.Context) (*sitebook.Session, func() error, error) {
	s, closer, err := OpenStorage()
	if err != nil {
		return nil, nil, err
	}
	store := &sitebook.Store{Storage: s, Key: *keyFlag, Defaults: cfg.Settings()}
	return sitebook.Open(ctx, store), closer, nil
}

// withSession runs f on an open session and releases the storage.
func withSession(ctx context.Context, f func(s *sitebook.Session) subcommands.ExitStatus) subcommands.ExitStatus {
	s, closer, err := OpenSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		return subcommands.ExitFailure
	}
	defer func() {
		if err := closer(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing storage: %v\n", err)
		}
	}()
	return f(s)
}

// currentProject returns the current project or prints why there is none.
func currentProject(s *sitebook.Session) (sitebook.Project, bool) {
	p, ok := s.CurrentProject()
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: no current project, create one with 'project-add' or select one with 'use'.")
	}
	return p, ok
}

// printMarkdown renders md for the terminal, or prints it as is when the
// output is not a terminal.
func printMarkdown(md string) {
	if !isTerminal(os.Stdout) {
		fmt.Print(md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		log.Printf("warning, cannot render markdown: %v", err)
		out = md
	}
	fmt.Print(out)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// stdin is where confirmations are read from.
var stdin io.Reader = os.Stdin

// confirm asks a yes/no question on stderr, unless yes is already true.
func confirm(yes bool, format string, args ...any) bool {
	if yes {
		return true
	}
	fmt.Fprintf(os.Stderr, format+" [y/N] ", args...)
	answer, _ := bufio.NewReader(stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	fmt.Fprintln(os.Stderr, "Cancelled.")
	return false
}
