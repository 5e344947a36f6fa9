package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/sitebook"
	"github.com/google/subcommands"
)

type loginCmd struct {
	password string
	logout   bool
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in, log out or show the logged in user" }
func (*loginCmd) Usage() string {
	return `sb login [-password <password>] <username>
sb login -logout
sb login

  Logs in with the credentials of a user of the book. The password is read
  from standard input when -password is not given. Without arguments, shows
  the logged in user.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.password, "password", "", "Password")
	f.BoolVar(&c.logout, "logout", false, "Log out")
}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *sitebook.Session) subcommands.ExitStatus {
		switch {
		case c.logout:
			if err := s.Logout(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitFailure
			}
			fmt.Println("Logged out")
			return subcommands.ExitSuccess

		case f.NArg() == 0:
			u, ok := s.CurrentUser(ctx)
			if !ok {
				fmt.Println("Not logged in")
				return subcommands.ExitSuccess
			}
			fmt.Printf("Logged in as %s (%s, %s)\n", u.Username, u.Name, u.Role)
			return subcommands.ExitSuccess
		}

		password := c.password
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, _ := bufio.NewReader(stdin).ReadString('\n')
			password = strings.TrimRight(line, "\r\n")
		}
		u, err := s.Login(ctx, f.Arg(0), password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Welcome %s\n", u.Name)
		return subcommands.ExitSuccess
	})
}
