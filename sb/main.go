package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/sitebook/cmd"
	"github.com/etnz/sitebook/config"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	// completion only runs when invoked by the shell, it exits then.
	completion(commander).Complete(commander.Name())

	flag.Parse()
	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(commander *subcommands.Commander, name string) (found bool) {
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		found = found || c.Name() == name
	})
	return found
}

// fileArgs are the commands whose arguments are files.
var fileArgs = map[string]complete.Predictor{
	"restore": predict.Files("sitebook_backup_*"),
	"attach":  predict.Files("*"),
	"in-add":  predict.Files("*"),
	"out-add": predict.Files("*"),
}

// completion describes the commands and their flags for shell completion.
func completion(commander *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub: map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{
			"storage": predict.Set(config.Backends),
			"path":    predict.Files("*"),
			"key":     predict.Something,
		},
	}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		sub := &complete.Command{Flags: map[string]complete.Predictor{}, Args: fileArgs[c.Name()]}
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		fs.VisitAll(func(f *flag.Flag) {
			switch b, ok := f.Value.(interface{ IsBoolFlag() bool }); {
			case ok && b.IsBoolFlag():
				sub.Flags[f.Name] = predict.Nothing
			case f.Name == "o":
				sub.Flags[f.Name] = predict.Dirs("*")
			default:
				sub.Flags[f.Name] = predict.Something
			}
		})
		root.Sub[c.Name()] = sub
	})
	return root
}
