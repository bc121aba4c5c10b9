package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// A Command is an implementation of one shis2mirto subcommand.
type Command struct {
	// Run runs the command. The args are the arguments left after
	// flag parsing.
	Run func(cmd *Command, args []string)

	// UsageLine is the one-line usage message.
	// The first word in the line is taken to be the command name.
	UsageLine string

	// Short is the short description shown in the 'shis2mirto help' output.
	Short string

	// Long is the long message shown in the
	// 'shis2mirto help <command>' output.
	Long string

	// Flag is a set of flags specific to this command.
	Flag flag.FlagSet
}

// Name returns the command's name: the first word in the usage line.
func (c *Command) Name() string {
	name := c.UsageLine
	if i := strings.Index(name, " "); i >= 0 {
		name = name[:i]
	}
	return name
}

// Usage prints the command's usage and exits with the usage status.
func (c *Command) Usage() {
	fmt.Fprintf(os.Stderr, "usage: shis2mirto %s\n\n", c.UsageLine)
	fmt.Fprintf(os.Stderr, "%s\n", strings.TrimSpace(c.Long))
	os.Exit(2)
}

// usage prints the top-level usage summary and exits.
func usage() {
	fmt.Fprintf(os.Stderr, "shis2mirto converts Scanning HIS granules into Mirto retrieval inputs.\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n\n\tshis2mirto [global options] command [arguments]\n\n")
	fmt.Fprintf(os.Stderr, "The commands are:\n\n")
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "\t%-16s %s\n", cmd.Name(), cmd.Short)
	}
	fmt.Fprintf(os.Stderr, "\nThe global options are:\n\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nUse \"shis2mirto help [command]\" for more information about a command.\n")
	os.Exit(2)
}

// help implements the 'help' command.
func help(args []string) {
	if len(args) == 0 {
		fmt.Printf("The commands are:\n\n")
		for _, cmd := range commands {
			fmt.Printf("\t%-16s %s\n", cmd.Name(), cmd.Short)
		}
		fmt.Printf("\nUse \"shis2mirto help [command]\" for more information about a command.\n")
		return
	}
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: shis2mirto help [command]\n")
		os.Exit(2)
	}

	for _, cmd := range commands {
		if cmd.Name() == args[0] {
			fmt.Printf("usage: shis2mirto %s\n\n", cmd.UsageLine)
			fmt.Printf("%s\n", strings.TrimSpace(cmd.Long))
			return
		}
	}

	fmt.Fprintf(os.Stderr, "shis2mirto: unknown help topic %q. Run 'shis2mirto help'.\n", args[0])
	os.Exit(2)
}
