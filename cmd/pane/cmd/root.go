// Package cmd implements the pane CLI commands.
//
// A root command dispatches to subcommands registered from init functions.
// Each subcommand parses its own flags.
package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name  string
	Short string
	Long  string
	Usage string
	Run   func(args []string) error
}

var rootCmd = &Command{
	Name:  "pane",
	Short: "pane - retained-mode widget toolkit demo",
	Long: `pane drives a small widget tree through the toolkit's frame loop.

Use "pane <command> --help" for more information about a command.`,
	Usage: "pane <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// output receives help and informational text.
var output io.Writer = os.Stdout

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
}

// Execute runs the CLI with the given arguments, excluding the program name.
func Execute(args []string) error {
	if len(args) == 0 {
		printHelp()
		return nil
	}

	switch args[0] {
	case "-h", "--help", "help":
		printHelp()
		return nil
	case "-v", "--version", "version":
		fmt.Fprintf(output, "pane version %s (built %s)\n", Version, BuildTime)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		printHelp()
		return fmt.Errorf("unknown command: %s", args[0])
	}
	for _, arg := range args[1:] {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}
	return cmd.Run(args[1:])
}

func printHelp() {
	fmt.Fprintln(output, rootCmd.Long)
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Usage:")
	fmt.Fprintf(output, "  %s\n", rootCmd.Usage)
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(output, "  %-14s %s\n", name, commands[name].Short)
	}
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Flags:")
	fmt.Fprintln(output, "  -h, --help           Show help for a command")
	fmt.Fprintln(output, "  -v, --version        Show version information")
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Examples:")
	fmt.Fprintln(output, "  pane demo                      Run the demo in this terminal")
	fmt.Fprintln(output, "  pane snapshot -o demo.png      Render one frame to a PNG")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(output, cmd.Long)
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Usage:")
	fmt.Fprintf(output, "  %s\n", cmd.Usage)
}
