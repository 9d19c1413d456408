package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/vytor/quizdrill/internal/errors"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// env is what a command runs against.
type env struct {
	ctx    context.Context
	stdin  *bufio.Reader
	stdout io.Writer
	stderr io.Writer
	open   Opener
}

// app opens the App, reporting failures on stderr.
func (e *env) app() (*App, int) {
	app, err := e.open(e.ctx)
	if err != nil {
		if !errors.Recoverable(err) {
			fmt.Fprintf(e.stderr, "Cannot load the question bank:\n%v\n", err)
		} else {
			fmt.Fprintf(e.stderr, "Startup failed: %v\n", err)
		}
		return nil, ExitError
	}
	return app, ExitOK
}

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(e *env, args []string) int
}

// Run dispatches args to a command and returns the process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, open Opener) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(&env{ctx: ctx, stdin: bufio.NewReader(stdin), stdout: stdout, stderr: stderr, open: open}, args[1:])
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  quizdrill <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"quizdrill <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(e *env, args []string) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands []*Command

func init() {
	commands = []*Command{
		command("run", "Start a new quiz run", []string{
			"quizdrill run [-type theoretical|practical|all] [-limit N] [-view]",
		}, runRun),
		command("resume", "Continue the saved run", []string{
			"quizdrill resume",
		}, runResume),
		command("stats", "Show answer statistics", []string{
			"quizdrill stats [-worst N]",
		}, runStats),
		command("reset-stats", "Delete all answer statistics", []string{
			"quizdrill reset-stats [-yes]",
		}, runResetStats),
		command("show", "Show one question with its answer", []string{
			"quizdrill show <id>",
		}, runShow),
		command("bank", "Summarize the question bank", []string{
			"quizdrill bank",
		}, runBank),
		command("serve", "Serve the trainer over a local JSON API", []string{
			"quizdrill serve [-addr host:port]",
		}, runServe),
	}
}
