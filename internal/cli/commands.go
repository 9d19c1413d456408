package cli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	apperrors "github.com/vytor/quizdrill/internal/errors"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/question"
	"github.com/vytor/quizdrill/internal/services"
)

// parseFlags parses args with fs, printing usage on -h. ok is false when the
// command should return code.
func parseFlags(cmd *Command, fs *flag.FlagSet, args []string, stderr io.Writer) (code int, ok bool) {
	fs.SetOutput(stderr)
	fs.Usage = func() { printCommandUsage(cmd, stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK, false
		}
		return ExitUsage, false
	}
	return ExitOK, true
}

func runRun(cmd *Command) func(e *env, args []string) int {
	return func(e *env, args []string) int {
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		typ := fs.String("type", question.TypeAll, "question type to drill")
		limit := fs.Int("limit", 0, "number of random questions (0 for all)")
		view := fs.Bool("view", false, "show questions with answers, no grading")
		if code, ok := parseFlags(cmd, fs, args, e.stderr); !ok {
			return code
		}
		if fs.NArg() > 0 {
			fmt.Fprintf(e.stderr, "Unexpected arguments: %v\n", fs.Args())
			return ExitUsage
		}

		app, code := e.app()
		if app == nil {
			return code
		}
		defer app.Close()

		if !*view && app.Engine.HasSnapshot(e.ctx) {
			discard, err := promptYesNo(e.stdin, e.stdout, "A saved run exists. Discard it and start over?", false)
			if err != nil || !discard {
				fmt.Fprintln(e.stdout, "Keeping the saved run. Continue with \"quizdrill resume\".")
				return ExitOK
			}
		}

		if _, err := app.Runs.Start(e.ctx, services.RunRequest{Type: *typ, Limit: *limit, ViewOnly: *view}); err != nil {
			fmt.Fprintf(e.stderr, "Cannot start run: %v\n", err)
			if apperrors.Is(err, apperrors.ErrCodeValidation) {
				return ExitUsage
			}
			return ExitError
		}
		return drill(e, app)
	}
}

func runResume(cmd *Command) func(e *env, args []string) int {
	return func(e *env, args []string) int {
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		if code, ok := parseFlags(cmd, fs, args, e.stderr); !ok {
			return code
		}

		app, code := e.app()
		if app == nil {
			return code
		}
		defer app.Close()

		if _, err := app.Engine.Resume(e.ctx); err != nil {
			fmt.Fprintf(e.stderr, "Cannot resume: %v\n", err)
			return ExitError
		}
		return drill(e, app)
	}
}

func runStats(cmd *Command) func(e *env, args []string) int {
	return func(e *env, args []string) int {
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		worst := fs.Int("worst", 0, "number of weakest questions to list (0 for the configured default)")
		asJSON := fs.Bool("json", false, "print the report as JSON")
		if code, ok := parseFlags(cmd, fs, args, e.stderr); !ok {
			return code
		}

		app, code := e.app()
		if app == nil {
			return code
		}
		defer app.Close()

		summary, err := app.Stats.Report(e.ctx, *worst)
		if err != nil {
			fmt.Fprintf(e.stderr, "Cannot build report: %v\n", err)
			return ExitError
		}
		if *asJSON {
			enc := json.NewEncoder(e.stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				fmt.Fprintf(e.stderr, "Cannot encode report: %v\n", err)
				return ExitError
			}
			return ExitOK
		}
		renderStats(e.stdout, summary, app.NoColor)
		return ExitOK
	}
}

func runResetStats(cmd *Command) func(e *env, args []string) int {
	return func(e *env, args []string) int {
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		yes := fs.Bool("yes", false, "skip the confirmation prompt")
		if code, ok := parseFlags(cmd, fs, args, e.stderr); !ok {
			return code
		}

		app, code := e.app()
		if app == nil {
			return code
		}
		defer app.Close()

		if !*yes {
			confirmed, err := promptYesNo(e.stdin, e.stdout, "Delete all statistics?", false)
			if err != nil || !confirmed {
				fmt.Fprintln(e.stdout, "Statistics kept.")
				return ExitOK
			}
		}
		if err := app.Stats.Reset(e.ctx); err != nil {
			fmt.Fprintf(e.stderr, "Cannot reset statistics: %v\n", err)
			return ExitError
		}
		fmt.Fprintln(e.stdout, "Statistics deleted.")
		return ExitOK
	}
}

func runShow(cmd *Command) func(e *env, args []string) int {
	return func(e *env, args []string) int {
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		if code, ok := parseFlags(cmd, fs, args, e.stderr); !ok {
			return code
		}
		if fs.NArg() != 1 {
			printCommandUsage(cmd, e.stderr)
			return ExitUsage
		}

		app, code := e.app()
		if app == nil {
			return code
		}
		defer app.Close()

		detail, err := app.Stats.Question(e.ctx, models.QuestionID(fs.Arg(0)))
		if err != nil {
			fmt.Fprintf(e.stderr, "%v\n", err)
			return ExitError
		}

		q := detail.Question
		out := e.stdout
		fmt.Fprintf(out, "[%s] %s\n", q.ID, bold(q.Text, app.NoColor))
		fmt.Fprintf(out, "Type: %s\n", q.Type)
		if q.Table != nil {
			fmt.Fprintln(out, renderDataTable(*q.Table))
		}
		for _, opt := range q.Options {
			marker := " "
			if q.Answer.Has(opt.Key) {
				marker = stylize("*", app.NoColor, colorCorrect)
			}
			fmt.Fprintf(out, " %s %s) %s\n", marker, opt.Key, opt.Text)
		}
		if q.Explanation != "" {
			fmt.Fprintf(out, "%s\n", stylize(q.Explanation, app.NoColor, colorMuted))
		}
		st := detail.Stat
		fmt.Fprintf(out, "Attempts: %d  Correct: %d  Wrong: %d  Success rate: %.1f%%\n", st.Total, st.Correct, st.Wrong, st.SuccessRate())
		return ExitOK
	}
}

func runBank(cmd *Command) func(e *env, args []string) int {
	return func(e *env, args []string) int {
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		if code, ok := parseFlags(cmd, fs, args, e.stderr); !ok {
			return code
		}

		app, code := e.app()
		if app == nil {
			return code
		}
		defer app.Close()

		counts := app.Bank.CountByType()
		fmt.Fprintf(e.stdout, "%s: %d questions\n", app.Config.BankPath, app.Bank.Len())
		for _, typ := range app.Bank.Types() {
			fmt.Fprintf(e.stdout, "  %-14s %d\n", typ, counts[typ])
		}
		return ExitOK
	}
}
