package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vytor/quizdrill/internal/errors"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/quiz"
)

const quitInput = "q"

// drill runs the interactive loop for the engine's active run until it
// finishes or the user quits.
func drill(e *env, app *App) int {
	reader := e.stdin
	out := e.stdout
	noColor := app.NoColor

	app.Engine.Subscribe(quiz.ObserverFunc(func(ev quiz.Event) {
		if ev.Type == quiz.EventPersistFailed {
			fmt.Fprintf(e.stderr, "warning: %v\n", ev.Err)
		}
	}))

	for {
		p, err := app.Engine.PresentCurrent(e.ctx)
		if err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return ExitError
		}
		renderPresentation(out, p, noColor)

		switch {
		case p.ViewOnly:
			renderReveal(out, p, noColor)
		case p.Grade == nil:
			grade, quit, err := readAnswer(e, reader, app, p)
			if err != nil {
				fmt.Fprintf(e.stderr, "Error: %v\n", err)
				return ExitError
			}
			if quit {
				return suspend(e, app)
			}
			renderGrade(out, p, grade, noColor)
		default:
			renderGrade(out, p, *p.Grade, noColor)
		}

		line, err := promptLine(reader, out, "Press Enter to continue (q to quit): ")
		if err != nil || strings.EqualFold(line, quitInput) {
			if err != nil && err != io.EOF {
				fmt.Fprintf(e.stderr, "Error: %v\n", err)
				return ExitError
			}
			return suspend(e, app)
		}

		res, err := app.Engine.Advance(e.ctx)
		if err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return ExitError
		}
		switch res.Transition {
		case quiz.TransitionRoundComplete:
			fmt.Fprintln(out)
			fmt.Fprintln(out, stylize(fmt.Sprintf("Round complete. Repeating %d missed question(s).", res.Repeating), noColor, colorMissing))
		case quiz.TransitionFinished:
			renderSummary(out, res.Summary, noColor)
			return ExitOK
		}
	}
}

// readAnswer prompts until the input names known options, then submits it.
func readAnswer(e *env, reader *bufio.Reader, app *App, p quiz.Presentation) (grade models.Grade, quit bool, err error) {
	out := e.stdout
	for {
		line, rerr := promptLine(reader, out, "Your answer: ")
		if rerr != nil && rerr != io.EOF {
			return models.Grade{}, false, rerr
		}
		if rerr == io.EOF || strings.EqualFold(line, quitInput) {
			return models.Grade{}, true, nil
		}

		keys, perr := parseSelection(line, p)
		if perr != nil {
			fmt.Fprintf(out, "Invalid answer: %v\n", perr)
			continue
		}
		g, serr := app.Engine.Submit(e.ctx, keys)
		if serr != nil {
			if errors.Is(serr, errors.ErrCodeValidation) {
				fmt.Fprintf(out, "%v\n", serr)
				continue
			}
			return models.Grade{}, false, serr
		}
		return g, false, nil
	}
}

// parseSelection maps displayed labels such as "a,c" or "a c" to option keys.
func parseSelection(input string, p quiz.Presentation) ([]string, error) {
	byLabel := make(map[string]string, len(p.Options))
	for i, opt := range p.Options {
		byLabel[optionLabel(i)] = opt.Key
	}

	fields := strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("select at least one option")
	}
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		key, ok := byLabel[f]
		if !ok {
			return nil, fmt.Errorf("unknown option %q", f)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func suspend(e *env, app *App) int {
	viewOnly := false
	if s := app.Engine.State(); s != nil {
		viewOnly = s.ViewOnly
	}
	app.Engine.Suspend(e.ctx)
	fmt.Fprintln(e.stdout)
	if viewOnly {
		fmt.Fprintln(e.stdout, "Stopped.")
		return ExitOK
	}
	fmt.Fprintln(e.stdout, "Progress saved. Continue with \"quizdrill resume\".")
	return ExitOK
}
