package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/quiz"
)

const (
	colorHeading = lipgloss.Color("33")
	colorCorrect = lipgloss.Color("82")
	colorWrong   = lipgloss.Color("196")
	colorMissing = lipgloss.Color("214")
	colorMuted   = lipgloss.Color("245")
)

func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func bold(text string, noColor bool) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Bold(true).Render(text)
}

// optionLabel names the option shown at position i: a, b, c...
func optionLabel(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	return fmt.Sprintf("%d", i+1)
}

func formatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func renderPresentation(w io.Writer, p quiz.Presentation, noColor bool) {
	header := fmt.Sprintf("%s  Question %d/%d", p.RoundLabel, p.Number, p.Total)
	if !p.ViewOnly {
		header += fmt.Sprintf("  Score %d", p.Score)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, stylize(header, noColor, colorHeading))
	fmt.Fprintf(w, "[%s] %s\n", p.Question.ID, bold(p.Question.Text, noColor))
	if p.Question.Table != nil {
		fmt.Fprintln(w, renderDataTable(*p.Question.Table))
	}
	if p.Question.IsMultiAnswer() && !p.ViewOnly {
		fmt.Fprintln(w, stylize("(select all that apply)", noColor, colorMuted))
	}
	for i, opt := range p.Options {
		fmt.Fprintf(w, "  %s) %s\n", optionLabel(i), opt.Text)
	}
}

func renderDataTable(t models.Table) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Header...).
		Rows(t.Rows...).
		String()
}

// renderReveal prints the correct options and the explanation.
func renderReveal(w io.Writer, p quiz.Presentation, noColor bool) {
	var correct []string
	for i, opt := range p.Options {
		if p.Question.Answer.Has(opt.Key) {
			correct = append(correct, fmt.Sprintf("%s) %s", optionLabel(i), opt.Text))
		}
	}
	fmt.Fprintf(w, "Answer: %s\n", stylize(strings.Join(correct, "; "), noColor, colorCorrect))
	if p.Question.Explanation != "" {
		fmt.Fprintf(w, "%s\n", stylize(p.Question.Explanation, noColor, colorMuted))
	}
}

func renderGrade(w io.Writer, p quiz.Presentation, g models.Grade, noColor bool) {
	labels := make(map[string]string, len(p.Options))
	for i, opt := range p.Options {
		labels[opt.Key] = optionLabel(i)
	}
	names := func(keys []string) string {
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, labels[k])
		}
		return strings.Join(out, ", ")
	}

	if g.Correct {
		fmt.Fprintln(w, stylize("Correct!", noColor, colorCorrect))
	} else {
		fmt.Fprintln(w, stylize("Wrong.", noColor, colorWrong))
		if len(g.Missing) > 0 {
			fmt.Fprintf(w, "Missed: %s\n", stylize(names(g.Missing), noColor, colorMissing))
		}
		if len(g.Extra) > 0 {
			fmt.Fprintf(w, "Not correct: %s\n", stylize(names(g.Extra), noColor, colorWrong))
		}
	}
	renderReveal(w, p, noColor)
}

func renderSummary(w io.Writer, s *quiz.RunSummary, noColor bool) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, stylize("Run complete", noColor, colorHeading))
	if s.ViewOnly {
		fmt.Fprintf(w, "Viewed %d questions in %s\n", s.Questions, formatElapsed(s.ElapsedSeconds))
		return
	}
	fmt.Fprintf(w, "Questions: %d\n", s.Questions)
	fmt.Fprintf(w, "Rounds:    %d\n", s.Rounds)
	fmt.Fprintf(w, "Score:     %d\n", s.Score)
	fmt.Fprintf(w, "Time:      %s\n", formatElapsed(s.ElapsedSeconds))
}

func renderStats(w io.Writer, summary models.StatsSummary, noColor bool) {
	if len(summary.Rows) == 0 {
		fmt.Fprintln(w, "No statistics recorded yet.")
		return
	}

	rows := make([][]string, 0, len(summary.Rows))
	for _, r := range summary.Rows {
		rows = append(rows, []string{
			string(r.ID),
			r.Text,
			fmt.Sprintf("%d", r.Total),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Wrong),
			fmt.Sprintf("%.1f%%", r.SuccessRate),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Question", "Total", "Correct", "Wrong", "Success").
		Rows(rows...)
	if !noColor {
		header := lipgloss.NewStyle().Bold(true).Foreground(colorHeading)
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle()
		})
	}
	fmt.Fprintln(w, t.String())

	fmt.Fprintf(w, "Total attempts: %d  Correct: %d  Wrong: %d  Success rate: %.1f%%\n",
		summary.Total, summary.Correct, summary.Wrong, summary.SuccessRate)
	if summary.LatestDuration != nil {
		fmt.Fprintf(w, "Latest run: %s\n", formatElapsed(*summary.LatestDuration))
	}

	if len(summary.Worst) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, stylize("Needs practice", noColor, colorMissing))
		for _, r := range summary.Worst {
			fmt.Fprintf(w, "  %5.1f%%  %3d tries  [%s] %s\n", r.SuccessRate, r.Total, r.ID, r.Text)
		}
	}
}
