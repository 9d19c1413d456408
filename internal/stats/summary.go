package stats

import (
	"sort"
	"unicode/utf8"

	"github.com/vytor/quizdrill/internal/models"
)

const (
	rowTextWidth   = 65
	worstTextWidth = 85
)

// Lookup resolves question text for a stats row. Unknown ids yield "".
type Lookup func(id models.QuestionID) (string, bool)

// Summarize builds the stats report. worstLimit caps the worst ranking; 0
// disables it.
func Summarize(rec models.StatsRecord, lookup Lookup, worstLimit int) models.StatsSummary {
	ids := make([]models.QuestionID, 0, len(rec.Questions))
	for id := range rec.Questions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	summary := models.StatsSummary{Rows: []models.StatsRow{}, Worst: []models.StatsRow{}}
	if rec.LatestDuration != nil {
		d := *rec.LatestDuration
		summary.LatestDuration = &d
	}

	var rateSum float64
	full := make([]models.StatsRow, 0, len(ids))
	for _, id := range ids {
		st := rec.Questions[id]
		text := ""
		if lookup != nil {
			text, _ = lookup(id)
		}
		row := models.StatsRow{
			ID:          id,
			Text:        text,
			Total:       st.Total,
			Correct:     st.Correct,
			Wrong:       st.Wrong,
			SuccessRate: st.SuccessRate(),
		}
		full = append(full, row)

		row.Text = Truncate(text, rowTextWidth)
		summary.Rows = append(summary.Rows, row)

		summary.Total += st.Total
		summary.Correct += st.Correct
		summary.Wrong += st.Wrong
		rateSum += row.SuccessRate
	}
	if len(ids) > 0 {
		summary.SuccessRate = rateSum / float64(len(ids))
	}

	if worstLimit > 0 {
		summary.Worst = Worst(full, worstLimit)
	}
	return summary
}

// Worst ranks attempted rows by ascending success rate, ties broken by id.
func Worst(rows []models.StatsRow, limit int) []models.StatsRow {
	ranked := make([]models.StatsRow, 0, len(rows))
	for _, r := range rows {
		if r.Total > 0 {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].SuccessRate != ranked[j].SuccessRate {
			return ranked[i].SuccessRate < ranked[j].SuccessRate
		}
		return ranked[i].ID.Less(ranked[j].ID)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Text = Truncate(ranked[i].Text, worstTextWidth)
	}
	return ranked
}

// Truncate shortens s to width runes, marking the cut with "...".
func Truncate(s string, width int) string {
	if width <= 3 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}
