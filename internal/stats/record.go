package stats

import "github.com/vytor/quizdrill/internal/models"

// RecordAttempt counts one graded answer for id. The input record is not
// modified; callers must invoke it exactly once per submission.
func RecordAttempt(rec models.StatsRecord, id models.QuestionID, wasCorrect bool) models.StatsRecord {
	out := rec.Clone()
	st := out.Questions[id]
	st.Total++
	if wasCorrect {
		st.Correct++
	} else {
		st.Wrong++
	}
	out.Questions[id] = st
	return out
}

// RecordDuration stores the length of the last completed run.
func RecordDuration(rec models.StatsRecord, seconds int) models.StatsRecord {
	out := rec.Clone()
	if seconds < 0 {
		seconds = 0
	}
	out.LatestDuration = &seconds
	return out
}
