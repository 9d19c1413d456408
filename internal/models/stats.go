package models

import "fmt"

// LatestDurationKey is the reserved stats key for the duration of the last
// completed run, in seconds.
const LatestDurationKey = "latest_duration"

// QuestionStat counts attempts for one question. Total == Correct + Wrong.
type QuestionStat struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// SuccessRate is the percentage of correct attempts, 0 when never attempted.
func (s QuestionStat) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return 100 * float64(s.Correct) / float64(s.Total)
}

// Check reports counters that are negative or do not add up.
func (s QuestionStat) Check() error {
	if s.Total < 0 || s.Correct < 0 || s.Wrong < 0 {
		return fmt.Errorf("negative counter in %+v", s)
	}
	if s.Total != s.Correct+s.Wrong {
		return fmt.Errorf("total %d != correct %d + wrong %d", s.Total, s.Correct, s.Wrong)
	}
	return nil
}

// StatsRecord holds per-question counters plus the latest run duration.
type StatsRecord struct {
	Questions map[QuestionID]QuestionStat
	// LatestDuration is nil until a run has been completed.
	LatestDuration *int
}

// NewStatsRecord returns an empty record.
func NewStatsRecord() StatsRecord {
	return StatsRecord{Questions: map[QuestionID]QuestionStat{}}
}

// Clone returns an independent copy.
func (r StatsRecord) Clone() StatsRecord {
	out := StatsRecord{Questions: make(map[QuestionID]QuestionStat, len(r.Questions))}
	for id, st := range r.Questions {
		out.Questions[id] = st
	}
	if r.LatestDuration != nil {
		d := *r.LatestDuration
		out.LatestDuration = &d
	}
	return out
}

// StatsRow is one line of the stats report.
type StatsRow struct {
	ID          QuestionID `json:"id"`
	Text        string     `json:"text"`
	Total       int        `json:"total"`
	Correct     int        `json:"correct"`
	Wrong       int        `json:"wrong"`
	SuccessRate float64    `json:"success_rate"`
}

// StatsSummary aggregates all rows.
type StatsSummary struct {
	Total          int        `json:"total"`
	Correct        int        `json:"correct"`
	Wrong          int        `json:"wrong"`
	SuccessRate    float64    `json:"success_rate"`
	LatestDuration *int       `json:"latest_duration,omitempty"`
	Rows           []StatsRow `json:"rows"`
	Worst          []StatsRow `json:"worst"`
}
