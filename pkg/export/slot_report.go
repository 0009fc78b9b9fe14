package export

// SlotReportHeaders is the column order shared by every renderer.
var SlotReportHeaders = []string{"Platform", "Day", "Time", "Score", "Confidence", "Posts Analyzed", "Source"}

// SlotReportRow is one rendered recommendation line.
type SlotReportRow struct {
	Platform      string
	Day           string
	Time          string
	Score         string
	Confidence    string
	PostsAnalyzed string
	Source        string
}

// SlotReport is the tabular form of a user's posting recommendations.
type SlotReport struct {
	Title string
	Rows  []SlotReportRow
}

func (r SlotReport) records() [][]string {
	records := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		records = append(records, []string{
			row.Platform, row.Day, row.Time, row.Score, row.Confidence, row.PostsAnalyzed, row.Source,
		})
	}
	return records
}
