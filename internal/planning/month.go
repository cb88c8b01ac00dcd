package planning

import "time"

// Entry is the subset of a chantier the planning view needs.
type Entry struct {
	ID         string
	Name       string
	ClientName string
	Status     string
	StartDate  string
	Duration   string
}

// Scheduled is an entry with its computed span.
type Scheduled struct {
	Entry
	Span
}

// DayPlan is a grid cell with the chantiers active that day.
type DayPlan struct {
	Cell
	ChantierIDs []string
}

// Month is the planning view for one month.
type Month struct {
	Year      int
	Month     time.Month
	Days      []DayPlan
	Chantiers []Scheduled
	// Skipped lists entries whose start date could not be parsed.
	Skipped []string
}

// BuildMonth computes the grid for year/month and places every entry that
// overlaps it.
func BuildMonth(year int, month time.Month, today time.Time, entries []Entry) Month {
	out := Month{Year: year, Month: month, Chantiers: []Scheduled{}, Skipped: []string{}}

	for _, e := range entries {
		span, err := NewSpan(e.StartDate, e.Duration)
		if err != nil {
			out.Skipped = append(out.Skipped, e.ID)
			continue
		}
		if span.Overlaps(year, month) {
			out.Chantiers = append(out.Chantiers, Scheduled{Entry: e, Span: span})
		}
	}

	cells := MonthGrid(year, month, today)
	out.Days = make([]DayPlan, len(cells))
	for i, c := range cells {
		ids := []string{}
		for _, s := range out.Chantiers {
			if s.ActiveOn(c.Date) {
				ids = append(ids, s.ID)
			}
		}
		out.Days[i] = DayPlan{Cell: c, ChantierIDs: ids}
	}
	return out
}
