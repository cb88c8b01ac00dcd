package planning

import "time"

// Span is an inclusive range of days.
type Span struct {
	Start time.Time
	End   time.Time
}

// NewSpan builds the span of a chantier from its start date and duration.
func NewSpan(startDate, duration string) (Span, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return Span{}, err
	}
	return Span{Start: start, End: EndDate(start, duration)}, nil
}

// ActiveOn reports whether day falls within the span. Both ends count.
func (s Span) ActiveOn(day time.Time) bool {
	d := Day(day)
	return !d.Before(Day(s.Start)) && !d.After(Day(s.End))
}

// Overlaps reports whether the span touches any day of the given month.
func (s Span) Overlaps(year int, month time.Month) bool {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return !Day(s.End).Before(first) && !Day(s.Start).After(last)
}

// Cell is one square of the month grid.
type Cell struct {
	Date           time.Time
	IsCurrentMonth bool
	IsToday        bool
}

// GridSize is six weeks of seven days.
const GridSize = 42

// MonthGrid lays out a month on a 6x7 grid starting on Sunday, padded with
// the tail of the previous month and the head of the next one.
func MonthGrid(year int, month time.Month, today time.Time) []Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	today = Day(today)

	cells := make([]Cell, GridSize)
	for i := range cells {
		d := start.AddDate(0, 0, i)
		cells[i] = Cell{
			Date:           d,
			IsCurrentMonth: d.Month() == month && d.Year() == year,
			IsToday:        d.Equal(today),
		}
	}
	return cells
}
