package planning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSpanActiveOnIsInclusive(t *testing.T) {
	span, err := NewSpan("2024-03-01", "2 semaines")
	require.NoError(t, err)

	assert.False(t, span.ActiveOn(date(2024, 2, 29)))
	assert.True(t, span.ActiveOn(date(2024, 3, 1)))
	assert.True(t, span.ActiveOn(date(2024, 3, 15).Add(23*time.Hour)))
	assert.False(t, span.ActiveOn(date(2024, 3, 16)))
}

func TestSpanOverlaps(t *testing.T) {
	span, err := NewSpan("2024-01-25", "2 semaines") // ends 2024-02-08
	require.NoError(t, err)

	assert.True(t, span.Overlaps(2024, time.January))
	assert.True(t, span.Overlaps(2024, time.February))
	assert.False(t, span.Overlaps(2024, time.March))
	assert.False(t, span.Overlaps(2023, time.December))
}

func TestMonthGrid(t *testing.T) {
	// March 2024 starts on a Friday.
	cells := MonthGrid(2024, time.March, date(2024, 3, 10))
	require.Len(t, cells, GridSize)

	assert.Equal(t, date(2024, 2, 25), cells[0].Date)
	assert.Equal(t, time.Sunday, cells[0].Date.Weekday())
	assert.False(t, cells[0].IsCurrentMonth)
	assert.Equal(t, date(2024, 3, 1), cells[5].Date)

	current, today := 0, 0
	for _, c := range cells {
		if c.IsCurrentMonth {
			current++
			assert.Equal(t, time.March, c.Date.Month())
		}
		if c.IsToday {
			today++
			assert.Equal(t, date(2024, 3, 10), c.Date)
		}
	}
	assert.Equal(t, 31, current)
	assert.Equal(t, 1, today)
	assert.Equal(t, date(2024, 4, 6), cells[41].Date)
}

func TestMonthGridStartingOnSunday(t *testing.T) {
	// September 2024 starts on a Sunday: no leading padding.
	cells := MonthGrid(2024, time.September, date(2000, 1, 1))
	require.Len(t, cells, GridSize)
	assert.Equal(t, date(2024, 9, 1), cells[0].Date)
	assert.True(t, cells[0].IsCurrentMonth)
	for _, c := range cells {
		assert.False(t, c.IsToday)
	}
}

func TestBuildMonth(t *testing.T) {
	entries := []Entry{
		{ID: "a", Name: "Piscine", StartDate: "2024-03-01", Duration: "2 semaines"},
		{ID: "b", Name: "Terrasse", StartDate: "2024-05-01", Duration: "3 jours"},
		{ID: "c", Name: "Cuisine", StartDate: "n/a", Duration: "1 mois"},
	}
	m := BuildMonth(2024, time.March, date(2024, 3, 2), entries)

	require.Len(t, m.Days, GridSize)
	require.Len(t, m.Chantiers, 1)
	assert.Equal(t, "a", m.Chantiers[0].ID)
	assert.Equal(t, date(2024, 3, 15), m.Chantiers[0].End)
	assert.Equal(t, []string{"c"}, m.Skipped)

	byDate := map[time.Time][]string{}
	for _, d := range m.Days {
		byDate[d.Date] = d.ChantierIDs
	}
	assert.Equal(t, []string{"a"}, byDate[date(2024, 3, 1)])
	assert.Equal(t, []string{"a"}, byDate[date(2024, 3, 15)])
	assert.Empty(t, byDate[date(2024, 3, 16)])
}
