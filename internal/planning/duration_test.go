package planning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"2 semaines", 14},
		{"1 sem", 7},
		{"3 mois", 90},
		{"10 jours", 10},
		{"5j", 5},
		{"12", 12},
		{"  4 Semaines ", 28},
		{"semaine", 7},
		{"", 1},
		{"quelques jours", 1},
		{"36500 jours", MaxDurationDays},
		{"5000 mois", MaxDurationDays},
		{"6000 semaines", MaxDurationDays},
		{"99999999999999999999 jours", MaxDurationDays},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.in))
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-01", "2024-03-01T15:30:00Z", "01/03/2024", " 2024-03-01 "} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s -> %s", in, got)
	}

	_, err := ParseDate("bientôt")
	assert.Error(t, err)
}

func TestEndDate(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), EndDate(start, "2 semaines"))

	start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), EndDate(start, "10 jours"))

	for _, d := range []string{"99999999999999999999 jours", "9223372036854775807 mois"} {
		end := EndDate(start, d)
		assert.True(t, end.After(start), d)
		assert.Equal(t, start.AddDate(0, 0, MaxDurationDays), end, d)
	}
}
