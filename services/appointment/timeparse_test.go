package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSessionStartAcceptedShapes(t *testing.T) {
	want := time.Date(2025, time.January, 5, 14, 0, 0, 0, time.UTC)
	cases := []struct{ date, clock string }{
		{"Jan 5, 2025", "2:00 PM"},
		{"05,Jan,2025", "02:00 PM"},
		{"5 January 2025", "02:00 pm"},
		{"January 5, 2025", "2:00PM"},
		{"2025-01-05", "14:00"},
		{"  05 ,  Jan , 2025 ", " 2:00 PM "},
	}
	for _, tc := range cases {
		got, err := ParseSessionStart(tc.date, tc.clock, time.UTC)
		require.NoError(t, err, "%q %q", tc.date, tc.clock)
		assert.True(t, want.Equal(got), "%q %q gave %s", tc.date, tc.clock, got)
	}
}

func TestParseSessionStartRejectsGarbage(t *testing.T) {
	cases := []struct{ date, clock, part string }{
		{"", "2:00 PM", "date"},
		{"yesterday", "2:00 PM", "date"},
		{"31,Feb,2025", "2:00 PM", "date"},
		{"Jan 5, 2025", "", "time"},
		{"Jan 5, 2025", "25:00", "time"},
		{"Jan 5, 2025", "noonish", "time"},
	}
	for _, tc := range cases {
		assert.NotPanics(t, func() {
			_, err := ParseSessionStart(tc.date, tc.clock, time.UTC)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.part, perr.Part)
		})
	}
}
