package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeFormats(t *testing.T) {
	cases := []struct {
		input     string
		canonical string
		display   string
	}{
		{"14:00", "14:00:00", "02:00 PM"},
		{"14:30:15", "14:30:15", "02:30 PM"},
		{"2:30 pm", "14:30:00", "02:30 PM"},
		{"2:30PM", "14:30:00", "02:30 PM"},
		{"2 pm", "14:00:00", "02:00 PM"},
		{"2pm", "14:00:00", "02:00 PM"},
		{"  2   PM ", "14:00:00", "02:00 PM"},
		{"12:00 am", "00:00:00", "12:00 AM"},
		{"12 pm", "12:00:00", "12:00 PM"},
		{"9:05", "09:05:00", "09:05 AM"},
		{"0:15", "00:15:00", "12:15 AM"},
		// Arabic meridiem markers
		{"2صباحا", "02:00:00", "02:00 AM"},
		{"2 صباحًا", "02:00:00", "02:00 AM"},
		{"2 مساء", "14:00:00", "02:00 PM"},
		{"2 مساءً", "14:00:00", "02:00 PM"},
		{"2:30 ص", "02:30:00", "02:30 AM"},
		{"2:30 م", "14:30:00", "02:30 PM"},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			parsed, err := ParseTime(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.canonical, CanonicalTime(parsed))
			assert.Equal(t, tc.display, DisplayTime(parsed))
		})
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "noon", "25:00", "14:61", "2:30 xm", "pm"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTime(input)
			require.Error(t, err)
			// The error names the accepted formats so callers can
			// self-correct.
			assert.Contains(t, err.Error(), "24-hour")
		})
	}
}

func TestParseTimeRoundTripIsStable(t *testing.T) {
	// parse-then-display is not the identity (24-hour input comes back in
	// 12-hour form), but it must be stable under repeated application.
	for _, input := range []string{"14:00", "2:30 pm", "2صباحا", "09:15:30"} {
		first, err := ParseTime(input)
		require.NoError(t, err)
		once := DisplayTime(first)

		second, err := ParseTime(once)
		require.NoError(t, err)
		assert.Equal(t, once, DisplayTime(second))
	}
}

func TestDisplayCanonical(t *testing.T) {
	assert.Equal(t, "02:00 PM", DisplayCanonical("14:00:00"))
	assert.Equal(t, "12:05 AM", DisplayCanonical("00:05:00"))
	// A malformed stored value is passed through untouched.
	assert.Equal(t, "bogus", DisplayCanonical("bogus"))
}
