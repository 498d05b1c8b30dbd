package booking

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Canonical storage layouts for appointment dates and times.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// ErrBadTimeFormat carries the full list of accepted formats so the caller
// can self-correct.
var ErrBadTimeFormat = errors.New(
	"time must match one of: HH:MM (24-hour), HH:MM:SS, H:MM AM/PM, H AM/PM; Arabic ص/م markers are accepted")

// Arabic meridiem markers, longest spellings first so the bare letters do
// not clobber the full words.
var arabicMeridiems = []struct {
	marker  string
	replace string
}{
	{"صباحًا", "am"},
	{"صباحا", "am"},
	{"مساءً", "pm"},
	{"مساء", "pm"},
	{"ص", "am"},
	{"م", "pm"},
}

// bareHour matches an hour with a meridiem but no minutes, e.g. "2pm".
var bareHour = regexp.MustCompile(`^(\d{1,2})\s*(am|pm)$`)

// Ordered layouts tried against the normalized input; the first hit wins.
var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 pm",
	"3 pm",
	"3:04pm",
	"3pm",
}

// ParseTime converts a free-form time-of-day string into a time value.
// It lowercases, collapses whitespace, maps Arabic meridiem markers to
// am/pm, inserts ":00" after a bare hour, then tries the fixed layout list.
func ParseTime(input string) (time.Time, error) {
	s := strings.ToLower(strings.Join(strings.Fields(input), " "))
	for _, m := range arabicMeridiems {
		s = strings.ReplaceAll(s, m.marker, m.replace)
	}
	s = strings.TrimSpace(s)
	if m := bareHour.FindStringSubmatch(s); m != nil {
		s = m[1] + ":00 " + m[2]
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadTimeFormat
}

// CanonicalTime renders a time value in the 24-hour storage form.
func CanonicalTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// DisplayTime always renders in 12-hour format with a two-digit hour,
// regardless of how the time was originally entered.
func DisplayTime(t time.Time) string {
	return t.Format("03:04 PM")
}

// DisplayCanonical renders a stored canonical time in display form. The
// stored value is returned unchanged if it does not parse, rather than
// failing a whole response over one bad row.
func DisplayCanonical(stored string) string {
	t, err := time.Parse(TimeLayout, stored)
	if err != nil {
		return stored
	}
	return DisplayTime(t)
}
