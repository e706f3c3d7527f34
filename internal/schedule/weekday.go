package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Weekday names a day of the recurring weekly schedule. Values match the
// day names stored in the database ("Monday" .. "Sunday").
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

var weekdayToTime = map[Weekday]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

// OrderedWeekdays returns the schedule week Monday-first, the order the
// doctor daily queue view is presented in.
func OrderedWeekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// ParseWeekday validates a day name, accepting any casing.
func ParseWeekday(s string) (Weekday, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fmt.Errorf("schedule: weekday is required")
	}
	cand := Weekday(strings.ToUpper(trimmed[:1]) + strings.ToLower(trimmed[1:]))
	if _, ok := weekdayToTime[cand]; !ok {
		return "", fmt.Errorf("schedule: invalid weekday %q", s)
	}
	return cand, nil
}

// Time maps the weekday onto the standard library's numbering.
func (d Weekday) Time() time.Weekday {
	return weekdayToTime[d]
}

// FromTime converts a time.Weekday into the schedule representation.
func FromTime(d time.Weekday) Weekday {
	for name, td := range weekdayToTime {
		if td == d {
			return name
		}
	}
	return ""
}

// NextOccurrence resolves a recurring weekday to its next concrete calendar
// date after today. A request for today's own weekday rolls a full week
// ahead; the result is always 1..7 days out, anchored at midnight in
// today's location.
func NextOccurrence(d Weekday, today time.Time) time.Time {
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	offset := int(d.Time()) - int(today.Weekday())
	if offset <= 0 {
		offset += 7
	}
	return midnight.AddDate(0, 0, offset)
}
