package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock converts "HH:MM" (seconds tolerated and ignored) into minutes
// since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("schedule: invalid clock time %q", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("schedule: invalid clock time %q", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("schedule: invalid clock time %q", s)
	}
	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
// Values past the end of the day are rendered as-is ("24:30"); whether a
// late-running queue estimate rolls into the next day is a display
// decision left to API consumers.
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
