package schedule

import (
	"testing"
	"time"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    Weekday
		wantErr bool
	}{
		{"Monday", Monday, false},
		{"monday", Monday, false},
		{"SUNDAY", Sunday, false},
		{"  Friday ", Friday, false},
		{"Funday", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseWeekday(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseWeekday(%q): expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseWeekday(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWeekday(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNextOccurrenceRollsForward(t *testing.T) {
	// 2024-06-05 is a Wednesday.
	today := time.Date(2024, 6, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		day      Weekday
		wantDate string
		daysOut  int
	}{
		{Thursday, "2024-06-06", 1},
		{Sunday, "2024-06-09", 4},
		{Monday, "2024-06-10", 5},
		{Tuesday, "2024-06-11", 6},
	}
	for _, tt := range tests {
		got := NextOccurrence(tt.day, today)
		if got.Format("2006-01-02") != tt.wantDate {
			t.Errorf("NextOccurrence(%s) = %s, want %s", tt.day, got.Format("2006-01-02"), tt.wantDate)
		}
		if got.Hour() != 0 || got.Minute() != 0 {
			t.Errorf("NextOccurrence(%s) not midnight-anchored: %s", tt.day, got)
		}
		if days := int(got.Sub(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)).Hours() / 24); days != tt.daysOut {
			t.Errorf("NextOccurrence(%s) %d days out, want %d", tt.day, days, tt.daysOut)
		}
	}
}

func TestNextOccurrenceSameWeekdayIsNextWeek(t *testing.T) {
	// Requesting today's own weekday must never return today.
	today := time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC) // Wednesday
	got := NextOccurrence(Wednesday, today)
	want := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("NextOccurrence(Wednesday) = %s, want %s", got, want)
	}
}

func TestFromTimeRoundTrip(t *testing.T) {
	for _, day := range OrderedWeekdays() {
		if FromTime(day.Time()) != day {
			t.Errorf("FromTime(%s.Time()) = %s", day, FromTime(day.Time()))
		}
	}
}
