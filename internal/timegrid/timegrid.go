package timegrid

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

var dayNames = [8]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return t, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseClock parses HH:MM or HH:MM:SS into minutes since midnight.
// Postgres TIME columns scan back with seconds, so both forms are accepted.
func ParseClock(raw string) (int, error) {
	var h, m, s int
	if _, err := fmt.Sscanf(raw, "%d:%d:%d", &h, &m, &s); err != nil {
		s = 0
		if _, err := fmt.Sscanf(raw, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("invalid time %q: expected HH:MM", raw)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", raw)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Back-to-back intervals (e1 == s2) do not overlap.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && e1 > s2
}

// ISOWeekday returns the ISO 8601 day of week: 1=Monday .. 7=Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	return ISOWeekday(t) > 5
}

// DayName returns the English day name for an ISO weekday, or "Unknown"
// for values outside 1..7.
func DayName(isoWeekday int) string {
	if isoWeekday < 1 || isoWeekday > 7 {
		return "Unknown"
	}
	return dayNames[isoWeekday]
}

// AcademicWeek computes the 1-based teaching week a date falls in,
// counting from the semester start: ceil(days-elapsed / 7). The semester's
// first day itself yields week 0, which callers reject as out of range;
// an explicit week number is the only way to book that day.
func AcademicWeek(date, semesterStart time.Time) int {
	days := int(date.Sub(semesterStart).Hours() / 24)
	if days <= 0 {
		return 0
	}
	return (days + 6) / 7
}

// SlotStarts enumerates candidate start offsets (minutes since midnight)
// aligned to the given increment, such that a booking of the given duration
// still ends inside the operating window. A slot whose end lands exactly on
// dayEnd is included.
func SlotStarts(dayStart, dayEnd, increment, duration int) []int {
	if increment <= 0 || duration <= 0 || dayStart >= dayEnd {
		return nil
	}
	var starts []int
	for start := dayStart; start+duration <= dayEnd; start += increment {
		starts = append(starts, start)
	}
	return starts
}

// EachWeekday calls fn for every Monday..Friday date in [from, to].
func EachWeekday(from, to time.Time, fn func(date time.Time)) {
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsWeekend(d) {
			continue
		}
		fn(d)
	}
}
