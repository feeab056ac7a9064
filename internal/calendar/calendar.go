package calendar

import (
	"sort"
	"strings"
	"time"
)

// WeekdayKeys are the canonical lower-case three-letter weekday names, indexed
// by time.Weekday. Every day-of-week set in the service uses this vocabulary.
var WeekdayKeys = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// maxBusinessDayScan bounds the forward walk in AddBusinessDays. A day-set
// that excludes all seven weekdays would otherwise never terminate; at cap
// exhaustion the date reached so far is returned as a fallback.
const maxBusinessDayScan = 60

// maxDispatchScan bounds the search for the next open dispatch day.
const maxDispatchScan = 14

// WeekdayKey returns the canonical weekday key for a date.
func WeekdayKey(t time.Time) string {
	return WeekdayKeys[int(t.Weekday())]
}

// DaySet is a set of canonical weekday keys.
type DaySet map[string]struct{}

// NewDaySet builds a DaySet from weekday keys. Input is normalized; unknown
// keys are dropped.
func NewDaySet(days ...string) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		if k, ok := normalizeWeekday(d); ok {
			s[k] = struct{}{}
		}
	}
	return s
}

// ParseDaySet normalizes a slice of weekday names into a DaySet.
func ParseDaySet(days []string) DaySet {
	return NewDaySet(days...)
}

// ParseDaySetString normalizes a comma-separated list of weekday names.
func ParseDaySetString(s string) DaySet {
	return NewDaySet(strings.Split(s, ",")...)
}

// Contains reports whether the set holds the given weekday key.
func (s DaySet) Contains(day string) bool {
	if s == nil {
		return false
	}
	k, ok := normalizeWeekday(day)
	if !ok {
		return false
	}
	_, found := s[k]
	return found
}

// ContainsDate reports whether the set holds the date's weekday.
func (s DaySet) ContainsDate(t time.Time) bool {
	if s == nil {
		return false
	}
	_, found := s[WeekdayKey(t)]
	return found
}

// Keys returns the set's weekday keys in sun..sat order.
func (s DaySet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return weekdayIndex(keys[i]) < weekdayIndex(keys[j])
	})
	return keys
}

func normalizeWeekday(day string) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(day))
	if len(d) > 3 {
		d = d[:3]
	}
	for _, k := range WeekdayKeys {
		if d == k {
			return k, true
		}
	}
	return "", false
}

func weekdayIndex(key string) int {
	for i, k := range WeekdayKeys {
		if k == key {
			return i
		}
	}
	return len(WeekdayKeys)
}

// DateSet is a set of "YYYY-MM-DD" date keys, used for holiday lookups.
type DateSet map[string]struct{}

// NewDateSet builds a DateSet from date keys. Malformed keys are dropped.
func NewDateSet(dates ...string) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		if _, ok := ParseDate(d); ok {
			s[strings.TrimSpace(d)] = struct{}{}
		}
	}
	return s
}

// Add inserts a date into the set.
func (s DateSet) Add(t time.Time) {
	s[DateKey(t)] = struct{}{}
}

// Contains reports whether the set holds the given date.
func (s DateSet) Contains(t time.Time) bool {
	if s == nil {
		return false
	}
	_, found := s[DateKey(t)]
	return found
}

// Union returns a new set with the contents of both sets.
func (s DateSet) Union(other DateSet) DateSet {
	merged := make(DateSet, len(s)+len(other))
	for k := range s {
		merged[k] = struct{}{}
	}
	for k := range other {
		merged[k] = struct{}{}
	}
	return merged
}

// Keys returns the date keys in ascending order.
func (s DateSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DateKey formats a date as its canonical "YYYY-MM-DD" key.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a "YYYY-MM-DD" string. Malformed input yields ok=false
// rather than an error; callers treat it as "no constraint".
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseTimeOfDay parses an "HH:MM" string into minutes since midnight.
// Malformed input yields ok=false.
func ParseTimeOfDay(s string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// DateOf strips the time-of-day component, keeping the location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsBusinessDay reports whether the date is a working day: its weekday is not
// in the excluded set and its date key is not in the holiday set.
func IsBusinessDay(t time.Time, excluded DaySet, holidays DateSet) bool {
	if excluded.ContainsDate(t) {
		return false
	}
	if holidays.Contains(t) {
		return false
	}
	return true
}

// AddBusinessDays walks forward one calendar day at a time from start,
// counting only business days, until count business days have been added.
// The walk is capped at maxBusinessDayScan calendar days; with a degenerate
// excluded set the date reached at cap exhaustion is returned, which callers
// must treat as a fallback rather than a correct answer.
func AddBusinessDays(start time.Time, count int, excluded DaySet, holidays DateSet) time.Time {
	if count <= 0 {
		return start
	}
	d := start
	added := 0
	for attempts := 0; added < count && attempts < maxBusinessDayScan; attempts++ {
		d = d.AddDate(0, 0, 1)
		if IsBusinessDay(d, excluded, holidays) {
			added++
		}
	}
	return d
}

// NextBusinessDayOnOrAfter returns the first business day on or after the
// given date, scanning forward up to maxDispatchScan calendar days. If the
// scan exhausts, the last date examined is returned.
func NextBusinessDayOnOrAfter(t time.Time, excluded DaySet, holidays DateSet) time.Time {
	d := t
	for i := 0; i < maxDispatchScan; i++ {
		if IsBusinessDay(d, excluded, holidays) {
			return d
		}
		d = d.AddDate(0, 0, 1)
	}
	return d
}
