package holidays

import (
	"strings"
	"time"

	"delivery-service/internal/calendar"
)

// ForYear resolves the national holidays observed in a country for a year as
// a set of "YYYY-MM-DD" keys. It is a pure function of (country, year);
// unknown or empty country codes yield an empty set, never an error.
// Custom merchant holidays are unioned in by callers, not here.
func ForYear(country string, year int) calendar.DateSet {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "US":
		return unitedStates(year)
	case "GB", "UK":
		return unitedKingdom(year)
	case "CA":
		return canada(year)
	case "AU":
		return australia(year)
	case "IE":
		return ireland(year)
	case "NZ":
		return newZealand(year)
	case "DE":
		return germany(year)
	case "FR":
		return france(year)
	default:
		return calendar.DateSet{}
	}
}

// ForYears unions the holiday sets of consecutive years starting at year.
// Delivery windows computed near year end spill into January, so callers
// typically ask for two years.
func ForYears(country string, year, count int) calendar.DateSet {
	set := calendar.DateSet{}
	for i := 0; i < count; i++ {
		set = set.Union(ForYear(country, year+i))
	}
	return set
}

func unitedStates(year int) calendar.DateSet {
	set := calendar.DateSet{}
	set.Add(observedUS(fixed(year, time.January, 1)))       // New Year's Day
	set.Add(nthWeekday(year, time.January, time.Monday, 3)) // Martin Luther King Jr. Day
	set.Add(nthWeekday(year, time.February, time.Monday, 3))
	set.Add(lastWeekday(year, time.May, time.Monday)) // Memorial Day
	set.Add(observedUS(fixed(year, time.June, 19)))   // Juneteenth
	set.Add(observedUS(fixed(year, time.July, 4)))
	set.Add(nthWeekday(year, time.September, time.Monday, 1))   // Labor Day
	set.Add(nthWeekday(year, time.November, time.Thursday, 4))  // Thanksgiving
	set.Add(observedUS(fixed(year, time.December, 25)))
	return set
}

func unitedKingdom(year int) calendar.DateSet {
	set := calendar.DateSet{}
	easter := easterSunday(year)
	set.Add(rollForward(fixed(year, time.January, 1), set))
	set.Add(easter.AddDate(0, 0, -2)) // Good Friday
	set.Add(easter.AddDate(0, 0, 1))  // Easter Monday
	set.Add(nthWeekday(year, time.May, time.Monday, 1)) // Early May bank holiday
	set.Add(lastWeekday(year, time.May, time.Monday))   // Spring bank holiday
	set.Add(lastWeekday(year, time.August, time.Monday))
	set.Add(rollForward(fixed(year, time.December, 25), set))
	set.Add(rollForward(fixed(year, time.December, 26), set))
	return set
}

func canada(year int) calendar.DateSet {
	set := calendar.DateSet{}
	easter := easterSunday(year)
	set.Add(rollForward(fixed(year, time.January, 1), set))
	set.Add(easter.AddDate(0, 0, -2))    // Good Friday
	set.Add(mondayBefore(year, time.May, 25)) // Victoria Day
	set.Add(rollForward(fixed(year, time.July, 1), set)) // Canada Day
	set.Add(nthWeekday(year, time.September, time.Monday, 1)) // Labour Day
	set.Add(nthWeekday(year, time.October, time.Monday, 2))   // Thanksgiving
	set.Add(rollForward(fixed(year, time.December, 25), set))
	set.Add(rollForward(fixed(year, time.December, 26), set)) // Boxing Day
	return set
}

func australia(year int) calendar.DateSet {
	set := calendar.DateSet{}
	easter := easterSunday(year)
	set.Add(rollForward(fixed(year, time.January, 1), set))
	set.Add(rollForward(fixed(year, time.January, 26), set)) // Australia Day
	set.Add(easter.AddDate(0, 0, -2))
	set.Add(easter.AddDate(0, 0, 1))
	set.Add(fixed(year, time.April, 25)) // Anzac Day, not shifted
	set.Add(rollForward(fixed(year, time.December, 25), set))
	set.Add(rollForward(fixed(year, time.December, 26), set))
	return set
}

func ireland(year int) calendar.DateSet {
	set := calendar.DateSet{}
	easter := easterSunday(year)
	set.Add(rollForward(fixed(year, time.January, 1), set))
	set.Add(rollForward(fixed(year, time.March, 17), set)) // St Patrick's Day
	set.Add(easter.AddDate(0, 0, 1))
	set.Add(nthWeekday(year, time.May, time.Monday, 1))
	set.Add(nthWeekday(year, time.June, time.Monday, 1))
	set.Add(nthWeekday(year, time.August, time.Monday, 1))
	set.Add(lastWeekday(year, time.October, time.Monday))
	set.Add(rollForward(fixed(year, time.December, 25), set))
	set.Add(rollForward(fixed(year, time.December, 26), set)) // St Stephen's Day
	return set
}

func newZealand(year int) calendar.DateSet {
	set := calendar.DateSet{}
	easter := easterSunday(year)
	set.Add(rollForward(fixed(year, time.January, 1), set))
	set.Add(rollForward(fixed(year, time.January, 2), set))
	set.Add(rollForward(fixed(year, time.February, 6), set)) // Waitangi Day
	set.Add(easter.AddDate(0, 0, -2))
	set.Add(easter.AddDate(0, 0, 1))
	set.Add(rollForward(fixed(year, time.April, 25), set)) // Anzac Day
	set.Add(nthWeekday(year, time.June, time.Monday, 1))   // King's Birthday
	set.Add(nthWeekday(year, time.October, time.Monday, 4)) // Labour Day
	set.Add(rollForward(fixed(year, time.December, 25), set))
	set.Add(rollForward(fixed(year, time.December, 26), set))
	return set
}

// Germany has no weekend-observation shifts; public holidays that land on a
// weekend are simply lost.
func germany(year int) calendar.DateSet {
	set := calendar.DateSet{}
	easter := easterSunday(year)
	set.Add(fixed(year, time.January, 1))
	set.Add(easter.AddDate(0, 0, -2)) // Karfreitag
	set.Add(easter.AddDate(0, 0, 1))  // Ostermontag
	set.Add(fixed(year, time.May, 1))
	set.Add(easter.AddDate(0, 0, 39)) // Christi Himmelfahrt
	set.Add(easter.AddDate(0, 0, 50)) // Pfingstmontag
	set.Add(fixed(year, time.October, 3))
	set.Add(fixed(year, time.December, 25))
	set.Add(fixed(year, time.December, 26))
	return set
}

func france(year int) calendar.DateSet {
	set := calendar.DateSet{}
	easter := easterSunday(year)
	set.Add(fixed(year, time.January, 1))
	set.Add(easter.AddDate(0, 0, 1)) // Lundi de Paques
	set.Add(fixed(year, time.May, 1))
	set.Add(fixed(year, time.May, 8))
	set.Add(easter.AddDate(0, 0, 39)) // Ascension
	set.Add(easter.AddDate(0, 0, 50)) // Lundi de Pentecote
	set.Add(fixed(year, time.July, 14))
	set.Add(fixed(year, time.August, 15))
	set.Add(fixed(year, time.November, 1))
	set.Add(fixed(year, time.November, 11))
	set.Add(fixed(year, time.December, 25))
	return set
}

func fixed(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// nthWeekday returns the nth occurrence of a weekday in a month (n >= 1).
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	d := fixed(year, month, 1)
	offset := (int(weekday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday returns the last occurrence of a weekday in a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	d := fixed(year, month+1, 1).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(weekday) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// mondayBefore returns the Monday on or before the given day of month,
// excluding the day itself (Victoria Day rule).
func mondayBefore(year int, month time.Month, day int) time.Time {
	d := fixed(year, month, day).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(time.Monday) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// observedUS shifts a Saturday holiday to Friday and a Sunday holiday to
// Monday, the US federal convention.
func observedUS(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}

// rollForward shifts a weekend holiday to the next weekday not already taken
// by another holiday in the same set, the substitute-day convention used in
// the UK and Commonwealth countries.
func rollForward(t time.Time, taken calendar.DateSet) time.Time {
	d := t
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday || taken.Contains(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// easterSunday computes Gregorian Easter via the anonymous algorithm.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
