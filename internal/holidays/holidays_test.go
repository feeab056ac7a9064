package holidays

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func contains(t *testing.T, country string, year int, date string) {
	t.Helper()
	set := ForYear(country, year)
	_, found := set[date]
	assert.True(t, found, "expected %s holidays %d to contain %s, got %v", country, year, date, set.Keys())
}

func notContains(t *testing.T, country string, year int, date string) {
	t.Helper()
	set := ForYear(country, year)
	_, found := set[date]
	assert.False(t, found, "expected %s holidays %d to not contain %s", country, year, date)
}

func TestUnknownCountryYieldsEmptySet(t *testing.T) {
	assert.Empty(t, ForYear("", 2026))
	assert.Empty(t, ForYear("XX", 2026))
}

func TestCountryCodeNormalization(t *testing.T) {
	assert.Equal(t, ForYear("GB", 2026).Keys(), ForYear("uk", 2026).Keys())
	assert.Equal(t, ForYear("US", 2026).Keys(), ForYear(" us ", 2026).Keys())
}

func TestUnitedStates2026(t *testing.T) {
	contains(t, "US", 2026, "2026-01-01") // New Year's Day (Thursday)
	contains(t, "US", 2026, "2026-01-19") // MLK Day, 3rd Monday
	contains(t, "US", 2026, "2026-05-25") // Memorial Day, last Monday
	contains(t, "US", 2026, "2026-07-03") // July 4 is a Saturday, observed Friday
	notContains(t, "US", 2026, "2026-07-04")
	contains(t, "US", 2026, "2026-09-07") // Labor Day
	contains(t, "US", 2026, "2026-11-26") // Thanksgiving, 4th Thursday
	contains(t, "US", 2026, "2026-12-25") // Christmas (Friday)
}

func TestUnitedStatesObservedShifts(t *testing.T) {
	// Christmas 2027 falls on a Saturday, observed Friday Dec 24
	contains(t, "US", 2027, "2027-12-24")
	notContains(t, "US", 2027, "2027-12-25")

	// New Year's Day 2028 falls on a Saturday, observed Friday Dec 31 2027
	contains(t, "US", 2028, "2027-12-31")
	notContains(t, "US", 2028, "2028-01-01")
}

func TestUnitedKingdom2026(t *testing.T) {
	contains(t, "GB", 2026, "2026-01-01")
	contains(t, "GB", 2026, "2026-04-03") // Good Friday
	contains(t, "GB", 2026, "2026-04-06") // Easter Monday
	contains(t, "GB", 2026, "2026-05-04") // Early May bank holiday
	contains(t, "GB", 2026, "2026-05-25") // Spring bank holiday
	contains(t, "GB", 2026, "2026-08-31") // Summer bank holiday
	contains(t, "GB", 2026, "2026-12-25")
	// Boxing Day 2026 is a Saturday: substitute day Monday Dec 28
	contains(t, "GB", 2026, "2026-12-28")
	notContains(t, "GB", 2026, "2026-12-26")
}

func TestUnitedKingdomChristmasSubstitutes(t *testing.T) {
	// 2027: Christmas on Saturday, Boxing Day on Sunday. Substitutes stack:
	// Monday Dec 27 and Tuesday Dec 28.
	contains(t, "GB", 2027, "2027-12-27")
	contains(t, "GB", 2027, "2027-12-28")
	notContains(t, "GB", 2027, "2027-12-25")
	notContains(t, "GB", 2027, "2027-12-26")
}

func TestCanadaVictoriaDay(t *testing.T) {
	// Monday on or before May 24, excluding May 25 itself
	contains(t, "CA", 2026, "2026-05-18")
	contains(t, "CA", 2025, "2025-05-19")
	contains(t, "CA", 2026, "2026-07-01") // Canada Day (Wednesday)
	contains(t, "CA", 2026, "2026-10-12") // Thanksgiving, 2nd Monday of October
}

func TestAustraliaAnzacDayNotShifted(t *testing.T) {
	// Anzac Day 2026 falls on a Saturday and stays there
	contains(t, "AU", 2026, "2026-04-25")
	contains(t, "AU", 2026, "2026-01-26") // Australia Day (Monday)
}

func TestGermanyWeekendHolidaysNotShifted(t *testing.T) {
	// Germany has no substitute-day convention
	contains(t, "DE", 2027, "2027-12-25") // Saturday, kept
	contains(t, "DE", 2026, "2026-05-14") // Ascension, Easter + 39
	contains(t, "DE", 2026, "2026-05-25") // Whit Monday, Easter + 50
	contains(t, "DE", 2026, "2026-10-03")
}

func TestFrance2026(t *testing.T) {
	contains(t, "FR", 2026, "2026-04-06") // Easter Monday
	contains(t, "FR", 2026, "2026-05-08")
	contains(t, "FR", 2026, "2026-07-14")
	contains(t, "FR", 2026, "2026-11-11")
}

func TestEasterSunday(t *testing.T) {
	cases := map[int]string{
		2024: "2024-03-31",
		2025: "2025-04-20",
		2026: "2026-04-05",
		2027: "2027-03-28",
	}
	for year, want := range cases {
		got := easterSunday(year).Format("2006-01-02")
		assert.Equal(t, want, got, "easter %d", year)
	}
}

func TestForYearsUnionsConsecutiveYears(t *testing.T) {
	set := ForYears("US", 2026, 2)
	_, has2026 := set["2026-12-25"]
	_, has2027 := set["2027-11-25"] // Thanksgiving 2027
	assert.True(t, has2026)
	assert.True(t, has2027)
}

func TestForYearIsDeterministic(t *testing.T) {
	a := ForYear("GB", 2026)
	b := ForYear("GB", 2026)
	assert.Equal(t, a.Keys(), b.Keys())
}

func TestNthAndLastWeekdayHelpers(t *testing.T) {
	assert.Equal(t, "2026-01-19", nthWeekday(2026, time.January, time.Monday, 3).Format("2006-01-02"))
	assert.Equal(t, "2026-05-25", lastWeekday(2026, time.May, time.Monday).Format("2006-01-02"))
	assert.Equal(t, "2026-08-31", lastWeekday(2026, time.August, time.Monday).Format("2006-01-02"))
}
