package engine

import (
	"time"

	"delivery-service/internal/calendar"
)

// DefaultCutoffTime applies whenever no valid cutoff is configured.
const DefaultCutoffTime = "14:00"

// defaultWeekendDays is the fallback for unset closed-day and courier-day
// sets.
var defaultWeekendDays = []string{"sat", "sun"}

// ResolvedSchedule is the merged dispatch configuration for a single rule on
// a single day. ClosedDays gate whether today can dispatch at all;
// CourierNoDeliveryDays gate the lead-time and transit walks. The two sets
// are deliberately independent.
type ResolvedSchedule struct {
	CutoffTime            string
	ClosedDays            calendar.DaySet
	CourierNoDeliveryDays calendar.DaySet
	LeadTimeDays          int
}

// CutoffMinutes returns the resolved cutoff as minutes since midnight.
func (s ResolvedSchedule) CutoffMinutes() int {
	m, ok := calendar.ParseTimeOfDay(s.CutoffTime)
	if !ok {
		m, _ = calendar.ParseTimeOfDay(DefaultCutoffTime)
	}
	return m
}

// ResolveSettings merges a rule's settings with the global defaults for the
// given moment. Each override category is resolved independently.
func ResolveSettings(rule RuleSettings, global GlobalSettings, now time.Time) ResolvedSchedule {
	return ResolvedSchedule{
		CutoffTime:            resolveCutoff(rule, global, now),
		ClosedDays:            resolveDaySet(rule.OverrideClosedDays, rule.ClosedDays, global.ClosedDays),
		CourierNoDeliveryDays: resolveDaySet(rule.OverrideCourierNoDeliveryDays, rule.CourierNoDeliveryDays, global.CourierNoDeliveryDays),
		LeadTimeDays:          resolveLeadTime(rule, global),
	}
}

// resolveCutoff picks the cutoff source (rule or global) once, then applies
// the weekend-specific value from that same source when today is a Saturday
// or Sunday and the weekend value is non-empty and well-formed.
func resolveCutoff(rule RuleSettings, global GlobalSettings, now time.Time) string {
	base, sat, sun := global.CutoffTime, global.CutoffTimeSat, global.CutoffTimeSun
	if rule.OverrideCutoffTimes {
		base, sat, sun = rule.CutoffTime, rule.CutoffTimeSat, rule.CutoffTimeSun
	}
	if _, ok := calendar.ParseTimeOfDay(base); !ok {
		base = DefaultCutoffTime
	}
	switch now.Weekday() {
	case time.Saturday:
		if _, ok := calendar.ParseTimeOfDay(sat); ok {
			return sat
		}
	case time.Sunday:
		if _, ok := calendar.ParseTimeOfDay(sun); ok {
			return sun
		}
	}
	return base
}

// resolveDaySet honors an explicit override even when the override list is
// empty: an empty overridden set means "no excluded days". Without an
// override the global set applies, falling back to the weekend when the
// global set was never configured (nil).
func resolveDaySet(override bool, ruleDays, globalDays DayList) calendar.DaySet {
	if override {
		return ruleDays.Set()
	}
	if globalDays != nil {
		return globalDays.Set()
	}
	return calendar.NewDaySet(defaultWeekendDays...)
}

func resolveLeadTime(rule RuleSettings, global GlobalSettings) int {
	var lead *int
	if rule.OverrideLeadTime {
		lead = rule.LeadTime
		if lead == nil {
			lead = global.LeadTime
		}
	} else {
		lead = global.LeadTime
	}
	if lead == nil || *lead < 0 {
		return 0
	}
	return *lead
}
