package engine

import (
	"time"

	"delivery-service/internal/calendar"
)

// CountdownState classifies what the storefront countdown should display.
type CountdownState string

const (
	CountdownNormal       CountdownState = "normal"
	CountdownClosedToday  CountdownState = "closed_today"
	CountdownHolidayToday CountdownState = "holiday_today"
	CountdownCutoffPassed CountdownState = "cutoff_passed"
)

// Countdown is the re-derived (never cached) countdown snapshot for a moment
// in time. Hours and Minutes are only meaningful in the normal state.
type Countdown struct {
	State   CountdownState `json:"state"`
	Hours   int            `json:"hours,omitempty"`
	Minutes int            `json:"minutes,omitempty"`
}

// ComputeShipmentDate determines the day an order placed at now leaves the
// warehouse. Orders placed before today's cutoff on an open day ship today;
// otherwise dispatch moves to the next open day. Lead time, when configured,
// adds business days on top, walked over the courier's non-delivery days
// rather than the merchant's closed days.
func ComputeShipmentDate(now time.Time, sched ResolvedSchedule, holidays calendar.DateSet) time.Time {
	today := calendar.DateOf(now)
	minutes := now.Hour()*60 + now.Minute()

	var base time.Time
	if minutes < sched.CutoffMinutes() && calendar.IsBusinessDay(today, sched.ClosedDays, holidays) {
		base = today
	} else {
		base = calendar.NextBusinessDayOnOrAfter(today.AddDate(0, 0, 1), sched.ClosedDays, holidays)
	}

	if sched.LeadTimeDays > 0 {
		base = calendar.AddBusinessDays(base, sched.LeadTimeDays, sched.CourierNoDeliveryDays, holidays)
	}
	return base
}

// ComputeDeliveryRange returns the earliest and latest delivery dates for a
// shipment, both walked in courier business days from the shipment date.
func ComputeDeliveryRange(shipment time.Time, minDays, maxDays int, courierDays calendar.DaySet, holidays calendar.DateSet) (time.Time, time.Time) {
	minDate := calendar.AddBusinessDays(shipment, minDays, courierDays, holidays)
	maxDate := calendar.AddBusinessDays(shipment, maxDays, courierDays, holidays)
	return minDate, maxDate
}

// ComputeExpressDate returns the next-day-courier delivery date for a
// shipment.
func ComputeExpressDate(shipment time.Time, courierDays calendar.DaySet, holidays calendar.DateSet) time.Time {
	return calendar.AddBusinessDays(shipment, 1, courierDays, holidays)
}

// ComputeCountdown derives the countdown state for now. Closed and holiday
// days take precedence over a numeric countdown; a remaining duration of
// zero or less is reported as cutoff_passed, never as a negative countdown.
func ComputeCountdown(now time.Time, sched ResolvedSchedule, holidays calendar.DateSet) Countdown {
	if sched.ClosedDays.ContainsDate(now) {
		return Countdown{State: CountdownClosedToday}
	}
	if holidays.Contains(now) {
		return Countdown{State: CountdownHolidayToday}
	}
	remaining := sched.CutoffMinutes() - (now.Hour()*60 + now.Minute())
	if remaining <= 0 {
		return Countdown{State: CountdownCutoffPassed}
	}
	return Countdown{
		State:   CountdownNormal,
		Hours:   remaining / 60,
		Minutes: remaining % 60,
	}
}
