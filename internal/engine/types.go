// Package engine implements the delivery date estimation core: settings
// resolution, dispatch/delivery calculation, countdown state, message
// templates and rule matching. It is deliberately dependency-free so the
// same logic can be embedded unchanged in every execution context that has
// to agree on dates.
package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"delivery-service/internal/calendar"
)

// StockStatus classifies a product's availability for rule matching.
type StockStatus string

const (
	StockAny        StockStatus = "any"
	StockInStock    StockStatus = "in_stock"
	StockOutOfStock StockStatus = "out_of_stock"
	StockPreOrder   StockStatus = "pre_order"
	StockMixed      StockStatus = "mixed_stock"
)

// ValidStockStatus reports whether s is one of the known statuses.
func ValidStockStatus(s StockStatus) bool {
	switch s {
	case StockAny, StockInStock, StockOutOfStock, StockPreOrder, StockMixed:
		return true
	}
	return false
}

// DayList is a list of weekday keys. The persisted config format is lenient:
// day sets arrive either as a JSON array or as a comma-separated string, so
// unmarshalling normalizes both into the canonical slice form. A nil list
// means "unset"; an empty non-nil list is an explicit empty set.
type DayList []string

// UnmarshalJSON accepts either ["sat","sun"] or "sat,sun".
func (d *DayList) UnmarshalJSON(b []byte) error {
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*d = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			*d = DayList{}
			return nil
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		*d = out
		return nil
	}
	return fmt.Errorf("day list must be an array or comma-separated string")
}

// Set converts the list into a canonical weekday set.
func (d DayList) Set() calendar.DaySet {
	return calendar.ParseDaySet([]string(d))
}

// Match describes which products a rule applies to.
type Match struct {
	ProductHandles []string    `json:"product_handles"`
	Tags           []string    `json:"tags"`
	StockStatus    StockStatus `json:"stock_status"`
	IsFallback     bool        `json:"is_fallback"`
}

// RuleSettings carries a rule's message templates and its dispatch override
// fields. Each override flag is independent: a rule may override cutoff
// times while still inheriting closed days from the global settings.
type RuleSettings struct {
	Message          string `json:"message"`
	CountdownMessage string `json:"countdown_message"`

	OverrideCutoffTimes bool   `json:"override_cutoff_times"`
	CutoffTime          string `json:"cutoff_time"`
	CutoffTimeSat       string `json:"cutoff_time_sat"`
	CutoffTimeSun       string `json:"cutoff_time_sun"`

	OverrideLeadTime bool `json:"override_lead_time"`
	LeadTime         *int `json:"lead_time"`

	OverrideClosedDays bool    `json:"override_closed_days"`
	ClosedDays         DayList `json:"closed_days"`

	OverrideCourierNoDeliveryDays bool    `json:"override_courier_no_delivery_days"`
	CourierNoDeliveryDays         DayList `json:"courier_no_delivery_days"`

	EtaDeliveryDaysMin int `json:"eta_delivery_days_min"`
	EtaDeliveryDaysMax int `json:"eta_delivery_days_max"`
}

// Rule is a single delivery-messaging rule. Position within a rule list is
// priority order: rules are evaluated top to bottom and the first match wins.
type Rule struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Match    Match        `json:"match"`
	Settings RuleSettings `json:"settings"`
}

// CustomHoliday is a merchant-defined non-dispatch date.
type CustomHoliday struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

// GlobalSettings are the shop-wide defaults every rule inherits unless it
// overrides a category explicitly.
type GlobalSettings struct {
	CutoffTime    string `json:"cutoff_time"`
	CutoffTimeSat string `json:"cutoff_time_sat"`
	CutoffTimeSun string `json:"cutoff_time_sun"`

	ClosedDays            DayList `json:"closed_days"`
	CourierNoDeliveryDays DayList `json:"courier_no_delivery_days"`
	LeadTime              *int    `json:"lead_time"`

	BankHolidayCountry    string          `json:"bank_holiday_country"`
	CustomHolidays        []CustomHoliday `json:"custom_holidays"`
	FreeShippingThreshold string          `json:"free_shipping_threshold"`
}

// CustomHolidaySet collects the parseable custom holiday dates.
func (g GlobalSettings) CustomHolidaySet() calendar.DateSet {
	set := calendar.DateSet{}
	for _, h := range g.CustomHolidays {
		if t, ok := calendar.ParseDate(h.Date); ok {
			set.Add(t)
		}
	}
	return set
}

// Product is the descriptor the matcher consumes. Tags and stock status are
// resolved by the caller; the engine performs no I/O.
type Product struct {
	Handle      string      `json:"handle"`
	Tags        []string    `json:"tags"`
	StockStatus StockStatus `json:"stock_status"`
}
