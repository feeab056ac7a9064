package models

import "delivery-service/internal/engine"

// ProductInput describes the product an estimate is requested for. Tags may
// be omitted when a handle is given; the service resolves them through the
// products client.
type ProductInput struct {
	Handle      string             `json:"handle"`
	Tags        []string           `json:"tags"`
	StockStatus engine.StockStatus `json:"stockStatus"`
}

// EstimateRequest asks for a full delivery estimate. Now is an optional
// RFC 3339 timestamp override used by the admin preview; Timezone is an
// optional IANA zone name the timestamp is converted into before the engine
// runs.
type EstimateRequest struct {
	Product  ProductInput `json:"product" binding:"required"`
	Now      string       `json:"now"`
	Timezone string       `json:"timezone"`
}

// PreviewRequest evaluates an explicit, not-yet-persisted rule, optionally
// against explicit global settings. Used by the admin editor preview.
type PreviewRequest struct {
	Rule           engine.Rule            `json:"rule" binding:"required"`
	GlobalSettings *engine.GlobalSettings `json:"globalSettings"`
	Now            string                 `json:"now"`
	Timezone       string                 `json:"timezone"`
}

// EstimateResponse is the resolved estimate for a product. Matched is false
// when no rule applies, in which case every other field is empty and the
// storefront shows no delivery messaging.
type EstimateResponse struct {
	Matched    bool   `json:"matched"`
	RuleID     string `json:"ruleId,omitempty"`
	RuleName   string `json:"ruleName,omitempty"`
	IsFallback bool   `json:"isFallback,omitempty"`

	ShipmentDate    string `json:"shipmentDate,omitempty"`
	DeliveryMinDate string `json:"deliveryMinDate,omitempty"`
	DeliveryMaxDate string `json:"deliveryMaxDate,omitempty"`
	ExpressDate     string `json:"expressDate,omitempty"`
	DeliveryRange   string `json:"deliveryRange,omitempty"`

	Countdown *engine.Countdown `json:"countdown,omitempty"`

	Message          string `json:"message,omitempty"`
	CountdownMessage string `json:"countdownMessage,omitempty"`
}

// CountdownResponse is the lightweight countdown-only answer polled by the
// storefront script.
type CountdownResponse struct {
	Matched   bool              `json:"matched"`
	RuleID    string            `json:"ruleId,omitempty"`
	Countdown *engine.Countdown `json:"countdown,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// HolidaysResponse lists the observed holiday dates for a country and year.
type HolidaysResponse struct {
	Country string   `json:"country"`
	Year    int      `json:"year"`
	Dates   []string `json:"dates"`
}

// CreateProfileRequest creates a new named profile.
type CreateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateProfileRequest renames a profile.
type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// RuleRequest creates or replaces a rule inside a profile.
type RuleRequest struct {
	Name     string              `json:"name" binding:"required"`
	Match    engine.Match        `json:"match"`
	Settings engine.RuleSettings `json:"settings"`
}

// ReorderRulesRequest sets the priority order of a profile's rules; the
// slice must contain every rule id exactly once.
type ReorderRulesRequest struct {
	RuleIDs []string `json:"ruleIds" binding:"required"`
}

// UndoDeleteResponse reports the restored rule and the index it returned to.
type UndoDeleteResponse struct {
	Restored bool         `json:"restored"`
	Rule     *engine.Rule `json:"rule,omitempty"`
	Index    int          `json:"index,omitempty"`
}
