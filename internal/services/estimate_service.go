package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"delivery-service/internal/calendar"
	"delivery-service/internal/clients"
	"delivery-service/internal/engine"
	"delivery-service/internal/holidays"
	"delivery-service/internal/models"
	"delivery-service/internal/repository"
)

// ConfigStore is the persistence surface the services depend on.
type ConfigStore interface {
	GetConfig(ctx context.Context, tenantID string) (models.Config, error)
	SaveConfig(ctx context.Context, tenantID string, cfg models.Config) error
	GetSettings(ctx context.Context, tenantID string) (engine.GlobalSettings, error)
	SaveSettings(ctx context.Context, tenantID string, gs engine.GlobalSettings) error
	StashDeletedRule(ctx context.Context, tenantID, profileID string, rule engine.Rule, index int) error
	PopDeletedRule(ctx context.Context, tenantID, profileID string) (engine.Rule, int, bool)
}

// ProductResolver fetches product descriptors when a request only carries a
// handle.
type ProductResolver interface {
	GetProduct(ctx context.Context, tenantID, handle string) (*clients.ProductInfo, error)
}

// EstimateService runs the estimation pipeline: match the product against
// the active profile's rules, resolve the winning rule's schedule, compute
// dates and render messages.
type EstimateService struct {
	store    ConfigStore
	products ProductResolver
	logger   *logrus.Entry
}

// NewEstimateService creates a new estimate service. products may be nil
// when tag resolution is handled by the caller.
func NewEstimateService(store ConfigStore, products ProductResolver, logger *logrus.Logger) *EstimateService {
	return &EstimateService{
		store:    store,
		products: products,
		logger:   logger.WithField("component", "services.estimate"),
	}
}

// Estimate computes the full delivery estimate for a product.
func (s *EstimateService) Estimate(ctx context.Context, tenantID string, req models.EstimateRequest) (*models.EstimateResponse, error) {
	now, err := resolveNow(req.Now, req.Timezone)
	if err != nil {
		return nil, err
	}

	rules, settings, err := s.loadActiveRules(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	product := s.resolveProduct(ctx, tenantID, req.Product)
	rule := engine.MatchRule(product, rules)
	if rule == nil {
		return &models.EstimateResponse{Matched: false}, nil
	}
	return buildEstimate(now, *rule, settings), nil
}

// Countdown computes only the countdown state for a product, the shape the
// storefront script polls on a fixed tick. The result is re-derived on every
// call, never cached.
func (s *EstimateService) Countdown(ctx context.Context, tenantID string, req models.EstimateRequest) (*models.CountdownResponse, error) {
	now, err := resolveNow(req.Now, req.Timezone)
	if err != nil {
		return nil, err
	}

	rules, settings, err := s.loadActiveRules(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	product := s.resolveProduct(ctx, tenantID, req.Product)
	rule := engine.MatchRule(product, rules)
	if rule == nil {
		return &models.CountdownResponse{Matched: false}, nil
	}

	estimate := buildEstimate(now, *rule, settings)
	return &models.CountdownResponse{
		Matched:   true,
		RuleID:    rule.ID,
		Countdown: estimate.Countdown,
		Message:   estimate.CountdownMessage,
	}, nil
}

// Preview evaluates an explicit rule payload without reading persisted
// rules. Global settings come from the request when provided, otherwise from
// the store.
func (s *EstimateService) Preview(ctx context.Context, tenantID string, req models.PreviewRequest) (*models.EstimateResponse, error) {
	now, err := resolveNow(req.Now, req.Timezone)
	if err != nil {
		return nil, err
	}

	var settings engine.GlobalSettings
	if req.GlobalSettings != nil {
		settings = *req.GlobalSettings
	} else {
		settings, err = s.store.GetSettings(ctx, tenantID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return buildEstimate(now, req.Rule, settings), nil
}

// Holidays resolves the observed national holidays for a country and year.
func (s *EstimateService) Holidays(country string, year int) models.HolidaysResponse {
	return models.HolidaysResponse{
		Country: country,
		Year:    year,
		Dates:   holidays.ForYear(country, year).Keys(),
	}
}

// loadActiveRules loads the active profile's rules and the global settings.
// A tenant with no persisted documents gets an empty rule list and zero
// settings; defaults apply during resolution.
func (s *EstimateService) loadActiveRules(ctx context.Context, tenantID string) ([]engine.Rule, engine.GlobalSettings, error) {
	cfg, err := s.store.GetConfig(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, engine.GlobalSettings{}, err
		}
		cfg = models.DefaultConfig()
	}
	if cfg.Version != 2 {
		cfg = models.MigrateToV2(cfg)
		// Persist immediately so the synthesized profile id stays stable.
		if err := s.store.SaveConfig(ctx, tenantID, cfg); err != nil {
			s.logger.WithError(err).Warn("Failed to persist migrated config")
		}
	}

	settings, err := s.store.GetSettings(ctx, tenantID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, engine.GlobalSettings{}, err
	}

	profile := cfg.ActiveProfile()
	if profile == nil {
		return nil, settings, nil
	}
	return profile.Rules, settings, nil
}

// resolveProduct fills in tags and stock status from the products client
// when the request carries only a handle. Lookup failures degrade to the
// descriptor as given; matching simply sees fewer tags.
func (s *EstimateService) resolveProduct(ctx context.Context, tenantID string, input models.ProductInput) engine.Product {
	product := engine.Product{
		Handle:      input.Handle,
		Tags:        input.Tags,
		StockStatus: input.StockStatus,
	}
	if s.products == nil || input.Handle == "" || input.Tags != nil {
		return product
	}

	info, err := s.products.GetProduct(ctx, tenantID, input.Handle)
	if err != nil {
		s.logger.WithError(err).WithField("handle", input.Handle).Debug("Product lookup failed, matching on request descriptor only")
		return product
	}
	product.Tags = info.Tags
	if product.StockStatus == "" {
		product.StockStatus = info.StockStatus
	}
	return product
}

// buildEstimate runs the engine for one matched rule at one moment in time.
func buildEstimate(now time.Time, rule engine.Rule, settings engine.GlobalSettings) *models.EstimateResponse {
	sched := engine.ResolveSettings(rule.Settings, settings, now)
	holidaySet := holidays.ForYears(settings.BankHolidayCountry, now.Year(), 2).
		Union(settings.CustomHolidaySet())

	shipment := engine.ComputeShipmentDate(now, sched, holidaySet)
	minDate, maxDate := engine.ComputeDeliveryRange(
		shipment,
		rule.Settings.EtaDeliveryDaysMin,
		rule.Settings.EtaDeliveryDaysMax,
		sched.CourierNoDeliveryDays,
		holidaySet,
	)
	express := engine.ComputeExpressDate(shipment, sched.CourierNoDeliveryDays, holidaySet)
	countdown := engine.ComputeCountdown(now, sched, holidaySet)

	tmplCtx := engine.TemplateContext{
		Countdown: countdownText(countdown),
		Arrival:   engine.FormatDateRange(minDate, maxDate),
		Express:   engine.FormatDate(express),
		Threshold: settings.FreeShippingThreshold,
	}

	return &models.EstimateResponse{
		Matched:          true,
		RuleID:           rule.ID,
		RuleName:         rule.Name,
		IsFallback:       rule.Match.IsFallback,
		ShipmentDate:     calendar.DateKey(shipment),
		DeliveryMinDate:  calendar.DateKey(minDate),
		DeliveryMaxDate:  calendar.DateKey(maxDate),
		ExpressDate:      calendar.DateKey(express),
		DeliveryRange:    tmplCtx.Arrival,
		Countdown:        &countdown,
		Message:          engine.RenderMarkdown(engine.SubstitutePlaceholders(rule.Settings.Message, tmplCtx)),
		CountdownMessage: engine.RenderMarkdown(engine.SubstitutePlaceholders(rule.Settings.CountdownMessage, tmplCtx)),
	}
}

// countdownText renders the {countdown} placeholder value. Only the normal
// state carries a remaining duration.
func countdownText(c engine.Countdown) string {
	if c.State != engine.CountdownNormal {
		return ""
	}
	if c.Hours == 0 {
		return fmt.Sprintf("%dm", c.Minutes)
	}
	return fmt.Sprintf("%dh %dm", c.Hours, c.Minutes)
}

// resolveNow parses the optional timestamp override and converts it into the
// requested zone. The engine always receives wall-clock time; it never reads
// the system timezone itself.
func resolveNow(nowStr, timezone string) (time.Time, error) {
	now := time.Now()
	if nowStr != "" {
		parsed, err := time.Parse(time.RFC3339, nowStr)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid now timestamp: %w", err)
		}
		now = parsed
	}
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timezone: %w", err)
		}
		now = now.In(loc)
	}
	return now, nil
}
