package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"delivery-service/internal/engine"
	"delivery-service/internal/events"
	"delivery-service/internal/models"
	"delivery-service/internal/repository"
)

var (
	// ErrProfileNotFound is returned for unknown profile ids.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrRuleNotFound is returned for unknown rule ids.
	ErrRuleNotFound = errors.New("rule not found")
	// ErrLastProfile guards profile deletion: at least one must remain.
	ErrLastProfile = errors.New("at least one profile must remain")
	// ErrBadRuleOrder is returned when a reorder request is not a
	// permutation of the profile's rule ids.
	ErrBadRuleOrder = errors.New("rule order must contain every rule id exactly once")
)

// ConfigService owns all mutations of a tenant's delivery configuration and
// global settings.
type ConfigService struct {
	store  ConfigStore
	logger *logrus.Entry
}

// NewConfigService creates a new config service.
func NewConfigService(store ConfigStore, logger *logrus.Logger) *ConfigService {
	return &ConfigService{
		store:  store,
		logger: logger.WithField("component", "services.config"),
	}
}

// GetConfig returns the tenant's config, provisioning a default document on
// first access and upgrading v1 documents in place.
func (s *ConfigService) GetConfig(ctx context.Context, tenantID string) (models.Config, error) {
	cfg, err := s.store.GetConfig(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return models.Config{}, err
		}
		cfg = models.DefaultConfig()
		if err := s.store.SaveConfig(ctx, tenantID, cfg); err != nil {
			return models.Config{}, err
		}
		return cfg, nil
	}
	if cfg.Version != 2 {
		cfg = models.MigrateToV2(cfg)
		if err := s.store.SaveConfig(ctx, tenantID, cfg); err != nil {
			return models.Config{}, err
		}
	}
	return cfg, nil
}

// GetSettings returns the tenant's global settings, falling back to the
// defaults the resolution layer would apply anyway.
func (s *ConfigService) GetSettings(ctx context.Context, tenantID string) (engine.GlobalSettings, error) {
	settings, err := s.store.GetSettings(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return engine.GlobalSettings{
				CutoffTime:            engine.DefaultCutoffTime,
				ClosedDays:            engine.DayList{"sat", "sun"},
				CourierNoDeliveryDays: engine.DayList{"sat", "sun"},
			}, nil
		}
		return engine.GlobalSettings{}, err
	}
	return settings, nil
}

// UpdateSettings replaces the tenant's global settings.
func (s *ConfigService) UpdateSettings(ctx context.Context, tenantID string, gs engine.GlobalSettings) error {
	if err := s.store.SaveSettings(ctx, tenantID, gs); err != nil {
		return err
	}
	if pub := events.GetPublisher(); pub != nil {
		pub.PublishSettingsUpdated(tenantID)
	}
	return nil
}

// CreateProfile adds a new empty profile.
func (s *ConfigService) CreateProfile(ctx context.Context, tenantID, name string) (models.Profile, error) {
	cfg, err := s.GetConfig(ctx, tenantID)
	if err != nil {
		return models.Profile{}, err
	}
	profile := models.Profile{ID: uuid.NewString(), Name: name, Rules: []engine.Rule{}}
	cfg.Profiles = append(cfg.Profiles, profile)
	if err := s.saveAndPublish(ctx, tenantID, cfg, profile.ID, ""); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// RenameProfile renames a profile; its id stays stable.
func (s *ConfigService) RenameProfile(ctx context.Context, tenantID, profileID, name string) error {
	cfg, err := s.GetConfig(ctx, tenantID)
	if err != nil {
		return err
	}
	profile := cfg.ProfileByID(profileID)
	if profile == nil {
		return ErrProfileNotFound
	}
	profile.Name = name
	return s.saveAndPublish(ctx, tenantID, cfg, profileID, "")
}

// DeleteProfile removes a profile. The last remaining profile can never be
// deleted; deleting the active profile activates the first remaining one.
func (s *ConfigService) DeleteProfile(ctx context.Context, tenantID, profileID string) error {
	cfg, err := s.GetConfig(ctx, tenantID)
	if err != nil {
		return err
	}
	if len(cfg.Profiles) <= 1 {
		return ErrLastProfile
	}
	idx := -1
	for i := range cfg.Profiles {
		if cfg.Profiles[i].ID == profileID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrProfileNotFound
	}
	cfg.Profiles = append(cfg.Profiles[:idx], cfg.Profiles[idx+1:]...)
	if cfg.ActiveProfileID == profileID {
		cfg.ActiveProfileID = cfg.Profiles[0].ID
	}
	return s.saveAndPublish(ctx, tenantID, cfg, profileID, "")
}

// ActivateProfile makes a profile live on the storefront.
func (s *ConfigService) ActivateProfile(ctx context.Context, tenantID, profileID string) error {
	cfg, err := s.GetConfig(ctx, tenantID)
	if err != nil {
		return err
	}
	if cfg.ProfileByID(profileID) == nil {
		return ErrProfileNotFound
	}
	cfg.ActiveProfileID = profileID
	if err := s.store.SaveConfig(ctx, tenantID, cfg); err != nil {
		return err
	}
	if pub := events.GetPublisher(); pub != nil {
		pub.PublishProfileActivated(tenantID, profileID)
	}
	return nil
}

// AddRule appends a rule to a profile. New rules get the lowest priority;
// the editor reorders afterwards.
func (s *ConfigService) AddRule(ctx context.Context, tenantID, profileID string, req models.RuleRequest) (engine.Rule, error) {
	cfg, err := s.GetConfig(ctx, tenantID)
	if err != nil {
		return engine.Rule{}, err
	}
	profile := cfg.ProfileByID(profileID)
	if profile == nil {
		return engine.Rule{}, ErrProfileNotFound
	}
	rule := engine.Rule{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Match:    req.Match,
		Settings: req.Settings,
	}
	profile.Rules = append(profile.Rules, rule)
	if err := s.saveAndPublish(ctx, tenantID, cfg, profileID, rule.ID); err != nil {
		return engine.Rule{}, err
	}
	return rule, nil
}

// UpdateRule replaces a rule's name, match and settings in place, keeping
// its id and priority position.
func (s *ConfigService) UpdateRule(ctx context.Context, tenantID, profileID, ruleID string, req models.RuleRequest) (engine.Rule, error) {
	cfg, err := s.GetConfig(ctx, tenantID)
	if err != nil {
		return engine.Rule{}, err
	}
	profile := cfg.ProfileByID(profileID)
	if profile == nil {
		return engine.Rule{}, ErrProfileNotFound
	}
	for i := range profile.Rules {
		if profile.Rules[i].ID == ruleID {
			profile.Rules[i].Name = req.Name
			profile.Rules[i].Match = req.Match
			profile.Rules[i].Settings = req.Settings
			if err := s.saveAndPublish(ctx, tenantID, cfg, profileID, ruleID); err != nil {
				return engine.Rule{}, err
			}
			return profile.Rules[i], nil
		}
	}
	return engine.Rule{}, ErrRuleNotFound
}

// DeleteRule removes a rule and stashes it, with its original index, for the
// undo window.
func (s *ConfigService) DeleteRule(ctx context.Context, tenantID, profileID, ruleID string) error {
	cfg, err := s.GetConfig(ctx, tenantID)
	if err != nil {
		return err
	}
	profile := cfg.ProfileByID(profileID)
	if profile == nil {
		return ErrProfileNotFound
	}
	for i := range profile.Rules {
		if profile.Rules[i].ID == ruleID {
			removed := profile.Rules[i]
			profile.Rules = append(profile.Rules[:i], profile.Rules[i+1:]...)
			if err := s.saveAndPublish(ctx, tenantID, cfg, profileID, ruleID); err != nil {
				return err
			}
			if err := s.store.StashDeletedRule(ctx, tenantID, profileID, removed, i); err != nil {
				s.logger.WithError(err).Warn("Failed to stash deleted rule for undo")
			}
			return nil
		}
	}
	return ErrRuleNotFound
}

// UndoDeleteRule restores the most recently deleted rule of a profile if the
// undo window is still open, reinserting it at its original index.
func (s *ConfigService) UndoDeleteRule(ctx context.Context, tenantID, profileID string) (models.UndoDeleteResponse, error) {
	rule, index, ok := s.store.PopDeletedRule(ctx, tenantID, profileID)
	if !ok {
		return models.UndoDeleteResponse{Restored: false}, nil
	}
	cfg, err := s.GetConfig(ctx, tenantID)
	if err != nil {
		return models.UndoDeleteResponse{}, err
	}
	profile := cfg.ProfileByID(profileID)
	if profile == nil {
		return models.UndoDeleteResponse{}, ErrProfileNotFound
	}
	if index > len(profile.Rules) {
		index = len(profile.Rules)
	}
	profile.Rules = append(profile.Rules[:index], append([]engine.Rule{rule}, profile.Rules[index:]...)...)
	if err := s.saveAndPublish(ctx, tenantID, cfg, profileID, rule.ID); err != nil {
		return models.UndoDeleteResponse{}, err
	}
	return models.UndoDeleteResponse{Restored: true, Rule: &rule, Index: index}, nil
}

// ReorderRules applies a new priority order. The request must be a
// permutation of the profile's current rule ids.
func (s *ConfigService) ReorderRules(ctx context.Context, tenantID, profileID string, ruleIDs []string) error {
	cfg, err := s.GetConfig(ctx, tenantID)
	if err != nil {
		return err
	}
	profile := cfg.ProfileByID(profileID)
	if profile == nil {
		return ErrProfileNotFound
	}
	if len(ruleIDs) != len(profile.Rules) {
		return ErrBadRuleOrder
	}
	byID := make(map[string]engine.Rule, len(profile.Rules))
	for _, r := range profile.Rules {
		byID[r.ID] = r
	}
	reordered := make([]engine.Rule, 0, len(ruleIDs))
	for _, id := range ruleIDs {
		rule, ok := byID[id]
		if !ok {
			return ErrBadRuleOrder
		}
		delete(byID, id)
		reordered = append(reordered, rule)
	}
	profile.Rules = reordered
	return s.saveAndPublish(ctx, tenantID, cfg, profileID, "")
}

func (s *ConfigService) saveAndPublish(ctx context.Context, tenantID string, cfg models.Config, profileID, ruleID string) error {
	if err := s.store.SaveConfig(ctx, tenantID, cfg); err != nil {
		return err
	}
	if pub := events.GetPublisher(); pub != nil {
		pub.PublishConfigUpdated(tenantID, profileID, ruleID)
	}
	return nil
}
