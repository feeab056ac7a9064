package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"delivery-service/internal/engine"
)

// Config is the persisted rule configuration document. Version 1 carries a
// flat rule list; version 2 carries named profiles plus the id of the
// profile currently live on the storefront. Exactly one representation is
// authoritative for a given version.
type Config struct {
	Version         int           `json:"version"`
	Profiles        []Profile     `json:"profiles,omitempty"`
	ActiveProfileID string        `json:"activeProfileId,omitempty"`
	Rules           []engine.Rule `json:"rules,omitempty"`
}

// Profile is a named, independently switchable rule set. Its id is opaque
// and stable across renames.
type Profile struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Rules []engine.Rule `json:"rules"`
}

// DefaultProfileName is the name given to the profile synthesized from a v1
// rule list during migration.
const DefaultProfileName = "Default"

// ActiveProfile returns the profile referenced by ActiveProfileID, falling
// back to the first profile when the reference is stale.
func (c Config) ActiveProfile() *Profile {
	for i := range c.Profiles {
		if c.Profiles[i].ID == c.ActiveProfileID {
			return &c.Profiles[i]
		}
	}
	if len(c.Profiles) > 0 {
		return &c.Profiles[0]
	}
	return nil
}

// ProfileByID looks up a profile.
func (c Config) ProfileByID(id string) *Profile {
	for i := range c.Profiles {
		if c.Profiles[i].ID == id {
			return &c.Profiles[i]
		}
	}
	return nil
}

// MigrateToV2 upgrades a v1 config by wrapping its flat rule list into a
// single "Default" profile. Already-v2 input is returned unchanged, checked
// by the version field alone. The synthesized profile receives a freshly
// generated id on every call; callers that must be deterministic (or that
// migrate without persisting) use MigrateToV2WithProfileID.
func MigrateToV2(cfg Config) Config {
	return MigrateToV2WithProfileID(cfg, uuid.NewString())
}

// MigrateToV2WithProfileID is MigrateToV2 with the synthesized profile id
// pinned by the caller.
func MigrateToV2WithProfileID(cfg Config, profileID string) Config {
	if cfg.Version == 2 {
		return cfg
	}
	rules := cfg.Rules
	if rules == nil {
		rules = []engine.Rule{}
	}
	profile := Profile{ID: profileID, Name: DefaultProfileName, Rules: rules}
	return Config{
		Version:         2,
		Profiles:        []Profile{profile},
		ActiveProfileID: profile.ID,
	}
}

// DefaultConfig is the document created on first install: one empty profile.
func DefaultConfig() Config {
	return MigrateToV2(Config{Version: 1})
}

// ValidationError reports a structural problem in a parsed config document.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: %s: %s", e.Field, e.Message)
}

// ValidateConfig parses and structurally validates a config document. It
// checks shape only; business-rule validation (for example a closed-day set
// covering all seven weekdays) is the editor's responsibility.
func ValidateConfig(raw []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, &ValidationError{Field: "config", Message: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate structurally validates an already-parsed config.
func (c Config) Validate() error {
	switch c.Version {
	case 1:
		if len(c.Profiles) > 0 {
			return &ValidationError{Field: "profiles", Message: "not allowed in a version 1 config"}
		}
		return validateRules("rules", c.Rules)
	case 2:
		if len(c.Rules) > 0 {
			return &ValidationError{Field: "rules", Message: "not allowed in a version 2 config"}
		}
		if len(c.Profiles) == 0 {
			return &ValidationError{Field: "profiles", Message: "at least one profile is required"}
		}
		seen := map[string]bool{}
		for i, p := range c.Profiles {
			field := fmt.Sprintf("profiles[%d]", i)
			if p.ID == "" {
				return &ValidationError{Field: field + ".id", Message: "is required"}
			}
			if seen[p.ID] {
				return &ValidationError{Field: field + ".id", Message: "duplicate profile id"}
			}
			seen[p.ID] = true
			if err := validateRules(field+".rules", p.Rules); err != nil {
				return err
			}
		}
		if c.ActiveProfileID != "" && c.ProfileByID(c.ActiveProfileID) == nil {
			return &ValidationError{Field: "activeProfileId", Message: "references an unknown profile"}
		}
		return nil
	default:
		return &ValidationError{Field: "version", Message: "must be 1 or 2"}
	}
}

func validateRules(field string, rules []engine.Rule) error {
	seen := map[string]bool{}
	for i, r := range rules {
		rf := fmt.Sprintf("%s[%d]", field, i)
		if r.ID == "" {
			return &ValidationError{Field: rf + ".id", Message: "is required"}
		}
		if seen[r.ID] {
			return &ValidationError{Field: rf + ".id", Message: "duplicate rule id"}
		}
		seen[r.ID] = true
		if s := r.Match.StockStatus; s != "" && !engine.ValidStockStatus(s) {
			return &ValidationError{Field: rf + ".match.stock_status", Message: "unknown stock status"}
		}
		if r.Settings.EtaDeliveryDaysMin < 0 || r.Settings.EtaDeliveryDaysMax < 0 {
			return &ValidationError{Field: rf + ".settings", Message: "delivery day counts must not be negative"}
		}
	}
	return nil
}
