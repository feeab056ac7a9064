package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"delivery-service/internal/engine"
	"gorm.io/datatypes"
)

// DeliveryConfig is the persisted rule configuration for a tenant. The rule
// document lives in a JSONB column; the engine never touches gorm types.
type DeliveryConfig struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string         `json:"tenantId" gorm:"type:varchar(255);not null;uniqueIndex"`
	Document  datatypes.JSON `json:"document" gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Decode validates and returns the embedded config document.
func (c DeliveryConfig) Decode() (Config, error) {
	return ValidateConfig([]byte(c.Document))
}

// SetDocument replaces the embedded config document.
func (c *DeliveryConfig) SetDocument(cfg Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	c.Document = datatypes.JSON(raw)
	return nil
}

// DeliverySettings is the persisted shop-wide defaults document for a
// tenant, stored independently from the rule configuration.
type DeliverySettings struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string         `json:"tenantId" gorm:"type:varchar(255);not null;uniqueIndex"`
	Document  datatypes.JSON `json:"document" gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Decode returns the embedded global settings document.
func (s DeliverySettings) Decode() (engine.GlobalSettings, error) {
	var gs engine.GlobalSettings
	if err := json.Unmarshal([]byte(s.Document), &gs); err != nil {
		return engine.GlobalSettings{}, err
	}
	return gs, nil
}

// SetDocument replaces the embedded settings document.
func (s *DeliverySettings) SetDocument(gs engine.GlobalSettings) error {
	raw, err := json.Marshal(gs)
	if err != nil {
		return err
	}
	s.Document = datatypes.JSON(raw)
	return nil
}
