package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"delivery-service/internal/engine"
	"delivery-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	cachePrefix      = "tesseract:delivery:"
	configCacheTTL   = 5 * time.Minute
	settingsCacheTTL = 5 * time.Minute

	// UndoWindow is how long a deleted rule can be restored.
	UndoWindow = 10 * time.Second
)

// ErrNotFound is returned when a tenant has no persisted document yet.
var ErrNotFound = errors.New("not found")

// deletedRule is the stashed payload behind the undo window.
type deletedRule struct {
	Rule    engine.Rule `json:"rule"`
	Index   int         `json:"index"`
	Expires time.Time   `json:"-"`
}

// ConfigRepository persists delivery configs and global settings per tenant,
// with a redis cache in front of postgres. Redis is optional; a nil client
// degrades to database reads and an in-process undo stash.
type ConfigRepository struct {
	db    *gorm.DB
	redis *redis.Client

	undoMu sync.Mutex
	undo   map[string]deletedRule
}

// NewConfigRepository creates a new config repository.
func NewConfigRepository(db *gorm.DB, redisClient *redis.Client) *ConfigRepository {
	return &ConfigRepository{
		db:    db,
		redis: redisClient,
		undo:  make(map[string]deletedRule),
	}
}

// GetConfig loads a tenant's config document. The caller is responsible for
// migrating v1 documents and persisting the result.
func (r *ConfigRepository) GetConfig(ctx context.Context, tenantID string) (models.Config, error) {
	cacheKey := cachePrefix + "config:" + tenantID
	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var cfg models.Config
			if err := json.Unmarshal([]byte(val), &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	var record models.DeliveryConfig
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Config{}, ErrNotFound
		}
		return models.Config{}, err
	}

	cfg, err := record.Decode()
	if err != nil {
		return models.Config{}, fmt.Errorf("stored config for tenant %s is invalid: %w", tenantID, err)
	}

	if r.redis != nil {
		if data, marshalErr := json.Marshal(cfg); marshalErr == nil {
			r.redis.Set(ctx, cacheKey, data, configCacheTTL)
		}
	}
	return cfg, nil
}

// SaveConfig upserts a tenant's config document and invalidates the cache.
func (r *ConfigRepository) SaveConfig(ctx context.Context, tenantID string, cfg models.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	record := models.DeliveryConfig{TenantID: tenantID}
	if err := record.SetDocument(cfg); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return err
	}
	if r.redis != nil {
		r.redis.Del(ctx, cachePrefix+"config:"+tenantID)
	}
	return nil
}

// GetSettings loads a tenant's global settings document.
func (r *ConfigRepository) GetSettings(ctx context.Context, tenantID string) (engine.GlobalSettings, error) {
	cacheKey := cachePrefix + "settings:" + tenantID
	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var gs engine.GlobalSettings
			if err := json.Unmarshal([]byte(val), &gs); err == nil {
				return gs, nil
			}
		}
	}

	var record models.DeliverySettings
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return engine.GlobalSettings{}, ErrNotFound
		}
		return engine.GlobalSettings{}, err
	}

	gs, err := record.Decode()
	if err != nil {
		return engine.GlobalSettings{}, fmt.Errorf("stored settings for tenant %s are invalid: %w", tenantID, err)
	}

	if r.redis != nil {
		if data, marshalErr := json.Marshal(gs); marshalErr == nil {
			r.redis.Set(ctx, cacheKey, data, settingsCacheTTL)
		}
	}
	return gs, nil
}

// SaveSettings upserts a tenant's global settings and invalidates the cache.
func (r *ConfigRepository) SaveSettings(ctx context.Context, tenantID string, gs engine.GlobalSettings) error {
	record := models.DeliverySettings{TenantID: tenantID}
	if err := record.SetDocument(gs); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return err
	}
	if r.redis != nil {
		r.redis.Del(ctx, cachePrefix+"settings:"+tenantID)
	}
	return nil
}

// StashDeletedRule keeps a removed rule and its original index restorable
// for the undo window.
func (r *ConfigRepository) StashDeletedRule(ctx context.Context, tenantID, profileID string, rule engine.Rule, index int) error {
	stash := deletedRule{Rule: rule, Index: index}
	key := undoKey(tenantID, profileID)

	if r.redis != nil {
		data, err := json.Marshal(stash)
		if err != nil {
			return err
		}
		return r.redis.Set(ctx, key, data, UndoWindow).Err()
	}

	stash.Expires = time.Now().Add(UndoWindow)
	r.undoMu.Lock()
	r.undo[key] = stash
	r.undoMu.Unlock()
	return nil
}

// PopDeletedRule takes the stashed rule for a profile if the undo window is
// still open. The second return is false when nothing is restorable.
func (r *ConfigRepository) PopDeletedRule(ctx context.Context, tenantID, profileID string) (engine.Rule, int, bool) {
	key := undoKey(tenantID, profileID)

	if r.redis != nil {
		val, err := r.redis.GetDel(ctx, key).Result()
		if err != nil {
			return engine.Rule{}, 0, false
		}
		var stash deletedRule
		if err := json.Unmarshal([]byte(val), &stash); err != nil {
			return engine.Rule{}, 0, false
		}
		return stash.Rule, stash.Index, true
	}

	r.undoMu.Lock()
	defer r.undoMu.Unlock()
	stash, ok := r.undo[key]
	if !ok {
		return engine.Rule{}, 0, false
	}
	delete(r.undo, key)
	if time.Now().After(stash.Expires) {
		return engine.Rule{}, 0, false
	}
	return stash.Rule, stash.Index, true
}

func undoKey(tenantID, profileID string) string {
	return cachePrefix + "undo:" + tenantID + ":" + profileID
}
