package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"delivery-service/internal/engine"
	"delivery-service/internal/models"
	"delivery-service/internal/repository"
)

func twoProfileConfig() models.Config {
	return models.Config{
		Version: 2,
		Profiles: []models.Profile{
			{ID: "p1", Name: "Default", Rules: []engine.Rule{
				{ID: "r1", Name: "First"},
				{ID: "r2", Name: "Second"},
			}},
			{ID: "p2", Name: "Holiday season", Rules: []engine.Rule{}},
		},
		ActiveProfileID: "p1",
	}
}

func TestGetConfigProvisionsDefaultOnFirstAccess(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).
		Return(models.Config{}, repository.ErrNotFound)
	store.On("SaveConfig", mock.Anything, testTenant, mock.MatchedBy(func(cfg models.Config) bool {
		return cfg.Version == 2 && len(cfg.Profiles) == 1 && cfg.Profiles[0].Name == models.DefaultProfileName
	})).Return(nil)

	svc := NewConfigService(store, testLogger())
	cfg, err := svc.GetConfig(context.Background(), testTenant)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Version)
	store.AssertExpectations(t)
}

func TestGetConfigMigratesV1(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).
		Return(models.Config{Version: 1, Rules: []engine.Rule{{ID: "r1"}}}, nil)
	store.On("SaveConfig", mock.Anything, testTenant, mock.MatchedBy(func(cfg models.Config) bool {
		return cfg.Version == 2
	})).Return(nil)

	svc := NewConfigService(store, testLogger())
	cfg, err := svc.GetConfig(context.Background(), testTenant)
	require.NoError(t, err)
	require.Len(t, cfg.Profiles, 1)
	assert.Equal(t, "r1", cfg.Profiles[0].Rules[0].ID)
	store.AssertExpectations(t)
}

func TestGetConfigPassesThroughV2Untouched(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)

	svc := NewConfigService(store, testLogger())
	cfg, err := svc.GetConfig(context.Background(), testTenant)
	require.NoError(t, err)
	assert.Equal(t, twoProfileConfig(), cfg)
	store.AssertNotCalled(t, "SaveConfig", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetSettingsFallsBackToDefaults(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetSettings", mock.Anything, testTenant).
		Return(engine.GlobalSettings{}, repository.ErrNotFound)

	svc := NewConfigService(store, testLogger())
	gs, err := svc.GetSettings(context.Background(), testTenant)
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultCutoffTime, gs.CutoffTime)
	assert.Equal(t, engine.DayList{"sat", "sun"}, gs.ClosedDays)
}

func TestUpdateSettings(t *testing.T) {
	store := new(MockConfigStore)
	gs := engine.GlobalSettings{CutoffTime: "12:00"}
	store.On("SaveSettings", mock.Anything, testTenant, gs).Return(nil)

	svc := NewConfigService(store, testLogger())
	require.NoError(t, svc.UpdateSettings(context.Background(), testTenant, gs))
	store.AssertExpectations(t)
}

func TestCreateProfileAppends(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)
	store.On("SaveConfig", mock.Anything, testTenant, mock.MatchedBy(func(cfg models.Config) bool {
		return len(cfg.Profiles) == 3 && cfg.Profiles[2].Name == "Black Friday"
	})).Return(nil)

	svc := NewConfigService(store, testLogger())
	profile, err := svc.CreateProfile(context.Background(), testTenant, "Black Friday")
	require.NoError(t, err)
	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, "Black Friday", profile.Name)
	assert.NotNil(t, profile.Rules)
	store.AssertExpectations(t)
}

func TestRenameProfileKeepsID(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)
	store.On("SaveConfig", mock.Anything, testTenant, mock.MatchedBy(func(cfg models.Config) bool {
		p := cfg.ProfileByID("p2")
		return p != nil && p.Name == "Renamed"
	})).Return(nil)

	svc := NewConfigService(store, testLogger())
	require.NoError(t, svc.RenameProfile(context.Background(), testTenant, "p2", "Renamed"))
	store.AssertExpectations(t)
}

func TestRenameProfileUnknownID(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)

	svc := NewConfigService(store, testLogger())
	err := svc.RenameProfile(context.Background(), testTenant, "missing", "x")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestDeleteProfileGuardsLastProfile(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).Return(models.Config{
		Version:         2,
		Profiles:        []models.Profile{{ID: "p1"}},
		ActiveProfileID: "p1",
	}, nil)

	svc := NewConfigService(store, testLogger())
	err := svc.DeleteProfile(context.Background(), testTenant, "p1")
	assert.ErrorIs(t, err, ErrLastProfile)
	store.AssertNotCalled(t, "SaveConfig", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteActiveProfileReassignsActive(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)
	store.On("SaveConfig", mock.Anything, testTenant, mock.MatchedBy(func(cfg models.Config) bool {
		return len(cfg.Profiles) == 1 && cfg.ActiveProfileID == "p2"
	})).Return(nil)

	svc := NewConfigService(store, testLogger())
	require.NoError(t, svc.DeleteProfile(context.Background(), testTenant, "p1"))
	store.AssertExpectations(t)
}

func TestActivateProfile(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)
	store.On("SaveConfig", mock.Anything, testTenant, mock.MatchedBy(func(cfg models.Config) bool {
		return cfg.ActiveProfileID == "p2"
	})).Return(nil)

	svc := NewConfigService(store, testLogger())
	require.NoError(t, svc.ActivateProfile(context.Background(), testTenant, "p2"))

	err := svc.ActivateProfile(context.Background(), testTenant, "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestAddRuleAppendsWithFreshID(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)
	store.On("SaveConfig", mock.Anything, testTenant, mock.MatchedBy(func(cfg models.Config) bool {
		p := cfg.ProfileByID("p1")
		return p != nil && len(p.Rules) == 3 && p.Rules[2].Name == "New rule"
	})).Return(nil)

	svc := NewConfigService(store, testLogger())
	rule, err := svc.AddRule(context.Background(), testTenant, "p1", models.RuleRequest{Name: "New rule"})
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)
	store.AssertExpectations(t)
}

func TestUpdateRuleInPlace(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)
	store.On("SaveConfig", mock.Anything, testTenant, mock.MatchedBy(func(cfg models.Config) bool {
		p := cfg.ProfileByID("p1")
		// Position and id survive the update
		return p != nil && p.Rules[0].ID == "r1" && p.Rules[0].Name == "Renamed"
	})).Return(nil)

	svc := NewConfigService(store, testLogger())
	rule, err := svc.UpdateRule(context.Background(), testTenant, "p1", "r1", models.RuleRequest{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "r1", rule.ID)
	assert.Equal(t, "Renamed", rule.Name)
}

func TestUpdateRuleUnknownID(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)

	svc := NewConfigService(store, testLogger())
	_, err := svc.UpdateRule(context.Background(), testTenant, "p1", "missing", models.RuleRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestDeleteRuleStashesForUndo(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)
	store.On("SaveConfig", mock.Anything, testTenant, mock.MatchedBy(func(cfg models.Config) bool {
		p := cfg.ProfileByID("p1")
		return p != nil && len(p.Rules) == 1 && p.Rules[0].ID == "r2"
	})).Return(nil)
	store.On("StashDeletedRule", mock.Anything, testTenant, "p1",
		mock.MatchedBy(func(r engine.Rule) bool { return r.ID == "r1" }), 0).Return(nil)

	svc := NewConfigService(store, testLogger())
	require.NoError(t, svc.DeleteRule(context.Background(), testTenant, "p1", "r1"))
	store.AssertExpectations(t)
}

func TestUndoDeleteRuleRestoresAtOriginalIndex(t *testing.T) {
	store := new(MockConfigStore)
	store.On("PopDeletedRule", mock.Anything, testTenant, "p1").
		Return(engine.Rule{ID: "r0", Name: "Restored"}, 1, true)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)
	store.On("SaveConfig", mock.Anything, testTenant, mock.MatchedBy(func(cfg models.Config) bool {
		p := cfg.ProfileByID("p1")
		return p != nil && len(p.Rules) == 3 && p.Rules[1].ID == "r0"
	})).Return(nil)

	svc := NewConfigService(store, testLogger())
	resp, err := svc.UndoDeleteRule(context.Background(), testTenant, "p1")
	require.NoError(t, err)
	assert.True(t, resp.Restored)
	require.NotNil(t, resp.Rule)
	assert.Equal(t, "r0", resp.Rule.ID)
	assert.Equal(t, 1, resp.Index)
	store.AssertExpectations(t)
}

func TestUndoDeleteRuleClampsStaleIndex(t *testing.T) {
	store := new(MockConfigStore)
	store.On("PopDeletedRule", mock.Anything, testTenant, "p2").
		Return(engine.Rule{ID: "r9"}, 7, true)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)
	store.On("SaveConfig", mock.Anything, testTenant, mock.MatchedBy(func(cfg models.Config) bool {
		p := cfg.ProfileByID("p2")
		return p != nil && len(p.Rules) == 1 && p.Rules[0].ID == "r9"
	})).Return(nil)

	svc := NewConfigService(store, testLogger())
	resp, err := svc.UndoDeleteRule(context.Background(), testTenant, "p2")
	require.NoError(t, err)
	assert.True(t, resp.Restored)
	assert.Equal(t, 0, resp.Index)
}

func TestUndoDeleteRuleNothingStashed(t *testing.T) {
	store := new(MockConfigStore)
	store.On("PopDeletedRule", mock.Anything, testTenant, "p1").
		Return(engine.Rule{}, 0, false)

	svc := NewConfigService(store, testLogger())
	resp, err := svc.UndoDeleteRule(context.Background(), testTenant, "p1")
	require.NoError(t, err)
	assert.False(t, resp.Restored)
	store.AssertNotCalled(t, "GetConfig", mock.Anything, mock.Anything)
}

func TestReorderRules(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)
	store.On("SaveConfig", mock.Anything, testTenant, mock.MatchedBy(func(cfg models.Config) bool {
		p := cfg.ProfileByID("p1")
		return p != nil && p.Rules[0].ID == "r2" && p.Rules[1].ID == "r1"
	})).Return(nil)

	svc := NewConfigService(store, testLogger())
	require.NoError(t, svc.ReorderRules(context.Background(), testTenant, "p1", []string{"r2", "r1"}))
	store.AssertExpectations(t)
}

func TestReorderRulesRejectsBadPermutations(t *testing.T) {
	store := new(MockConfigStore)
	store.On("GetConfig", mock.Anything, testTenant).Return(twoProfileConfig(), nil)

	svc := NewConfigService(store, testLogger())

	// Wrong length
	err := svc.ReorderRules(context.Background(), testTenant, "p1", []string{"r1"})
	assert.ErrorIs(t, err, ErrBadRuleOrder)

	// Unknown id
	err = svc.ReorderRules(context.Background(), testTenant, "p1", []string{"r1", "r9"})
	assert.ErrorIs(t, err, ErrBadRuleOrder)

	// Duplicate id
	err = svc.ReorderRules(context.Background(), testTenant, "p1", []string{"r1", "r1"})
	assert.ErrorIs(t, err, ErrBadRuleOrder)

	store.AssertNotCalled(t, "SaveConfig", mock.Anything, mock.Anything, mock.Anything)
}
