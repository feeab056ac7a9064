package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"delivery-service/internal/engine"
	"delivery-service/internal/models"
	"delivery-service/internal/services"
)

// ConfigHandler handles configuration CRUD HTTP requests.
type ConfigHandler struct {
	configs *services.ConfigService
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(configs *services.ConfigService) *ConfigHandler {
	return &ConfigHandler{configs: configs}
}

// GetConfig handles GET /api/v1/config
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	cfg, err := h.configs.GetConfig(c.Request.Context(), getTenantID(c))
	if err != nil {
		respondError(c, err, "Failed to load config")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// CreateProfile handles POST /api/v1/profiles
func (h *ConfigHandler) CreateProfile(c *gin.Context) {
	var req models.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	profile, err := h.configs.CreateProfile(c.Request.Context(), getTenantID(c), req.Name)
	if err != nil {
		respondError(c, err, "Failed to create profile")
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// UpdateProfile handles PUT /api/v1/profiles/:id
func (h *ConfigHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.configs.RenameProfile(c.Request.Context(), getTenantID(c), c.Param("id"), req.Name); err != nil {
		respondError(c, err, "Failed to rename profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteProfile handles DELETE /api/v1/profiles/:id
func (h *ConfigHandler) DeleteProfile(c *gin.Context) {
	if err := h.configs.DeleteProfile(c.Request.Context(), getTenantID(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ActivateProfile handles POST /api/v1/profiles/:id/activate
func (h *ConfigHandler) ActivateProfile(c *gin.Context) {
	if err := h.configs.ActivateProfile(c.Request.Context(), getTenantID(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to activate profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateRule handles POST /api/v1/profiles/:id/rules
func (h *ConfigHandler) CreateRule(c *gin.Context) {
	var req models.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	rule, err := h.configs.AddRule(c.Request.Context(), getTenantID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to create rule")
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// UpdateRule handles PUT /api/v1/profiles/:id/rules/:ruleId
func (h *ConfigHandler) UpdateRule(c *gin.Context) {
	var req models.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	rule, err := h.configs.UpdateRule(c.Request.Context(), getTenantID(c), c.Param("id"), c.Param("ruleId"), req)
	if err != nil {
		respondError(c, err, "Failed to update rule")
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeleteRule handles DELETE /api/v1/profiles/:id/rules/:ruleId
func (h *ConfigHandler) DeleteRule(c *gin.Context) {
	if err := h.configs.DeleteRule(c.Request.Context(), getTenantID(c), c.Param("id"), c.Param("ruleId")); err != nil {
		respondError(c, err, "Failed to delete rule")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UndoDeleteRule handles POST /api/v1/profiles/:id/rules/undo
func (h *ConfigHandler) UndoDeleteRule(c *gin.Context) {
	response, err := h.configs.UndoDeleteRule(c.Request.Context(), getTenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to undo rule deletion")
		return
	}
	c.JSON(http.StatusOK, response)
}

// ReorderRules handles PUT /api/v1/profiles/:id/rules/order
func (h *ConfigHandler) ReorderRules(c *gin.Context) {
	var req models.ReorderRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.configs.ReorderRules(c.Request.Context(), getTenantID(c), c.Param("id"), req.RuleIDs); err != nil {
		respondError(c, err, "Failed to reorder rules")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSettings handles GET /api/v1/settings
func (h *ConfigHandler) GetSettings(c *gin.Context) {
	settings, err := h.configs.GetSettings(c.Request.Context(), getTenantID(c))
	if err != nil {
		respondError(c, err, "Failed to load settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/v1/settings
func (h *ConfigHandler) UpdateSettings(c *gin.Context) {
	var settings engine.GlobalSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.configs.UpdateSettings(c.Request.Context(), getTenantID(c), settings); err != nil {
		respondError(c, err, "Failed to update settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"message": err.Error(),
	})
}

func respondError(c *gin.Context, err error, fallback string) {
	var validationErr *models.ValidationError
	switch {
	case errors.Is(err, services.ErrProfileNotFound), errors.Is(err, services.ErrRuleNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrLastProfile), errors.Is(err, services.ErrBadRuleOrder):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Conflict",
			"message": err.Error(),
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Invalid config",
			"message": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   fallback,
			"message": err.Error(),
		})
	}
}
