package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"delivery-service/internal/models"
	"delivery-service/internal/services"
)

// DeliveryHandler handles estimation HTTP requests.
type DeliveryHandler struct {
	estimates *services.EstimateService
}

// NewDeliveryHandler creates a new delivery handler.
func NewDeliveryHandler(estimates *services.EstimateService) *DeliveryHandler {
	return &DeliveryHandler{estimates: estimates}
}

// Estimate handles POST /api/v1/delivery/estimate
func (h *DeliveryHandler) Estimate(c *gin.Context) {
	var req models.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	response, err := h.estimates.Estimate(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute estimate",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, response)
}

// Preview handles POST /api/v1/delivery/preview
func (h *DeliveryHandler) Preview(c *gin.Context) {
	var req models.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	response, err := h.estimates.Preview(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute preview",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, response)
}

// Countdown handles POST /api/v1/delivery/countdown
func (h *DeliveryHandler) Countdown(c *gin.Context) {
	var req models.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	response, err := h.estimates.Countdown(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute countdown",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetHolidays handles GET /api/v1/delivery/holidays/:country/:year
func (h *DeliveryHandler) GetHolidays(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "year must be a number",
		})
		return
	}
	c.JSON(http.StatusOK, h.estimates.Holidays(c.Param("country"), year))
}

// HealthCheck handles GET /health
func (h *DeliveryHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "delivery-service",
	})
}

func getTenantID(c *gin.Context) string {
	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		tenantID = c.GetHeader("X-Tenant-ID")
	}
	if tenantID == "" {
		// Default to demo tenant for development
		return "00000000-0000-0000-0000-000000000001"
	}
	return tenantID
}
