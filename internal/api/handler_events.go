package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartfarm-backend/internal/model"
)

// PumpEvents returns the device's recent command log, newest first.
// GET /api/pump/events/:deviceId?limit=50
func (h *Handler) PumpEvents(c *gin.Context) {
	deviceID := c.Param("deviceId")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	var events []model.PumpEvent
	err := h.db.Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"deviceId": deviceID,
		"count":    len(events),
		"events":   events,
	})
}
