package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartfarm-backend/internal/sensor"
)

// DeviceStatus reports overall device connectivity.
// GET /api/status
func (h *Handler) DeviceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.sensors.Status())
}

// StatusAll is the dashboard's one-shot overview: server, device, every
// sensor feed and the scheduler. GET /api/status/all
func (h *Handler) StatusAll(c *gin.Context) {
	now := time.Now()
	device := h.sensors.Status()

	feeds := make(map[string]gin.H)
	for typ, info := range h.sensors.Sensors(now) {
		feeds[string(typ)] = gin.H{
			"online":        info.Online,
			"lastUpdate":    info.LastUpdate,
			"ageSeconds":    info.AgeSeconds,
			"history_count": h.sensors.HistoryCount(typ),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"server":        "online",
		"timestamp":     now,
		"device_status": device,
		"sensors":       feeds,
		"scheduler": gin.H{
			"active":  h.monitors.Active(),
			"devices": h.monitors.Devices(),
		},
	})
}

// DeviceInfo reports device identity plus server runtime details.
// GET /api/device/info
func (h *Handler) DeviceInfo(c *gin.Context) {
	device := h.sensors.Status()

	c.JSON(http.StatusOK, gin.H{
		"device_id":      device.DeviceID,
		"is_online":      device.IsOnline,
		"last_seen":      device.LastSeen,
		"sensor_updates": device.LastUpdate,
		"server_uptime":  h.uptime(),
		"scheduler": gin.H{
			"devices":  h.store.DeviceCount(),
			"monitors": h.monitors.Devices(),
		},
	})
}

// Health is the liveness endpoint.
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	now := time.Now()

	online := 0
	feeds := make(map[string]bool)
	for typ, info := range h.sensors.Sensors(now) {
		feeds[string(typ)] = info.Online
		if info.Online {
			online++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"timestamp":      now,
		"uptime":         h.uptime(),
		"sensors_online": online,
		"sensors_total":  len(sensor.Types()),
		"sensor_status":  feeds,
		"scheduler": gin.H{
			"active":    h.monitors.Active(),
			"schedules": h.store.DeviceCount(),
		},
	})
}
