package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartfarm-backend/internal/scheduler"
	"smartfarm-backend/internal/sensor"
)

// PollCommand is the device's 1 Hz poll. Retrieval consumes: the pending
// command is removed before the response is written, so a retry after a lost
// response will not see it again. This route must never be cached.
// GET /api/pump/command/:deviceId
func (h *Handler) PollCommand(c *gin.Context) {
	deviceID := c.Param("deviceId")

	cmd, ok := h.store.Consume(deviceID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"hasCommand": false,
			"serverTime": time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"hasCommand": true,
		"command":    cmd,
		"serverTime": time.Now(),
	})
}

type controlRequest struct {
	Action   string `json:"action" binding:"required"`
	DeviceID string `json:"deviceId"`
	Mode     string `json:"mode"`
}

// Control handles a manual on/off from the dashboard. The command goes through
// the same mailbox as scheduled ones, so a manual action overrides a pending
// scheduled command and vice versa. POST /api/pump/control
func (h *Handler) Control(c *gin.Context) {
	var req controlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "action is required"})
		return
	}
	if req.Action != scheduler.CommandOn && req.Action != scheduler.CommandOff {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "action must be on or off"})
		return
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = "pump-1"
	}
	mode := req.Mode
	if mode == "" {
		mode = scheduler.ModeManual
	}

	cmd := h.store.Dispatch(deviceID, req.Action == scheduler.CommandOn, mode, "manual_control", scheduler.SourceDashboard)

	// Reflect the manual action into the pump feed so dashboard reads agree
	// with the command stream.
	h.sensors.Record(sensor.TypePump, sensor.Reading{
		"deviceId": deviceID,
		"status":   req.Action == scheduler.CommandOn,
		"mode":     mode,
		"source":   scheduler.SourceDashboard,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "pump command queued",
		"command":    cmd,
		"serverTime": time.Now(),
	})
}

// PumpStatus reports the last known pump state for a device.
// GET /api/pump/status/:deviceId
func (h *Handler) PumpStatus(c *gin.Context) {
	deviceID := c.Param("deviceId")

	status, ok := h.store.PumpStatus(deviceID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"deviceId": deviceID,
			"known":    false,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"deviceId": deviceID,
		"known":    true,
		"pump":     status,
	})
}
