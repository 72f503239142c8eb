package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartfarm-backend/internal/scheduler"
)

type setSchedulesRequest struct {
	DeviceID  string                    `json:"deviceId" binding:"required"`
	Schedules []scheduler.ScheduleInput `json:"schedules" binding:"required"`
	CreatedBy string                    `json:"createdBy"`
}

type upsertScheduleRequest struct {
	DeviceID  string                        `json:"deviceId" binding:"required"`
	Schedule  scheduler.SingleScheduleInput `json:"schedule" binding:"required"`
	CreatedBy string                        `json:"createdBy"`
}

func scheduleError(c *gin.Context, err error) {
	var verr *scheduler.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": verr.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
}

// SetSchedules replaces the device's full schedule list and (re)starts its
// monitor. POST /api/pump/schedule
func (h *Handler) SetSchedules(c *gin.Context) {
	var req setSchedulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "deviceId and schedules are required"})
		return
	}

	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = scheduler.SourceDashboard
	}

	record, err := h.store.SetSchedules(req.DeviceID, req.Schedules, createdBy)
	if err != nil {
		scheduleError(c, err)
		return
	}
	h.monitors.Start(req.DeviceID)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "schedules saved",
		"deviceId":   req.DeviceID,
		"schedules":  record,
		"serverTime": time.Now(),
	})
}

// UpsertSchedule inserts or replaces one schedule keyed by its small-integer
// scheduleId. POST /api/pump/schedules
func (h *Handler) UpsertSchedule(c *gin.Context) {
	var req upsertScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "deviceId and schedule are required"})
		return
	}

	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = scheduler.SourceDashboard
	}

	schedule, err := h.store.UpsertSingleSchedule(req.DeviceID, req.Schedule, createdBy)
	if err != nil {
		scheduleError(c, err)
		return
	}
	h.monitors.Start(req.DeviceID)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "schedule saved",
		"deviceId":   req.DeviceID,
		"scheduleId": schedule.ScheduleID,
		"schedule":   schedule,
		"serverTime": time.Now(),
	})
}

// GetSchedule returns the device's schedule set with per-schedule status
// projection. GET /api/pump/schedule/:deviceId
func (h *Handler) GetSchedule(c *gin.Context) {
	deviceID := c.Param("deviceId")
	now := time.Now()
	view := h.store.Project(deviceID, now)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"deviceId":    deviceID,
		"exists":      view.Exists,
		"isActive":    view.IsActive,
		"status":      view.Status,
		"schedules":   view.Schedules,
		"serverTime":  now,
		"currentTime": currentTime(now),
	})
}

// GetScheduleCompat is the single-schedule era read, keeping the fields older
// dashboard builds expect. GET /api/pump/schedules/:deviceId
func (h *Handler) GetScheduleCompat(c *gin.Context) {
	deviceID := c.Param("deviceId")
	now := time.Now()
	view := h.store.Project(deviceID, now)

	body := gin.H{
		"success":      true,
		"deviceId":     deviceID,
		"exists":       view.Exists,
		"hasSchedules": len(view.Schedules) > 0,
		"isActive":     view.IsActive,
		"status":       view.Status,
		"schedules":    view.Schedules,
		"serverTime":   now,
		"currentTime":  currentTime(now),
	}
	if view.NextRunSeconds != nil {
		body["nextRunSeconds"] = *view.NextRunSeconds
	}
	c.JSON(http.StatusOK, body)
}

// DeleteSchedule handles the delete family behind one route, selected by the
// action query parameter. DELETE /api/pump/schedule/:deviceId
//
//	disable       — keep schedules, clear the master flag, stop running pumps
//	delete_single — remove one schedule by its generated id
//	delete        — remove everything and send a safety OFF (the default)
func (h *Handler) DeleteSchedule(c *gin.Context) {
	deviceID := c.Param("deviceId")

	switch action := c.DefaultQuery("action", "delete"); action {
	case "disable":
		found := h.store.DisableAll(deviceID)
		message := "schedules disabled"
		if !found {
			message = "no schedules to disable"
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "found": found, "message": message})

	case "delete_single":
		id := c.Query("scheduleId")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "scheduleId is required for delete_single"})
			return
		}
		deleted, deviceRemoved := h.store.DeleteSingle(deviceID, id)
		if deviceRemoved {
			h.monitors.Stop(deviceID)
		}
		message := "schedule deleted"
		if !deleted {
			message = "schedule not found"
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted, "message": message})

	case "delete":
		existed := h.store.DeleteAll(deviceID)
		h.monitors.Stop(deviceID)
		message := "all schedules deleted"
		if !existed {
			message = "no schedules to delete"
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "found": existed, "message": message})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unknown action: " + action})
	}
}

// DeleteScheduleCompat mirrors DeleteSchedule on the compatibility route,
// where only delete_all is defined. DELETE /api/pump/schedules/:deviceId
func (h *Handler) DeleteScheduleCompat(c *gin.Context) {
	deviceID := c.Param("deviceId")

	action := c.DefaultQuery("action", "delete_all")
	if action != "delete_all" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unknown action: " + action})
		return
	}

	existed := h.store.DeleteAll(deviceID)
	h.monitors.Stop(deviceID)
	message := "all schedules deleted"
	if !existed {
		message = "no schedules to delete"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "found": existed, "message": message})
}

// ListSchedules is the admin view across all devices.
// GET /api/pump/schedules
func (h *Handler) ListSchedules(c *gin.Context) {
	devices := h.store.AllDevices()
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"schedules":    devices,
		"monitors":     h.monitors.Devices(),
		"totalDevices": len(devices),
		"serverTime":   time.Now(),
	})
}

// SchedulerStatus summarizes the scheduler across all devices.
// GET /api/pump/scheduler/status
func (h *Handler) SchedulerStatus(c *gin.Context) {
	now := time.Now()

	summary := make(map[string]gin.H)
	for deviceID, record := range h.store.AllDevices() {
		active, running := 0, 0
		schedules := make([]gin.H, 0, len(record.Schedules))
		for _, schedule := range record.Schedules {
			if schedule.IsActive {
				active++
			}
			if schedule.IsRunning {
				running++
			}
			schedules = append(schedules, gin.H{
				"name":             schedule.Name,
				"isActive":         schedule.IsActive,
				"isRunning":        schedule.IsRunning,
				"isWithinSchedule": scheduler.WithinWindow(schedule.Start, schedule.End, scheduler.SecondsOfDay(now)),
				"startTime":        schedule.Start,
				"endTime":          schedule.End,
			})
		}
		summary[deviceID] = gin.H{
			"isActive":         record.IsActive,
			"scheduleCount":    len(record.Schedules),
			"activeSchedules":  active,
			"runningSchedules": running,
			"schedules":        schedules,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"schedulerActive": h.monitors.Active(),
		"scheduleStatus":  summary,
		"currentTime":     currentTime(now),
		"serverTime":      now,
	})
}
