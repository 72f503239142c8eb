package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartfarm-backend/internal/sensor"
)

func parseSensorType(c *gin.Context) (sensor.Type, bool) {
	typ, ok := sensor.ParseType(c.Param("sensorType"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       "unknown sensor type: " + c.Param("sensorType"),
			"valid_types": sensor.Types(),
		})
	}
	return typ, ok
}

// IngestData accepts one sensor reading from the field device.
// POST /api/data/:sensorType
func IngestData(sensors *sensor.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		typ, ok := parseSensorType(c)
		if !ok {
			return
		}

		var payload sensor.Reading
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}

		stored := sensors.Record(typ, payload)
		c.JSON(http.StatusOK, gin.H{
			"status":        "success",
			"message":       "data received",
			"sensor_type":   typ,
			"device_status": "online",
			"timestamp":     stored["timestamp"],
		})
	}
}

// GetLatest returns the newest reading for a sensor type.
// GET /api/latest/:sensorType
func GetLatest(sensors *sensor.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		typ, ok := parseSensorType(c)
		if !ok {
			return
		}

		deviceStatus := "offline"
		if sensors.Online(typ) {
			deviceStatus = "online"
		}

		reading, found := sensors.Latest(typ)
		if !found {
			c.JSON(http.StatusOK, gin.H{
				"sensor_type":   typ,
				"data":          nil,
				"device_status": deviceStatus,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"sensor_type":   typ,
			"data":          reading,
			"device_status": deviceStatus,
		})
	}
}

// GetHistory returns the bounded history for a sensor type, oldest first.
// GET /api/all/:sensorType
func GetHistory(sensors *sensor.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		typ, ok := parseSensorType(c)
		if !ok {
			return
		}

		deviceStatus := "offline"
		if sensors.Online(typ) {
			deviceStatus = "online"
		}

		history := sensors.History(typ)
		c.JSON(http.StatusOK, gin.H{
			"sensor_type":   typ,
			"data":          history,
			"count":         len(history),
			"device_status": deviceStatus,
		})
	}
}

// ResetData clears one sensor type's stored readings.
// DELETE /api/reset/:sensorType
func ResetData(sensors *sensor.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		typ, ok := parseSensorType(c)
		if !ok {
			return
		}
		sensors.Reset(typ)
		c.JSON(http.StatusOK, gin.H{
			"status":    "success",
			"message":   "data cleared",
			"timestamp": time.Now(),
		})
	}
}

// ResetAllData clears every sensor type.
// DELETE /api/reset
func ResetAllData(sensors *sensor.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sensors.ResetAll()
		c.JSON(http.StatusOK, gin.H{
			"status":    "success",
			"message":   "all data cleared",
			"timestamp": time.Now(),
		})
	}
}
