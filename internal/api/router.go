package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"smartfarm-backend/internal/mw"
	"smartfarm-backend/internal/scheduler"
	"smartfarm-backend/internal/sensor"
)

// RouterConfig carries the tunables the router needs.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(store *scheduler.Store, monitors *scheduler.MonitorSet, sensors *sensor.Store, db *gorm.DB, webpushOptions *webpush.Options, cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(store, monitors, sensors, db, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Short-lived cache for dashboard reads only. Device routes (ingest and
	// command polling) stay uncached.
	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Device: sensor reports and the 1 Hz command poll
		api.POST("/data/:sensorType", IngestData(sensors))
		api.GET("/pump/command/:deviceId", handler.PollCommand)

		// Dashboard: sensor reads
		api.GET("/latest/:sensorType", caching, GetLatest(sensors))
		api.GET("/all/:sensorType", caching, GetHistory(sensors))
		api.DELETE("/reset/:sensorType", ResetData(sensors))
		api.DELETE("/reset", ResetAllData(sensors))

		// Dashboard: schedule management
		api.POST("/pump/schedule", handler.SetSchedules)
		api.GET("/pump/schedule/:deviceId", handler.GetSchedule)
		api.DELETE("/pump/schedule/:deviceId", handler.DeleteSchedule)
		api.POST("/pump/schedules", handler.UpsertSchedule)
		api.GET("/pump/schedules/:deviceId", handler.GetScheduleCompat)
		api.DELETE("/pump/schedules/:deviceId", handler.DeleteScheduleCompat)
		api.GET("/pump/schedules", handler.ListSchedules)
		api.GET("/pump/scheduler/status", handler.SchedulerStatus)

		// Dashboard: manual pump control and command history
		api.POST("/pump/control", handler.Control)
		api.GET("/pump/status/:deviceId", handler.PumpStatus)
		api.GET("/pump/events/:deviceId", handler.PumpEvents)

		// Monitoring
		api.GET("/status", handler.DeviceStatus)
		api.GET("/status/all", handler.StatusAll)
		api.GET("/device/info", handler.DeviceInfo)
		api.GET("/health", handler.Health)

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.UpdateSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.VapidPublicKey)
	}

	return r
}
