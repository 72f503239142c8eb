package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"smartfarm-backend/internal/scheduler"
	"smartfarm-backend/internal/sensor"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     *scheduler.Store
	monitors  *scheduler.MonitorSet
	sensors   *sensor.Store
	db        *gorm.DB
	webpush   *webpush.Options
	startedAt time.Time
}

// NewHandler creates a new API handler.
func NewHandler(store *scheduler.Store, monitors *scheduler.MonitorSet, sensors *sensor.Store, db *gorm.DB, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:     store,
		monitors:  monitors,
		sensors:   sensors,
		db:        db,
		webpush:   webpushOptions,
		startedAt: time.Now(),
	}
}

func (h *Handler) uptime() float64 {
	return time.Since(h.startedAt).Seconds()
}

// currentTimeBody is the serverTime companion most scheduler responses carry,
// so dashboards can compute countdowns without trusting the browser clock.
type currentTimeBody struct {
	Hour         int `json:"hour"`
	Minute       int `json:"minute"`
	Second       int `json:"second"`
	TotalSeconds int `json:"totalSeconds"`
}

func currentTime(now time.Time) currentTimeBody {
	return currentTimeBody{
		Hour:         now.Hour(),
		Minute:       now.Minute(),
		Second:       now.Second(),
		TotalSeconds: scheduler.SecondsOfDay(now),
	}
}
