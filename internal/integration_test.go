package internal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"smartfarm-backend/internal/api"
	"smartfarm-backend/internal/model"
	"smartfarm-backend/internal/scheduler"
	"smartfarm-backend/internal/sensor"
)

func timeOfDay(t time.Time) scheduler.TimeOfDay {
	return scheduler.TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// TestPumpLifecycle runs the whole loop end to end: a dashboard saves a
// schedule whose window is already open, the monitor turns the pump on, the
// device polls the command away, and deleting the schedules sends the safety
// OFF. Every dispatched command must land in the pump_events log.
func TestPumpLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(
		&model.PushSubscription{},
		&model.SubscriptionDevice{},
		&model.PumpEvent{},
	))

	store := scheduler.NewStore(func(deviceID string, cmd scheduler.Command) {
		event := model.PumpEvent{
			DeviceID:     deviceID,
			Command:      cmd.Command,
			Mode:         cmd.Mode,
			ScheduleName: cmd.ScheduleName,
			Source:       cmd.Source,
			CreatedAt:    cmd.Timestamp,
		}
		assert.NoError(t, testDB.Create(&event).Error)
	})
	monitors := scheduler.NewMonitorSet(store, 10*time.Millisecond)
	defer monitors.Shutdown()
	sensors := sensor.NewStore(100, 30*time.Second)

	router := api.NewRouter(store, monitors, sensors, testDB, nil, api.RouterConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTL:        time.Millisecond,
	})

	post := func(path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		req, _ := http.NewRequest("POST", path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}
	get := func(path string) map[string]any {
		req, _ := http.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body
	}

	// 1. Save a schedule whose window spans the current instant.
	now := time.Now()
	w := post("/api/pump/schedule", gin.H{
		"deviceId": "pump-1",
		"schedules": []gin.H{{
			"name":  "Jadwal Pagi",
			"start": timeOfDay(now.Add(-time.Minute)),
			"end":   timeOfDay(now.Add(time.Minute)),
		}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	// 2. The monitor must dispatch ON within a few ticks; the device polls it.
	var command map[string]any
	require.Eventually(t, func() bool {
		body := get("/api/pump/command/pump-1")
		if body["hasCommand"] != true {
			return false
		}
		command = body["command"].(map[string]any)
		return true
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, scheduler.CommandOn, command["command"])
	assert.Equal(t, scheduler.ModeAuto, command["mode"])
	assert.Equal(t, scheduler.SourceSchedule, command["source"])

	// 3. Steady state: the device's status view shows running.
	body := get("/api/pump/schedule/pump-1")
	assert.Equal(t, scheduler.StatusRunning, body["status"])

	// 4. Delete everything; the safety OFF replaces anything pending.
	req, _ := http.NewRequest("DELETE", "/api/pump/schedule/pump-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body = get("/api/pump/command/pump-1")
	require.Equal(t, true, body["hasCommand"])
	command = body["command"].(map[string]any)
	assert.Equal(t, scheduler.CommandOff, command["command"])
	assert.Equal(t, scheduler.ModeManual, command["mode"])

	// 5. Both the ON and the safety OFF are in the durable event log.
	var events []model.PumpEvent
	require.NoError(t, testDB.Where("device_id = ?", "pump-1").Order("id ASC").Find(&events).Error)
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, scheduler.CommandOn, events[0].Command)
	assert.Equal(t, scheduler.CommandOff, events[len(events)-1].Command)
}

// TestSubscriptionRoundTrip verifies the subscription store through the API.
func TestSubscriptionRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(
		&model.PushSubscription{},
		&model.SubscriptionDevice{},
		&model.PumpEvent{},
	))

	store := scheduler.NewStore(nil)
	monitors := scheduler.NewMonitorSet(store, time.Hour)
	defer monitors.Shutdown()
	sensors := sensor.NewStore(100, 30*time.Second)

	router := api.NewRouter(store, monitors, sensors, testDB, nil, api.RouterConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTL:        time.Millisecond,
	})

	payload := gin.H{
		"endpoint": "https://example.com/push/abc",
		"keys":     gin.H{"p256dh": "key", "auth": "secret"},
		"devices":  []string{"pump-1", "pump-2"},
	}
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	req, _ := http.NewRequest("PUT", "/api/subscriptions", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("GET", "/api/subscriptions?endpoint=https://example.com/push/abc", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.ElementsMatch(t, []any{"pump-1", "pump-2"}, body["devices"])
}
