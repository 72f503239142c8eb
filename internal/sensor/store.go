package sensor

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Store keeps the latest reading and a bounded history per sensor type, plus
// device freshness tracking. A sensor is considered online while its last
// report is younger than the configured timeout; freshness entries simply
// expire out of the TTL cache.
type Store struct {
	mu         sync.RWMutex
	limit      int
	history    map[Type][]Reading
	latest     map[Type]Reading
	lastUpdate map[Type]time.Time
	deviceID   string
	lastSeen   time.Time

	freshness *cache.Cache
}

// DeviceStatus is a snapshot of device connectivity.
type DeviceStatus struct {
	IsOnline   bool                `json:"isOnline"`
	LastSeen   *time.Time          `json:"lastSeen"`
	DeviceID   string              `json:"deviceId"`
	LastUpdate map[Type]*time.Time `json:"lastSensorUpdate"`
}

// SensorInfo describes one sensor feed's freshness.
type SensorInfo struct {
	Online     bool       `json:"online"`
	LastUpdate *time.Time `json:"lastUpdate"`
	AgeSeconds *int       `json:"ageSeconds"`
}

// NewStore creates a sensor store keeping up to historyLimit readings per
// type, with the given online timeout.
func NewStore(historyLimit int, timeout time.Duration) *Store {
	if historyLimit <= 0 {
		historyLimit = 100
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Store{
		limit:      historyLimit,
		history:    make(map[Type][]Reading),
		latest:     make(map[Type]Reading),
		lastUpdate: make(map[Type]time.Time),
		freshness:  cache.New(timeout, 2*timeout),
	}
}

// Normalize validates a payload for the given type: numeric fields that are
// missing or non-finite fall back to their defaults, the pump payload gets a
// boolean status and a mode. Unknown fields pass through untouched.
func Normalize(typ Type, payload Reading) Reading {
	normalized := make(Reading, len(payload)+4)
	for k, v := range payload {
		normalized[k] = v
	}

	for _, field := range numericFields[typ] {
		v, ok := normalized[field].(float64)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			normalized[field] = numericDefaults[field]
		}
	}

	if typ == TypePump {
		if _, ok := normalized["status"].(bool); !ok {
			normalized["status"] = false
		}
		if mode, ok := normalized["mode"].(string); !ok || mode == "" {
			normalized["mode"] = "manual"
		}
	}
	return normalized
}

// Record normalizes and stores a reading, trims history to the configured
// bound and refreshes the device's online state. The stored reading, stamped
// with timestamps and identity, is returned.
func (s *Store) Record(typ Type, payload Reading) Reading {
	now := time.Now()
	reading := Normalize(typ, payload)

	deviceID, _ := reading["deviceId"].(string)
	if deviceID == "" {
		deviceID = "ESP32_" + strings.ToUpper(string(typ))
		reading["deviceId"] = deviceID
	}
	reading["sensorType"] = string(typ)
	reading["timestamp"] = now.Format(time.RFC3339)
	reading["unix_timestamp"] = now.UnixMilli()

	s.mu.Lock()
	s.deviceID = deviceID
	s.lastSeen = now
	s.lastUpdate[typ] = now
	s.latest[typ] = reading

	entries := append(s.history[typ], reading)
	if len(entries) > s.limit {
		entries = entries[len(entries)-s.limit:]
	}
	s.history[typ] = entries
	s.mu.Unlock()

	s.freshness.Set(string(typ), now, cache.DefaultExpiration)
	return reading
}

// Latest returns the newest reading for the type.
func (s *Store) Latest(typ Type) (Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reading, ok := s.latest[typ]
	return reading, ok
}

// History returns the bounded reading history for the type, oldest first.
func (s *Store) History(typ Type) []Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Reading, len(s.history[typ]))
	copy(out, s.history[typ])
	return out
}

// Online reports whether the sensor reported within the timeout.
func (s *Store) Online(typ Type) bool {
	_, fresh := s.freshness.Get(string(typ))
	return fresh
}

// Reset clears one sensor type's history and freshness.
func (s *Store) Reset(typ Type) {
	s.mu.Lock()
	delete(s.history, typ)
	delete(s.latest, typ)
	delete(s.lastUpdate, typ)
	s.mu.Unlock()
	s.freshness.Delete(string(typ))
}

// ResetAll clears every sensor type and the device's presence.
func (s *Store) ResetAll() {
	s.mu.Lock()
	s.history = make(map[Type][]Reading)
	s.latest = make(map[Type]Reading)
	s.lastUpdate = make(map[Type]time.Time)
	s.lastSeen = time.Time{}
	s.mu.Unlock()
	s.freshness.Flush()
}

// Status snapshots device connectivity: online while any sensor is fresh.
func (s *Store) Status() DeviceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := DeviceStatus{
		DeviceID:   s.deviceID,
		LastUpdate: make(map[Type]*time.Time, len(s.lastUpdate)),
	}
	if !s.lastSeen.IsZero() {
		seen := s.lastSeen
		status.LastSeen = &seen
	}
	for _, typ := range Types() {
		if at, ok := s.lastUpdate[typ]; ok {
			t := at
			status.LastUpdate[typ] = &t
		} else {
			status.LastUpdate[typ] = nil
		}
		if _, fresh := s.freshness.Get(string(typ)); fresh {
			status.IsOnline = true
		}
	}
	return status
}

// Sensors reports per-type freshness, with ages relative to now.
func (s *Store) Sensors(now time.Time) map[Type]SensorInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[Type]SensorInfo, len(Types()))
	for _, typ := range Types() {
		info := SensorInfo{}
		if at, ok := s.lastUpdate[typ]; ok {
			t := at
			info.LastUpdate = &t
			age := int(now.Sub(at).Seconds())
			info.AgeSeconds = &age
		}
		_, info.Online = s.freshness.Get(string(typ))
		out[typ] = info
	}
	return out
}

// HistoryCount returns the stored reading count for the type.
func (s *Store) HistoryCount(typ Type) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history[typ])
}
