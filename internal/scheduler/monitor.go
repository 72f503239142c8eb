package scheduler

import (
	"log"
	"sync"
	"time"
)

// MonitorSet runs one periodic evaluator per device. Starting a monitor for a
// device that already has one cancels the old evaluator first, so a device
// never has two running concurrently.
type MonitorSet struct {
	store *Store
	tick  time.Duration

	mu    sync.Mutex
	stops map[string]chan struct{}
}

// NewMonitorSet creates a monitor registry evaluating against the given
// store. tick is normally one second; tests use shorter periods.
func NewMonitorSet(store *Store, tick time.Duration) *MonitorSet {
	if tick <= 0 {
		tick = time.Second
	}
	return &MonitorSet{
		store: store,
		tick:  tick,
		stops: make(map[string]chan struct{}),
	}
}

// Start begins (or restarts) monitoring for a device.
func (m *MonitorSet) Start(deviceID string) {
	m.mu.Lock()
	if old, ok := m.stops[deviceID]; ok {
		close(old)
		log.Printf("[scheduler] restarting monitor for %s", deviceID)
	} else {
		log.Printf("[scheduler] starting monitor for %s", deviceID)
	}
	stop := make(chan struct{})
	m.stops[deviceID] = stop
	m.mu.Unlock()

	go m.run(deviceID, stop)
}

func (m *MonitorSet) run(deviceID string, stop <-chan struct{}) {
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			for _, cmd := range m.store.Evaluate(deviceID, now) {
				log.Printf("[scheduler][%s][%s] dispatched %s (mode: %s)",
					deviceID, cmd.ScheduleName, cmd.Command, cmd.Mode)
			}
		}
	}
}

// Stop cancels the device's monitor. Returns whether one was running.
func (m *MonitorSet) Stop(deviceID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	stop, ok := m.stops[deviceID]
	if !ok {
		return false
	}
	close(stop)
	delete(m.stops, deviceID)
	return true
}

// Devices lists the devices currently monitored.
func (m *MonitorSet) Devices() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.stops))
	for deviceID := range m.stops {
		out = append(out, deviceID)
	}
	return out
}

// Active reports whether any monitor is running.
func (m *MonitorSet) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stops) > 0
}

// Shutdown drains every running schedule to OFF, then cancels all monitors.
func (m *MonitorSet) Shutdown() {
	log.Println("[scheduler] stopping all monitors")
	m.store.DrainRunning()

	m.mu.Lock()
	defer m.mu.Unlock()
	for deviceID, stop := range m.stops {
		close(stop)
		delete(m.stops, deviceID)
	}
}
