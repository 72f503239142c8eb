package scheduler

import "time"

// Pump command verbs sent to the device.
const (
	CommandOn  = "on"
	CommandOff = "off"
)

// Command modes.
const (
	ModeAuto   = "auto"
	ModeManual = "manual"
)

// Schedule is a single named on/off window for a device's pump.
type Schedule struct {
	// ID is the server-generated identity, immutable once assigned.
	ID string `json:"id"`
	// ScheduleID is the caller-supplied compatibility key used by the
	// single-schedule upsert path (1 = morning, 2 = evening by convention).
	// Zero when the schedule came in through the bulk path without one.
	ScheduleID int       `json:"scheduleId,omitempty"`
	Name       string    `json:"name"`
	Start      TimeOfDay `json:"start"`
	End        TimeOfDay `json:"end"`
	// IsActive is the administrative enable flag.
	IsActive bool `json:"isActive"`
	// IsRunning is derived runtime state: true while the scheduler believes
	// the pump is ON because of this schedule. Only ever true while IsActive
	// is true and the current instant is within the window.
	IsRunning   bool       `json:"isRunning"`
	LastTrigger *time.Time `json:"lastTrigger"`
}

// DeviceSchedule is the full schedule set for one device.
type DeviceSchedule struct {
	Schedules   []*Schedule `json:"schedules"`
	IsActive    bool        `json:"isActive"` // master kill-switch
	LastUpdated time.Time   `json:"lastUpdated"`
	CreatedBy   string      `json:"createdBy"`
}

// Command is the single pending instruction for a device. The per-device slot
// is a mailbox, not a queue: a new dispatch overwrites an unconsumed command.
type Command struct {
	Command      string    `json:"command"`
	Mode         string    `json:"mode"`
	ScheduleName string    `json:"scheduleName"`
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
}

// PumpStatus is the last known pump state for read-only reporting. It is
// updated on every dispatch, whether or not the device ever polled.
type PumpStatus struct {
	Status       bool      `json:"status"`
	Mode         string    `json:"mode"`
	ScheduleName string    `json:"scheduleName"`
	LastUpdate   time.Time `json:"lastUpdate"`
	Source       string    `json:"source"`
}

// ScheduleInput is a schedule as submitted by a caller, before validation.
// Start, End and IsActive are pointers so missing fields can be told apart
// from zero values.
type ScheduleInput struct {
	ID         string     `json:"id"`
	ScheduleID int        `json:"scheduleId"`
	Name       string     `json:"name"`
	Start      *TimeOfDay `json:"start"`
	End        *TimeOfDay `json:"end"`
	IsActive   *bool      `json:"isActive"`
}

// SingleScheduleInput is the payload of the single-schedule compatibility
// path, keyed by ScheduleID rather than the generated ID.
type SingleScheduleInput struct {
	ScheduleID int        `json:"scheduleId"`
	Name       string     `json:"name"`
	Start      *TimeOfDay `json:"start"`
	End        *TimeOfDay `json:"end"`
	Enabled    *bool      `json:"enabled"`
}
