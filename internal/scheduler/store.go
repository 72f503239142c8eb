package scheduler

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

// Command sources.
const (
	SourceSchedule  = "server_schedule"
	SourceDashboard = "web_dashboard"
)

// DispatchFunc observes every command the store dispatches. It runs outside
// the store lock and must not call back into the store.
type DispatchFunc func(deviceID string, cmd Command)

// Store owns all scheduler state: device schedule sets, the per-device
// command mailbox and the last known pump status. Every operation is
// synchronous and guarded by one mutex, so tick evaluation and API mutations
// never interleave mid-operation.
type Store struct {
	mu       sync.Mutex
	devices  map[string]*DeviceSchedule
	commands map[string]*Command
	statuses map[string]*PumpStatus

	onDispatch DispatchFunc
}

// NewStore creates an empty scheduler store. onDispatch may be nil.
func NewStore(onDispatch DispatchFunc) *Store {
	return &Store{
		devices:    make(map[string]*DeviceSchedule),
		commands:   make(map[string]*Command),
		statuses:   make(map[string]*PumpStatus),
		onDispatch: onDispatch,
	}
}

const scheduleIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func generateScheduleID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = scheduleIDAlphabet[rand.Intn(len(scheduleIDAlphabet))]
	}
	return fmt.Sprintf("sch_%d_%s", time.Now().UnixMilli(), suffix)
}

func scheduleLabel(name string, position int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("schedule #%d", position)
}

// SetSchedules validates and replaces the device's entire schedule list. The
// device record is (re)activated and its update timestamp reset. On a
// ValidationError the store is left untouched.
func (s *Store) SetSchedules(deviceID string, inputs []ScheduleInput, createdBy string) (DeviceSchedule, error) {
	schedules := make([]*Schedule, 0, len(inputs))
	for i, in := range inputs {
		label := scheduleLabel(in.Name, i+1)
		if in.Name == "" {
			return DeviceSchedule{}, &ValidationError{Schedule: label, Reason: "name is required"}
		}
		if err := validateWindow(label, in.Start, in.End); err != nil {
			return DeviceSchedule{}, err
		}

		id := in.ID
		if id == "" {
			id = generateScheduleID()
		}
		isActive := true
		if in.IsActive != nil {
			isActive = *in.IsActive
		}
		schedules = append(schedules, &Schedule{
			ID:         id,
			ScheduleID: in.ScheduleID,
			Name:       in.Name,
			Start:      *in.Start,
			End:        *in.End,
			IsActive:   isActive,
			IsRunning:  false,
		})
	}

	record := &DeviceSchedule{
		Schedules:   schedules,
		IsActive:    true,
		LastUpdated: time.Now(),
		CreatedBy:   createdBy,
	}

	s.mu.Lock()
	s.devices[deviceID] = record
	snapshot := copyDeviceSchedule(record)
	s.mu.Unlock()
	return snapshot, nil
}

// UpsertSingleSchedule is the compatibility path keyed by the small-integer
// scheduleId. An existing schedule with that key is replaced outright (its
// runtime state is not carried over); otherwise the schedule is appended.
func (s *Store) UpsertSingleSchedule(deviceID string, in SingleScheduleInput, createdBy string) (Schedule, error) {
	scheduleID := in.ScheduleID
	if scheduleID <= 0 {
		scheduleID = 1
	}

	name := in.Name
	if name == "" {
		if scheduleID == 1 {
			name = "Jadwal Pagi"
		} else {
			name = "Jadwal Sore"
		}
	}

	if err := validateWindow(name, in.Start, in.End); err != nil {
		return Schedule{}, err
	}

	isActive := true
	if in.Enabled != nil {
		isActive = *in.Enabled
	}
	schedule := &Schedule{
		ID:         generateScheduleID(),
		ScheduleID: scheduleID,
		Name:       name,
		Start:      *in.Start,
		End:        *in.End,
		IsActive:   isActive,
		IsRunning:  false,
	}

	s.mu.Lock()
	record, ok := s.devices[deviceID]
	if !ok {
		record = &DeviceSchedule{IsActive: true, CreatedBy: createdBy}
		s.devices[deviceID] = record
	}

	replaced := false
	for i, existing := range record.Schedules {
		if existing.ScheduleID == scheduleID {
			record.Schedules[i] = schedule
			replaced = true
			break
		}
	}
	if !replaced {
		record.Schedules = append(record.Schedules, schedule)
	}

	record.IsActive = true
	record.LastUpdated = time.Now()
	snapshot := *schedule
	s.mu.Unlock()
	return snapshot, nil
}

// GetDeviceSchedule returns a snapshot of the device's schedule set.
func (s *Store) GetDeviceSchedule(deviceID string) (DeviceSchedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.devices[deviceID]
	if !ok {
		return DeviceSchedule{}, false
	}
	return copyDeviceSchedule(record), true
}

// AllDevices returns a snapshot of every device's schedule set.
func (s *Store) AllDevices() map[string]DeviceSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]DeviceSchedule, len(s.devices))
	for id, record := range s.devices {
		out[id] = copyDeviceSchedule(record)
	}
	return out
}

// DisableAll clears the device's master active flag. Any schedule currently
// running gets an OFF command and its running flag cleared. Returns false
// when the device has no schedules (a no-op, not an error).
func (s *Store) DisableAll(deviceID string) bool {
	s.mu.Lock()
	record, ok := s.devices[deviceID]
	if !ok {
		s.mu.Unlock()
		return false
	}

	record.IsActive = false
	var fired []Command
	for _, schedule := range record.Schedules {
		if schedule.IsRunning {
			fired = append(fired, s.dispatchLocked(deviceID, false, ModeManual, schedule.Name, SourceSchedule, time.Now()))
			schedule.IsRunning = false
		}
	}
	s.mu.Unlock()

	s.fire(deviceID, fired)
	return true
}

// DeleteSingle removes the schedule with the given generated id. When the
// device's list becomes empty the whole record is removed and deviceRemoved
// is true, telling the caller to stop the device's monitor.
func (s *Store) DeleteSingle(deviceID, id string) (deleted, deviceRemoved bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.devices[deviceID]
	if !ok {
		return false, false
	}

	kept := record.Schedules[:0]
	for _, schedule := range record.Schedules {
		if schedule.ID == id {
			deleted = true
			continue
		}
		kept = append(kept, schedule)
	}
	record.Schedules = kept

	if len(record.Schedules) == 0 {
		delete(s.devices, deviceID)
		deviceRemoved = true
	}
	return deleted, deviceRemoved
}

// DeleteAll removes the device's schedule record outright and dispatches an
// unconditional manual OFF as a safety shutoff, whether or not anything was
// running. Returns whether a record existed.
func (s *Store) DeleteAll(deviceID string) bool {
	s.mu.Lock()
	_, existed := s.devices[deviceID]
	delete(s.devices, deviceID)
	cmd := s.dispatchLocked(deviceID, false, ModeManual, "schedule_clear", SourceSchedule, time.Now())
	s.mu.Unlock()

	s.fire(deviceID, []Command{cmd})
	return existed
}

// Evaluate runs one scheduler tick for the device: every active schedule is
// checked against the current time-of-day and commands are dispatched on
// rising and falling edges only. Steady state never re-sends. Returns the
// commands dispatched this tick.
func (s *Store) Evaluate(deviceID string, now time.Time) []Command {
	currentSeconds := SecondsOfDay(now)

	s.mu.Lock()
	record, ok := s.devices[deviceID]
	if !ok || !record.IsActive {
		s.mu.Unlock()
		return nil
	}

	var fired []Command
	for _, schedule := range record.Schedules {
		if !schedule.IsActive {
			// Left untouched even if previously running; only disable and
			// delete operations clear the running flag explicitly.
			continue
		}

		within := WithinWindow(schedule.Start, schedule.End, currentSeconds)
		switch {
		case within && !schedule.IsRunning:
			fired = append(fired, s.dispatchLocked(deviceID, true, ModeAuto, schedule.Name, SourceSchedule, now))
			schedule.IsRunning = true
			trigger := now
			schedule.LastTrigger = &trigger
		case !within && schedule.IsRunning:
			fired = append(fired, s.dispatchLocked(deviceID, false, ModeAuto, schedule.Name, SourceSchedule, now))
			schedule.IsRunning = false
		}
	}
	s.mu.Unlock()

	s.fire(deviceID, fired)
	return fired
}

// DrainRunning sends a manual OFF for every schedule still running, across
// all devices, and clears their running flags. Called on shutdown so no pump
// is left logically on.
func (s *Store) DrainRunning() {
	type pending struct {
		deviceID string
		cmds     []Command
	}

	s.mu.Lock()
	var drained []pending
	for deviceID, record := range s.devices {
		var cmds []Command
		for _, schedule := range record.Schedules {
			if schedule.IsRunning {
				log.Printf("[scheduler] draining %s (%s) to OFF for shutdown", deviceID, schedule.Name)
				cmds = append(cmds, s.dispatchLocked(deviceID, false, ModeManual, schedule.Name, SourceSchedule, time.Now()))
				schedule.IsRunning = false
			}
		}
		if len(cmds) > 0 {
			drained = append(drained, pending{deviceID: deviceID, cmds: cmds})
		}
	}
	s.mu.Unlock()

	for _, p := range drained {
		s.fire(p.deviceID, p.cmds)
	}
}

// Dispatch overwrites the device's mailbox with a new command and updates the
// pump runtime status. A pending unconsumed command is silently discarded.
func (s *Store) Dispatch(deviceID string, turnOn bool, mode, scheduleName, source string) Command {
	s.mu.Lock()
	cmd := s.dispatchLocked(deviceID, turnOn, mode, scheduleName, source, time.Now())
	s.mu.Unlock()

	s.fire(deviceID, []Command{cmd})
	return cmd
}

// Consume atomically removes and returns the device's pending command.
// Retrieval is one-shot: a second call with no intervening dispatch reports
// nothing pending. Intended for a single polling consumer per device;
// concurrent pollers race for the one command.
func (s *Store) Consume(deviceID string) (Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd, ok := s.commands[deviceID]
	if !ok {
		return Command{}, false
	}
	delete(s.commands, deviceID)
	return *cmd, true
}

// PumpStatus returns the last known pump state for the device.
func (s *Store) PumpStatus(deviceID string) (PumpStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[deviceID]
	if !ok {
		return PumpStatus{}, false
	}
	return *status, true
}

// DeviceCount returns the number of devices with schedule records.
func (s *Store) DeviceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.devices)
}

func (s *Store) dispatchLocked(deviceID string, turnOn bool, mode, scheduleName, source string, now time.Time) Command {
	verb := CommandOff
	if turnOn {
		verb = CommandOn
	}
	cmd := Command{
		Command:      verb,
		Mode:         mode,
		ScheduleName: scheduleName,
		Timestamp:    now,
		Source:       source,
	}
	s.commands[deviceID] = &cmd
	s.statuses[deviceID] = &PumpStatus{
		Status:       turnOn,
		Mode:         mode,
		ScheduleName: scheduleName,
		LastUpdate:   now,
		Source:       source,
	}
	return cmd
}

func (s *Store) fire(deviceID string, cmds []Command) {
	if s.onDispatch == nil {
		return
	}
	for _, cmd := range cmds {
		s.onDispatch(deviceID, cmd)
	}
}

func copyDeviceSchedule(record *DeviceSchedule) DeviceSchedule {
	out := DeviceSchedule{
		Schedules:   make([]*Schedule, len(record.Schedules)),
		IsActive:    record.IsActive,
		LastUpdated: record.LastUpdated,
		CreatedBy:   record.CreatedBy,
	}
	for i, schedule := range record.Schedules {
		copied := *schedule
		if schedule.LastTrigger != nil {
			trigger := *schedule.LastTrigger
			copied.LastTrigger = &trigger
		}
		out.Schedules[i] = &copied
	}
	return out
}
