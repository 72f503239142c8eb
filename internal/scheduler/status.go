package scheduler

import "time"

// Projected status values, per schedule and device-aggregate.
const (
	StatusRunning        = "running"
	StatusWithinSchedule = "within_schedule"
	StatusWaiting        = "waiting"
	StatusInactive       = "inactive"
	StatusNoSchedule     = "no_schedule"
)

// ScheduleStatus is the read-only projection of one schedule at an instant.
type ScheduleStatus struct {
	ID               string    `json:"id"`
	ScheduleID       int       `json:"scheduleId,omitempty"`
	Name             string    `json:"name"`
	Start            TimeOfDay `json:"start"`
	End              TimeOfDay `json:"end"`
	IsActive         bool      `json:"isActive"`
	IsRunning        bool      `json:"isRunning"`
	Status           string    `json:"status"`
	IsWithinSchedule bool      `json:"isWithinSchedule"`
	NextRunSeconds   *int      `json:"nextRunSeconds"`
	StartSeconds     int       `json:"startSeconds"`
	EndSeconds       int       `json:"endSeconds"`
}

// StatusView is the device-aggregate projection.
type StatusView struct {
	Exists         bool             `json:"exists"`
	Status         string           `json:"status"`
	NextRunSeconds *int             `json:"nextRunSeconds,omitempty"`
	IsActive       bool             `json:"isActive"`
	Schedules      []ScheduleStatus `json:"schedules"`
}

// nextRunIn computes seconds until the window next opens. A start already
// passed today wraps to tomorrow's occurrence.
func nextRunIn(startSeconds, currentSeconds int) int {
	if startSeconds > currentSeconds {
		return startSeconds - currentSeconds
	}
	return (86400 - currentSeconds) + startSeconds
}

// Project derives the device's status view at the given instant without
// mutating any state.
func (s *Store) Project(deviceID string, now time.Time) StatusView {
	currentSeconds := SecondsOfDay(now)

	record, ok := s.GetDeviceSchedule(deviceID)
	if !ok || len(record.Schedules) == 0 {
		return StatusView{Exists: ok, Status: StatusNoSchedule, Schedules: []ScheduleStatus{}}
	}

	view := StatusView{
		Exists:    true,
		IsActive:  record.IsActive,
		Schedules: make([]ScheduleStatus, 0, len(record.Schedules)),
	}

	anyRunning := false
	anyWithin := false
	var minNextRun *int

	for _, schedule := range record.Schedules {
		within := WithinWindow(schedule.Start, schedule.End, currentSeconds)

		status := StatusInactive
		var nextRun *int
		if schedule.IsActive {
			switch {
			case schedule.IsRunning:
				status = StatusRunning
				anyRunning = true
			case within:
				status = StatusWithinSchedule
				anyWithin = true
			default:
				status = StatusWaiting
			}

			if !schedule.IsRunning {
				n := nextRunIn(schedule.Start.TotalSeconds(), currentSeconds)
				nextRun = &n
				if minNextRun == nil || n < *minNextRun {
					minNextRun = &n
				}
			}
		}

		view.Schedules = append(view.Schedules, ScheduleStatus{
			ID:               schedule.ID,
			ScheduleID:       schedule.ScheduleID,
			Name:             schedule.Name,
			Start:            schedule.Start,
			End:              schedule.End,
			IsActive:         schedule.IsActive,
			IsRunning:        schedule.IsRunning,
			Status:           status,
			IsWithinSchedule: within,
			NextRunSeconds:   nextRun,
			StartSeconds:     schedule.Start.TotalSeconds(),
			EndSeconds:       schedule.End.TotalSeconds(),
		})
	}

	switch {
	case anyRunning:
		view.Status = StatusRunning
	case anyWithin:
		view.Status = StatusWithinSchedule
	case minNextRun != nil:
		view.Status = StatusWaiting
		view.NextRunSeconds = minNextRun
	default:
		view.Status = StatusInactive
	}
	return view
}
