package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectNoSchedule(t *testing.T) {
	s := NewStore(nil)

	view := s.Project("pump-1", time.Now())
	assert.False(t, view.Exists)
	assert.Equal(t, StatusNoSchedule, view.Status)
	assert.Empty(t, view.Schedules)
}

func TestProjectPerScheduleStatuses(t *testing.T) {
	now := time.Date(2026, 8, 28, 6, 30, 0, 0, time.UTC)

	t.Run("within_schedule before first tick", func(t *testing.T) {
		s := NewStore(nil)
		_, err := s.SetSchedules("pump-1", []ScheduleInput{morningInput("Morning")}, "test")
		require.NoError(t, err)

		view := s.Project("pump-1", now)
		require.Len(t, view.Schedules, 1)
		assert.Equal(t, StatusWithinSchedule, view.Schedules[0].Status)
		assert.True(t, view.Schedules[0].IsWithinSchedule)
		assert.Equal(t, StatusWithinSchedule, view.Status)
	})

	t.Run("running after the monitor fired", func(t *testing.T) {
		s := NewStore(nil)
		_, err := s.SetSchedules("pump-1", []ScheduleInput{morningInput("Morning")}, "test")
		require.NoError(t, err)
		require.Len(t, s.Evaluate("pump-1", now), 1)

		view := s.Project("pump-1", now)
		assert.Equal(t, StatusRunning, view.Schedules[0].Status)
		assert.Equal(t, StatusRunning, view.Status)
		assert.Nil(t, view.Schedules[0].NextRunSeconds)
	})

	t.Run("waiting outside the window", func(t *testing.T) {
		s := NewStore(nil)
		_, err := s.SetSchedules("pump-1", []ScheduleInput{morningInput("Morning")}, "test")
		require.NoError(t, err)

		early := time.Date(2026, 8, 28, 5, 0, 0, 0, time.UTC)
		view := s.Project("pump-1", early)
		assert.Equal(t, StatusWaiting, view.Schedules[0].Status)
		require.NotNil(t, view.Schedules[0].NextRunSeconds)
		assert.Equal(t, 3600, *view.Schedules[0].NextRunSeconds)
		assert.Equal(t, StatusWaiting, view.Status)
		require.NotNil(t, view.NextRunSeconds)
		assert.Equal(t, 3600, *view.NextRunSeconds)
	})

	t.Run("inactive schedule", func(t *testing.T) {
		s := NewStore(nil)
		_, err := s.SetSchedules("pump-1", []ScheduleInput{{
			Name: "Disabled", Start: todPtr(6, 0, 0), End: todPtr(7, 0, 0), IsActive: boolPtr(false),
		}}, "test")
		require.NoError(t, err)

		view := s.Project("pump-1", now)
		assert.Equal(t, StatusInactive, view.Schedules[0].Status)
		assert.Nil(t, view.Schedules[0].NextRunSeconds)
		assert.Equal(t, StatusInactive, view.Status)
	})
}

func TestProjectNextRunWrapsToTomorrow(t *testing.T) {
	s := NewStore(nil)
	_, err := s.SetSchedules("pump-1", []ScheduleInput{{
		Name: "Morning", Start: todPtr(6, 0, 0), End: todPtr(6, 30, 0),
	}}, "test")
	require.NoError(t, err)

	// The window already closed today, so the next run is tomorrow 06:00.
	evening := time.Date(2026, 8, 28, 19, 0, 0, 0, time.UTC)
	view := s.Project("pump-1", evening)
	require.NotNil(t, view.NextRunSeconds)
	assert.Equal(t, (86400-19*3600)+6*3600, *view.NextRunSeconds)
}

func TestProjectAggregatePicksMinimumNextRun(t *testing.T) {
	s := NewStore(nil)
	_, err := s.SetSchedules("pump-1", []ScheduleInput{
		{Name: "Morning", Start: todPtr(6, 0, 0), End: todPtr(6, 30, 0)},
		{Name: "Evening", Start: todPtr(17, 0, 0), End: todPtr(17, 30, 0)},
	}, "test")
	require.NoError(t, err)

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	view := s.Project("pump-1", now)
	assert.Equal(t, StatusWaiting, view.Status)
	require.NotNil(t, view.NextRunSeconds)
	assert.Equal(t, 5*3600, *view.NextRunSeconds, "evening run is the nearer one")
}

func TestProjectDoesNotMutate(t *testing.T) {
	s := NewStore(nil)
	_, err := s.SetSchedules("pump-1", []ScheduleInput{morningInput("Morning")}, "test")
	require.NoError(t, err)

	now := time.Date(2026, 8, 28, 6, 30, 0, 0, time.UTC)
	_ = s.Project("pump-1", now)

	record, _ := s.GetDeviceSchedule("pump-1")
	assert.False(t, record.Schedules[0].IsRunning, "projection must not trigger transitions")
	_, pending := s.Consume("pump-1")
	assert.False(t, pending, "projection must not dispatch commands")
}
