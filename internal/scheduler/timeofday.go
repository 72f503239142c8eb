package scheduler

import "time"

// TimeOfDay is a wall-clock instant within a day.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// TotalSeconds canonicalizes the time to seconds since midnight, in [0, 86399].
func (t TimeOfDay) TotalSeconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// Valid reports whether every field is inside its legal range.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 &&
		t.Minute >= 0 && t.Minute <= 59 &&
		t.Second >= 0 && t.Second <= 59
}

// SecondsOfDay converts a timestamp to seconds since local midnight.
func SecondsOfDay(now time.Time) int {
	return now.Hour()*3600 + now.Minute()*60 + now.Second()
}

// WithinWindow reports whether currentSeconds falls inside the [start, end]
// window, both bounds inclusive. Windows where start > end wrap across
// midnight (e.g. 22:00:00–02:00:00). A window with start == end matches only
// that exact second.
func WithinWindow(start, end TimeOfDay, currentSeconds int) bool {
	startSeconds := start.TotalSeconds()
	endSeconds := end.TotalSeconds()

	if startSeconds <= endSeconds {
		return currentSeconds >= startSeconds && currentSeconds <= endSeconds
	}
	return currentSeconds >= startSeconds || currentSeconds <= endSeconds
}
