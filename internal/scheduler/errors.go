package scheduler

import "fmt"

// ValidationError reports a malformed schedule submission. The store is left
// unchanged when one is returned.
type ValidationError struct {
	// Schedule names the offending schedule (its name when present,
	// otherwise a positional label).
	Schedule string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid schedule %q: %s", e.Schedule, e.Reason)
}

func validateWindow(label string, start, end *TimeOfDay) error {
	if start == nil || end == nil {
		return &ValidationError{Schedule: label, Reason: "start and end are required"}
	}
	if !start.Valid() || !end.Valid() {
		return &ValidationError{Schedule: label, Reason: "time fields out of range"}
	}
	return nil
}
