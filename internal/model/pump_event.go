package model

import "time"

// PumpEvent is the durable log of every pump command the server dispatched.
// The scheduler never reads this back; it exists for dashboards and audits.
type PumpEvent struct {
	ID           int64     `gorm:"autoIncrement;primaryKey"`
	DeviceID     string    `gorm:"size:128;index;not null"`
	Command      string    `gorm:"size:8;not null"`
	Mode         string    `gorm:"size:16;not null"`
	ScheduleName string    `gorm:"size:128"`
	Source       string    `gorm:"size:32"`
	CreatedAt    time.Time `gorm:"index;not null"`
}
