package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey;size:512"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Devices []SubscriptionDevice `gorm:"foreignKey:Endpoint;references:Endpoint;constraint:OnDelete:CASCADE"`
}

// SubscriptionDevice links a subscription to one watched pump device.
// Device identifiers are opaque strings supplied by the field devices, so
// there is no device table to reference.
type SubscriptionDevice struct {
	Endpoint string `gorm:"primaryKey;size:512"`
	DeviceID string `gorm:"primaryKey;size:128;index"`
}
