package models

import "time"

// NotificationFrequency is the cadence a subscriber chose for updates.
type NotificationFrequency string

const (
	FrequencyInstant NotificationFrequency = "instant"
	FrequencyDaily   NotificationFrequency = "daily"
	FrequencyWeekly  NotificationFrequency = "weekly"
)

// Valid reports whether the frequency is a known value.
func (f NotificationFrequency) Valid() bool {
	switch f {
	case FrequencyInstant, FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

// ReportSubscription links a user to a report for update notifications.
// Unique per (user, report) pair.
type ReportSubscription struct {
	ID                    string                `db:"id" json:"id"`
	UserID                string                `db:"user_id" json:"user_id"`
	ReportID              string                `db:"report_id" json:"report_id"`
	NotificationFrequency NotificationFrequency `db:"notification_frequency" json:"notification_frequency"`
	CreatedAt             time.Time             `db:"created_at" json:"created_at"`
}
