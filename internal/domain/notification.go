package domain

import "time"

// NotificationTypeNewMatch is the only notification type this subsystem
// emits. The dedup contract keys on it.
const NotificationTypeNewMatch = "new_match"

// Notification is the durable record of a match delivered to a user.
// Created unread by the dispatcher; the read transition happens through the
// notification API on user action and is never performed by the matcher.
type Notification struct {
	ID        string    `db:"notification_id" json:"notificationId"`
	UserID    int64     `db:"user_id" json:"userId"`
	Message   string    `db:"message" json:"message"`
	ListingID int64     `db:"listing_id" json:"listingId"`
	IsRead    bool      `db:"is_read" json:"isRead"`
	Type      string    `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// EmailPreference is a user's notification-email setting.
type EmailPreference struct {
	Enabled bool   `db:"notify_by_email"`
	Email   string `db:"email"`
}
