package handler

import (
	"context"
	"log/slog"

	"github.com/beast717/ishtri.site-sub000/internal/domain"
)

// NotificationStore is the slice of storage the notification API uses.
type NotificationStore interface {
	ListNotifications(ctx context.Context, userID int64, onlyUnread bool, limit int) ([]domain.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID int64) (int64, error)
	MarkNotificationRead(ctx context.Context, notificationID string, userID int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error)
}

// CycleTrigger runs one match cycle on demand.
type CycleTrigger interface {
	TriggerNow(ctx context.Context) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger *slog.Logger
	Store  NotificationStore
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	logger *slog.Logger
	store  NotificationStore
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(deps *Dependencies) *NotificationHandler {
	return &NotificationHandler{
		logger: deps.Logger,
		store:  deps.Store,
	}
}
