package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/beast717/ishtri.site-sub000/internal/domain"
)

// pqUniqueViolation is the PostgreSQL error code for unique_violation.
const pqUniqueViolation = "23505"

// NotificationExists reports whether a new-match notification already
// exists for the (user, listing, search) triple. The search is identified
// through the message text, which always embeds the search name.
func (s *Storage) NotificationExists(ctx context.Context, userID, listingID int64, notificationType, searchNameFragment string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM notifications
			WHERE user_id = $1
			  AND listing_id = $2
			  AND type = $3
			  AND message LIKE '%' || $4 || '%'
		)
	`

	err := s.db.GetContext(ctx, &exists, query, userID, listingID, notificationType, searchNameFragment)
	if err != nil {
		return false, fmt.Errorf("failed to check notification existence: %w", err)
	}

	return exists, nil
}

// InsertNotification persists a new unread notification. A unique-index
// violation means a concurrent dispatch worker won the race for the same
// triple; it surfaces as ErrNotificationExists so the caller can treat the
// match as already notified.
func (s *Storage) InsertNotification(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (
			notification_id, user_id, message, listing_id, is_read, type, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		n.ID,
		n.UserID,
		n.Message,
		n.ListingID,
		n.IsRead,
		n.Type,
		n.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return domain.ErrNotificationExists
		}
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	s.logger.Debug("Notification persisted",
		slog.String("notification_id", n.ID),
		slog.Int64("user_id", n.UserID),
		slog.Int64("listing_id", n.ListingID),
	)

	return nil
}

// MarkNotificationRead flips a single notification to read. Invoked through
// the notification API on user action, never by the matcher.
func (s *Storage) MarkNotificationRead(ctx context.Context, notificationID string, userID int64) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE notification_id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotificationNotFound
	}

	return nil
}

// MarkAllNotificationsRead flips every unread notification for a user.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE
	`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return result.RowsAffected()
}

// ListNotifications returns a user's notifications, newest first.
func (s *Storage) ListNotifications(ctx context.Context, userID int64, onlyUnread bool, limit int) ([]domain.Notification, error) {
	query := `
		SELECT notification_id, user_id, message, listing_id, is_read, type, created_at
		FROM notifications
		WHERE user_id = $1
	`
	if onlyUnread {
		query += " AND is_read = FALSE"
	}
	query += " ORDER BY created_at DESC LIMIT $2"

	var notifications []domain.Notification
	if err := s.db.SelectContext(ctx, &notifications, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// CountUnreadNotifications returns the unread badge count for a user.
func (s *Storage) CountUnreadNotifications(ctx context.Context, userID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`

	if err := s.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}
