package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beast717/ishtri.site-sub000/internal/domain"
)

const defaultListLimit = 50

// userID extracts the authenticated user id. Authentication itself lives in
// the gateway; this service trusts the forwarded X-User-ID header.
func userID(c *gin.Context) (int64, bool) {
	raw := c.GetHeader("X-User-ID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "X-User-ID header is required",
		})
		return 0, false
	}
	return id, true
}

// ListNotifications handles GET /api/v1/notifications
// Returns the user's notifications, newest first. ?unread=true narrows to
// unread only; ?limit=N caps the page size.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	onlyUnread := c.Query("unread") == "true"

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = v
	}

	notifications, err := h.store.ListNotifications(c.Request.Context(), id, onlyUnread, limit)
	if err != nil {
		h.logger.Error("Failed to list notifications",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list notifications",
		})
		return
	}

	if notifications == nil {
		notifications = []domain.Notification{}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	count, err := h.store.CountUnreadNotifications(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to count unread notifications",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count unread notifications",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unread_count": count,
	})
}

// MarkRead handles POST /api/v1/notifications/:notification_id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	notificationID := c.Param("notification_id")
	if _, err := uuid.Parse(notificationID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "notification_id must be a valid UUID",
		})
		return
	}

	err := h.store.MarkNotificationRead(c.Request.Context(), notificationID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Notification not found",
			})
			return
		}
		h.logger.Error("Failed to mark notification read",
			slog.String("notification_id", notificationID),
			slog.Int64("user_id", id),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to mark notification read",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notification_id": notificationID,
		"is_read":         true,
	})
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	updated, err := h.store.MarkAllNotificationsRead(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to mark all notifications read",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to mark notifications read",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated": updated,
	})
}

// MatchHandler exposes the manual match-cycle trigger on the matcher
// service.
type MatchHandler struct {
	logger  *slog.Logger
	trigger CycleTrigger
}

// NewMatchHandler creates a new MatchHandler instance
func NewMatchHandler(logger *slog.Logger, trigger CycleTrigger) *MatchHandler {
	return &MatchHandler{logger: logger, trigger: trigger}
}

// RunCycle handles POST /api/v1/match/run
// Kicks one match cycle outside the cron cadence. Returns 409 if a cycle is
// already in flight.
func (h *MatchHandler) RunCycle(c *gin.Context) {
	err := h.trigger.TriggerNow(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrCycleInFlight) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "A match cycle is already running",
			})
			return
		}
		h.logger.Error("Manual match cycle failed",
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Match cycle failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "cycle complete",
	})
}
