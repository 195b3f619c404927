// Package dispatch fans match results out across the delivery channels:
// durable Notification row first, then best-effort live push and email.
// Each match is independent and idempotent through the dedup check, so a
// bounded worker pool processes them concurrently.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/beast717/ishtri.site-sub000/internal/domain"
)

// eventNewMatch is the push-channel event name.
const eventNewMatch = "new_match"

// NotificationStore is the persistence surface the dispatcher needs.
type NotificationStore interface {
	NotificationExists(ctx context.Context, userID, listingID int64, notificationType, searchNameFragment string) (bool, error)
	InsertNotification(ctx context.Context, n *domain.Notification) error
	GetUserEmailPreference(ctx context.Context, userID int64) (domain.EmailPreference, error)
}

// Registry is the live-push surface (see internal/registry).
type Registry interface {
	Lookup(ctx context.Context, userID int64) (bool, error)
	Push(ctx context.Context, userID int64, event string, payload any) error
}

// EmailTransport sends one rendered email, best-effort.
type EmailTransport interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// EmailRenderer builds the subject and body for a match email.
type EmailRenderer interface {
	Render(res domain.MatchResult) (subject, htmlBody string, err error)
}

// Config holds dispatcher dependencies and tuning.
type Config struct {
	Logger   *slog.Logger
	Store    NotificationStore
	Registry Registry
	Email    EmailTransport
	Renderer EmailRenderer
	Workers  int
}

// Dispatcher drains a batch of match results through the notification
// pipeline with a bounded worker pool.
type Dispatcher struct {
	logger   *slog.Logger
	store    NotificationStore
	registry Registry
	email    EmailTransport
	renderer EmailRenderer
	workers  int
	now      func() time.Time
}

// Stats summarises one dispatched batch.
type Stats struct {
	Created int64
	Deduped int64
	Skipped int64
	Pushed  int64
	Emailed int64
}

// NewDispatcher creates a dispatcher. Workers below 1 falls back to 1.
func NewDispatcher(cfg *Config) *Dispatcher {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		logger:   cfg.Logger,
		store:    cfg.Store,
		registry: cfg.Registry,
		email:    cfg.Email,
		renderer: cfg.Renderer,
		workers:  workers,
		now:      time.Now,
	}
}

// Dispatch processes every match result and blocks until the batch drains.
// A failure on one match never fails the batch; the returned stats say what
// happened.
func (d *Dispatcher) Dispatch(ctx context.Context, results []domain.MatchResult) Stats {
	if len(results) == 0 {
		return Stats{}
	}

	var (
		created, deduped, skipped atomic.Int64
		pushed, emailed           atomic.Int64
	)

	jobs := make(chan domain.MatchResult)

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for res := range jobs {
				outcome := d.processMatch(ctx, res)
				switch outcome.result {
				case matchCreated:
					created.Add(1)
				case matchDeduped:
					deduped.Add(1)
				case matchSkipped:
					skipped.Add(1)
				}
				if outcome.pushed {
					pushed.Add(1)
				}
				if outcome.emailed {
					emailed.Add(1)
				}
			}
		}()
	}

feed:
	for _, res := range results {
		select {
		case jobs <- res:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return Stats{
		Created: created.Load(),
		Deduped: deduped.Load(),
		Skipped: skipped.Load(),
		Pushed:  pushed.Load(),
		Emailed: emailed.Load(),
	}
}

type matchResultKind int

const (
	matchCreated matchResultKind = iota
	matchDeduped
	matchSkipped
)

type matchOutcome struct {
	result  matchResultKind
	pushed  bool
	emailed bool
}

// listingSummary is the push payload's embedded listing preview.
type listingSummary struct {
	ListingID  int64  `json:"listingId"`
	Title      string `json:"title"`
	Price      *int64 `json:"price"`
	FirstImage string `json:"firstImage,omitempty"`
}

type pushPayload struct {
	NotificationID string         `json:"notificationId"`
	Message        string         `json:"message"`
	Listing        listingSummary `json:"listing"`
}

// processMatch runs the per-match pipeline: dedup check, persist, push,
// email. Steps three and four are independently best-effort and never roll
// back the persisted row.
func (d *Dispatcher) processMatch(ctx context.Context, res domain.MatchResult) matchOutcome {
	log := d.logger.With(
		slog.Int64("user_id", res.OwnerUserID),
		slog.Int64("search_id", res.SearchID),
		slog.Int64("listing_id", res.Listing.ID),
	)

	// Step 1: dedup check. A failed check skips the match; the next cycle
	// re-checks, so the fail-open duplicate risk is bounded to one window.
	exists, err := d.store.NotificationExists(
		ctx, res.OwnerUserID, res.Listing.ID,
		domain.NotificationTypeNewMatch, res.SearchName,
	)
	if err != nil {
		log.Error("Dedup check failed, skipping match",
			slog.String("error", err.Error()),
		)
		return matchOutcome{result: matchSkipped}
	}
	if exists {
		log.Debug("Notification already exists, skipping match")
		return matchOutcome{result: matchDeduped}
	}

	// Step 2: persist the durable record.
	notification := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    res.OwnerUserID,
		Message:   matchMessage(res),
		ListingID: res.Listing.ID,
		IsRead:    false,
		Type:      domain.NotificationTypeNewMatch,
		CreatedAt: d.now(),
	}

	if err := d.store.InsertNotification(ctx, notification); err != nil {
		if errors.Is(err, domain.ErrNotificationExists) {
			// A concurrent worker won the unique-index race.
			log.Debug("Notification inserted by concurrent worker, skipping")
			return matchOutcome{result: matchDeduped}
		}
		log.Error("Failed to persist notification, skipping match",
			slog.String("error", err.Error()),
		)
		return matchOutcome{result: matchSkipped}
	}

	outcome := matchOutcome{result: matchCreated}

	// Step 3: live push, best-effort.
	if d.pushLive(ctx, log, notification, res) {
		outcome.pushed = true
	}

	// Step 4: email, best-effort and preference-gated.
	if d.sendEmail(ctx, log, res) {
		outcome.emailed = true
	}

	return outcome
}

func (d *Dispatcher) pushLive(ctx context.Context, log *slog.Logger, n *domain.Notification, res domain.MatchResult) bool {
	online, err := d.registry.Lookup(ctx, res.OwnerUserID)
	if err != nil {
		log.Warn("Registry lookup failed, push skipped",
			slog.String("error", err.Error()),
		)
		return false
	}
	if !online {
		return false
	}

	payload := pushPayload{
		NotificationID: n.ID,
		Message:        n.Message,
		Listing: listingSummary{
			ListingID:  res.Listing.ID,
			Title:      res.Listing.Title,
			Price:      res.Listing.Price,
			FirstImage: res.Listing.FirstImage,
		},
	}

	if err := d.registry.Push(ctx, res.OwnerUserID, eventNewMatch, payload); err != nil {
		log.Warn("Live push failed, notification remains retrievable",
			slog.String("error", err.Error()),
		)
		return false
	}

	return true
}

func (d *Dispatcher) sendEmail(ctx context.Context, log *slog.Logger, res domain.MatchResult) bool {
	pref, err := d.store.GetUserEmailPreference(ctx, res.OwnerUserID)
	if err != nil {
		log.Warn("Failed to read email preference, email skipped",
			slog.String("error", err.Error()),
		)
		return false
	}
	if !pref.Enabled || pref.Email == "" {
		return false
	}

	subject, body, err := d.renderer.Render(res)
	if err != nil {
		log.Warn("Failed to render match email",
			slog.String("error", err.Error()),
		)
		return false
	}

	if err := d.email.Send(ctx, pref.Email, subject, body); err != nil {
		log.Warn("Failed to send match email",
			slog.String("error", err.Error()),
		)
		return false
	}

	return true
}

// matchMessage builds the notification text. The dedup existence check
// matches on the embedded search name, so the name must stay part of the
// message verbatim.
func matchMessage(res domain.MatchResult) string {
	return fmt.Sprintf("New match for your saved search %q: %s", res.SearchName, res.Listing.Title)
}
