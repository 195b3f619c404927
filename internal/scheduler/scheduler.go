// Package scheduler drives the match pipeline: a cron tick every scan
// interval runs one cycle of fetch-match-dispatch and advances the cursor
// only when the whole cycle succeeds. Cycles never overlap; a tick that
// fires while the previous cycle still runs is skipped.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/beast717/ishtri.site-sub000/internal/dispatch"
	"github.com/beast717/ishtri.site-sub000/internal/domain"
)

// ListingSource supplies listings created after a cursor timestamp, with
// every category's attributes joined in one pass.
type ListingSource interface {
	FetchListingsSince(ctx context.Context, since time.Time) ([]domain.Listing, error)
}

// SearchSource supplies all saved searches for one category.
type SearchSource interface {
	FetchSavedSearches(ctx context.Context, category domain.Category) ([]domain.SavedSearch, error)
}

// CursorStore persists the scan checkpoint between runs.
type CursorStore interface {
	LoadCursor(ctx context.Context) (time.Time, bool, error)
	SaveCursor(ctx context.Context, scannedUntil time.Time) error
}

// Matcher evaluates a listing batch against a search batch.
type Matcher interface {
	MatchAll(listings []domain.Listing, searches []domain.SavedSearch) []domain.MatchResult
}

// Dispatcher fans match results out across the delivery channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, results []domain.MatchResult) dispatch.Stats
}

// Config holds scheduler dependencies and tuning.
type Config struct {
	Logger     *slog.Logger
	Listings   ListingSource
	Searches   SearchSource
	Cursor     CursorStore
	Engine     Matcher
	Dispatcher Dispatcher
	Interval   time.Duration

	// Now overrides the clock in tests. Defaults to time.Now.
	Now func() time.Time
}

// Scheduler owns the cron engine and the in-memory cursor copy.
type Scheduler struct {
	logger     *slog.Logger
	listings   ListingSource
	searches   SearchSource
	cursor     CursorStore
	engine     Matcher
	dispatcher Dispatcher
	interval   time.Duration
	now        func() time.Time

	cron  *cron.Cron
	runMu sync.Mutex

	mu           sync.RWMutex
	scannedUntil time.Time
}

// New creates a Scheduler. Call Start to bootstrap the cursor and begin
// ticking.
func New(cfg *Config) *Scheduler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		logger:     cfg.Logger,
		listings:   cfg.Listings,
		searches:   cfg.Searches,
		cursor:     cfg.Cursor,
		engine:     cfg.Engine,
		dispatcher: cfg.Dispatcher,
		interval:   interval,
		now:        now,
	}
}

// Start loads the cursor checkpoint and starts the cron loop. On a
// first-ever run with no checkpoint, matching starts from "now": listings
// created before the matcher first came up are never retro-matched.
func (s *Scheduler) Start(ctx context.Context) error {
	scannedUntil, found, err := s.cursor.LoadCursor(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cursor checkpoint: %w", err)
	}
	if !found {
		scannedUntil = s.now()
		if err := s.cursor.SaveCursor(ctx, scannedUntil); err != nil {
			return fmt.Errorf("failed to bootstrap cursor checkpoint: %w", err)
		}
		s.logger.Info("No cursor checkpoint found, starting from now",
			slog.Time("scanned_until", scannedUntil),
		)
	}
	s.setCursor(scannedUntil)

	cronLog := &cronLogger{logger: s.logger}
	s.cron = cron.New(cron.WithChain(
		cron.Recover(cronLog),
		cron.SkipIfStillRunning(cronLog),
	))

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.RunCycle(context.Background()); err != nil {
			s.logger.Error("Match cycle failed",
				slog.String("error", err.Error()),
			)
		}
	}); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Match scheduler started",
		slog.Duration("interval", s.interval),
		slog.Time("scanned_until", scannedUntil),
	)

	return nil
}

// Stop halts further ticks and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	s.logger.Info("Stopping match scheduler...")
	<-s.cron.Stop().Done()
	s.logger.Info("Match scheduler stopped")
}

// TriggerNow runs one cycle outside the cron cadence (manual trigger
// endpoint, tests). Returns ErrCycleInFlight if a cycle is already running.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	return s.RunCycle(ctx)
}

// Cursor returns the current scan cursor.
func (s *Scheduler) Cursor() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scannedUntil
}

func (s *Scheduler) setCursor(t time.Time) {
	s.mu.Lock()
	s.scannedUntil = t
	s.mu.Unlock()
}

// RunCycle executes one scan-match-dispatch pass. The cursor advances to
// the cycle's start time only when every source fetch succeeded and the
// checkpoint write went through; any source error leaves it untouched so
// the next tick re-covers the same window. Per-match dispatch failures do
// not hold the cursor back: the dedup check makes re-processing safe but a
// match lost to a persistence error inside an advanced window is not
// retried.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	if !s.runMu.TryLock() {
		return domain.ErrCycleInFlight
	}
	defer s.runMu.Unlock()

	startedAt := s.now()
	since := s.Cursor()

	listings, err := s.listings.FetchListingsSince(ctx, since)
	if err != nil {
		return fmt.Errorf("fetch listings: %w", err)
	}

	if len(listings) == 0 {
		s.logger.Debug("Match cycle found no new listings",
			slog.Time("since", since),
		)
		return s.advanceCursor(ctx, startedAt)
	}

	s.logger.Info("Match cycle started",
		slog.Time("since", since),
		slog.Int("listings", len(listings)),
	)

	// Group listings by category so each category's searches are fetched
	// exactly once per cycle, not once per listing.
	byCategory := make(map[domain.Category][]domain.Listing)
	for _, l := range listings {
		byCategory[l.Category] = append(byCategory[l.Category], l)
	}

	var results []domain.MatchResult
	for category, group := range byCategory {
		searches, err := s.searches.FetchSavedSearches(ctx, category)
		if err != nil {
			return fmt.Errorf("fetch saved searches for %s: %w", category, err)
		}
		if len(searches) == 0 {
			continue
		}
		results = append(results, s.engine.MatchAll(group, searches)...)
	}

	stats := s.dispatcher.Dispatch(ctx, results)

	s.logger.Info("Match cycle complete",
		slog.Int("listings", len(listings)),
		slog.Int("matches", len(results)),
		slog.Int64("created", stats.Created),
		slog.Int64("deduped", stats.Deduped),
		slog.Int64("skipped", stats.Skipped),
		slog.Int64("pushed", stats.Pushed),
		slog.Int64("emailed", stats.Emailed),
		slog.Duration("took", s.now().Sub(startedAt)),
	)

	return s.advanceCursor(ctx, startedAt)
}

func (s *Scheduler) advanceCursor(ctx context.Context, scannedUntil time.Time) error {
	if err := s.cursor.SaveCursor(ctx, scannedUntil); err != nil {
		// The in-memory cursor stays put too, so the next cycle re-covers
		// this window and the dedup check absorbs the repeats.
		return fmt.Errorf("save cursor checkpoint: %w", err)
	}
	s.setCursor(scannedUntil)
	return nil
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (c *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Debug(msg, keysAndValues...)
}

func (c *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{slog.String("error", err.Error())}, keysAndValues...)
	c.logger.Error(msg, args...)
}

var _ cron.Logger = (*cronLogger)(nil)
