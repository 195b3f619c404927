package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// The cursor checkpoint is a single row keyed by id=1. It records the upper
// bound of the last fully successful match cycle and is written only after
// that cycle commits its notifications, so a crash mid-cycle re-covers the
// same window instead of skipping it.

// LoadCursor reads the persisted scan cursor. The second return value is
// false on a first-ever run, when no checkpoint row exists yet.
func (s *Storage) LoadCursor(ctx context.Context) (time.Time, bool, error) {
	var scannedUntil time.Time
	query := `SELECT scanned_until FROM match_cursor WHERE id = 1`

	err := s.db.GetContext(ctx, &scannedUntil, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to load match cursor: %w", err)
	}

	return scannedUntil, true, nil
}

// SaveCursor upserts the scan cursor after a successful cycle.
func (s *Storage) SaveCursor(ctx context.Context, scannedUntil time.Time) error {
	query := `
		INSERT INTO match_cursor (id, scanned_until, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE
		SET scanned_until = EXCLUDED.scanned_until,
		    updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, scannedUntil); err != nil {
		return fmt.Errorf("failed to save match cursor: %w", err)
	}

	return nil
}
