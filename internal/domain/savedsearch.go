package domain

import (
	"encoding/json"
	"time"
)

// SavedSearch is a user-owned, category-scoped filter predicate stored for
// continuous matching. The predicate JSON shape is validated against the
// category schema at creation time by the CRUD layer; the matcher still
// re-validates on decode and skips searches it cannot parse.
type SavedSearch struct {
	ID              int64
	OwnerUserID     int64
	SearchName      string
	Category        Category
	FilterPredicate json.RawMessage
	CreatedAt       time.Time
}

// MatchResult pairs a saved search with a listing that passed every clause
// of its predicate. Ephemeral: produced by the matching engine, consumed
// immediately by the dispatcher, never persisted as its own entity.
type MatchResult struct {
	OwnerUserID int64
	SearchID    int64
	SearchName  string
	Listing     *Listing
}
