package matcher

import (
	"fmt"
	"log/slog"

	"github.com/beast717/ishtri.site-sub000/internal/domain"
)

// Engine evaluates listings against saved searches. Stateless apart from
// the logger; safe for concurrent use.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a matching engine.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Match evaluates one listing against one saved search. Cross-category
// pairs never match. A predicate that fails to decode returns
// ErrMalformedPredicate (wrapped with the search id).
func (e *Engine) Match(l *domain.Listing, s *domain.SavedSearch) (bool, error) {
	if l.Category != s.Category {
		return false, nil
	}

	pred, err := DecodePredicate(s.Category, s.FilterPredicate)
	if err != nil {
		return false, fmt.Errorf("search %d: %w", s.ID, err)
	}

	return pred.Match(l), nil
}

// MatchAll evaluates every listing against every saved search and returns
// one MatchResult per passing (search, listing) pair. Listings and searches
// are expected to share a category; mismatched pairs are skipped rather
// than failed. Each predicate is decoded once, not once per listing.
// Searches with malformed predicates are skipped with a warning.
func (e *Engine) MatchAll(listings []domain.Listing, searches []domain.SavedSearch) []domain.MatchResult {
	var results []domain.MatchResult

	for i := range searches {
		search := &searches[i]

		pred, err := DecodePredicate(search.Category, search.FilterPredicate)
		if err != nil {
			e.logger.Warn("Skipping saved search with malformed predicate",
				slog.Int64("search_id", search.ID),
				slog.String("category", search.Category.String()),
				slog.String("error", err.Error()),
			)
			continue
		}

		for j := range listings {
			listing := &listings[j]
			if listing.Category != search.Category {
				continue
			}
			if !pred.Match(listing) {
				continue
			}
			results = append(results, domain.MatchResult{
				OwnerUserID: search.OwnerUserID,
				SearchID:    search.ID,
				SearchName:  search.SearchName,
				Listing:     listing,
			})
		}
	}

	return results
}
