package matcher

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beast717/ishtri.site-sub000/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func electricCarListing(id int64, year int64) domain.Listing {
	return domain.Listing{
		ID:          id,
		Title:       "Tesla Model 3",
		Category:    domain.CategoryVehicle,
		Price:       i64(250000),
		CountryCode: "NO",
		CityID:      i64(1),
		CreatedAt:   time.Now(),
		Vehicle: &domain.VehicleAttrs{
			Year:     i64(year),
			Mileage:  i64(42000),
			FuelType: "Electric",
			BrandID:  i64(12),
		},
	}
}

func vehicleSearch(t *testing.T, id, userID int64, name string, pred VehiclePredicate) domain.SavedSearch {
	t.Helper()
	raw, err := json.Marshal(pred)
	require.NoError(t, err)
	return domain.SavedSearch{
		ID:              id,
		OwnerUserID:     userID,
		SearchName:      name,
		Category:        domain.CategoryVehicle,
		FilterPredicate: raw,
	}
}

func TestEngine_Match(t *testing.T) {
	engine := NewEngine(testLogger())

	search := vehicleSearch(t, 1, 10, "Electric dream", VehiclePredicate{
		Year:      RangeClause{Min: i64(2015), Max: i64(2020)},
		FuelTypes: StringSet{"Electric"},
	})

	tests := []struct {
		name    string
		listing domain.Listing
		want    bool
	}{
		{
			name:    "year and fuel type inside predicate",
			listing: electricCarListing(100, 2018),
			want:    true,
		},
		{
			name:    "year below range",
			listing: electricCarListing(101, 2012),
			want:    false,
		},
		{
			name: "wrong fuel type",
			listing: func() domain.Listing {
				l := electricCarListing(102, 2018)
				l.Vehicle.FuelType = "Diesel"
				return l
			}(),
			want: false,
		},
		{
			name: "missing vehicle attributes fail constrained clauses",
			listing: domain.Listing{
				ID:       103,
				Category: domain.CategoryVehicle,
				Price:    i64(250000),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Match(&tt.listing, &search)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_Match_CategoryIsolation(t *testing.T) {
	engine := NewEngine(testLogger())

	listing := electricCarListing(100, 2018)
	search := domain.SavedSearch{
		ID:              1,
		Category:        domain.CategoryProperty,
		FilterPredicate: json.RawMessage(`{}`),
	}

	got, err := engine.Match(&listing, &search)
	require.NoError(t, err)
	assert.False(t, got, "cross-category pairs must never match")
}

func TestEngine_Match_MalformedPredicate(t *testing.T) {
	engine := NewEngine(testLogger())

	listing := electricCarListing(100, 2018)
	search := domain.SavedSearch{
		ID:              7,
		Category:        domain.CategoryVehicle,
		FilterPredicate: json.RawMessage(`{"yearRange": "not-an-object"`),
	}

	got, err := engine.Match(&listing, &search)
	assert.False(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedPredicate)
}

func TestEngine_Match_EmptyPredicateMatchesEverything(t *testing.T) {
	engine := NewEngine(testLogger())

	listing := domain.Listing{ID: 1, Category: domain.CategoryGeneral, Price: i64(50)}
	search := domain.SavedSearch{ID: 1, Category: domain.CategoryGeneral}

	got, err := engine.Match(&listing, &search)
	require.NoError(t, err)
	assert.True(t, got, "a predicate with no clauses configured is no constraint")
}

func TestEngine_MatchAll(t *testing.T) {
	engine := NewEngine(testLogger())

	listings := []domain.Listing{
		electricCarListing(100, 2018),
		electricCarListing(101, 2012),
	}

	searches := []domain.SavedSearch{
		vehicleSearch(t, 1, 10, "Electric dream", VehiclePredicate{
			Year:      RangeClause{Min: i64(2015), Max: i64(2020)},
			FuelTypes: StringSet{"Electric"},
		}),
		vehicleSearch(t, 2, 20, "Any car", VehiclePredicate{}),
		{
			// Malformed predicate: skipped, must not poison the batch.
			ID:              3,
			OwnerUserID:     30,
			SearchName:      "Broken",
			Category:        domain.CategoryVehicle,
			FilterPredicate: json.RawMessage(`{{`),
		},
	}

	results := engine.MatchAll(listings, searches)

	// Search 1 matches only the 2018 car; search 2 matches both.
	require.Len(t, results, 3)

	byUser := map[int64]int{}
	for _, r := range results {
		byUser[r.OwnerUserID]++
	}
	assert.Equal(t, 1, byUser[10])
	assert.Equal(t, 2, byUser[20])
	assert.Zero(t, byUser[30], "malformed search must produce no results")

	for _, r := range results {
		require.NotNil(t, r.Listing)
		assert.NotEmpty(t, r.SearchName)
	}
}

func TestEngine_MatchAll_SingleResultPerPair(t *testing.T) {
	engine := NewEngine(testLogger())

	listings := []domain.Listing{electricCarListing(100, 2018)}
	searches := []domain.SavedSearch{
		vehicleSearch(t, 1, 10, "Any car", VehiclePredicate{}),
	}

	results := engine.MatchAll(listings, searches)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].SearchID)
	assert.Equal(t, int64(100), results[0].Listing.ID)
}

func TestDecodePredicate_UnknownCategory(t *testing.T) {
	_, err := DecodePredicate(domain.Category("Spaceship"), json.RawMessage(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedPredicate)
}
