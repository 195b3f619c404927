// Package storage is the data-access layer for the matching pipeline:
// listing and saved-search sources, the notification store and the cursor
// checkpoint, all on PostgreSQL via sqlx.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/beast717/ishtri.site-sub000/internal/domain"
	"github.com/beast717/ishtri.site-sub000/shared/postgresql"
)

// Storage handles all database operations for the matcher and the
// notification API.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a Storage bound to the shared PostgreSQL client.
func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db:     pg.GetDB(),
		logger: logger,
	}
}

// FetchListingsSince returns listings created strictly after the cursor,
// with the attribute bags for every supported category joined in one pass.
func (s *Storage) FetchListingsSince(ctx context.Context, since time.Time) ([]domain.Listing, error) {
	query := `
		SELECT
			l.listing_id, l.title, l.category, l.price, l.country_code,
			l.city_id, l.first_image, l.created_at,
			v.model_year, v.mileage, v.fuel_type, v.transmission, v.brand_id,
			p.property_type, p.size_sqm, p.num_rooms, p.num_bathrooms, p.energy_class,
			j.employment_type, j.salary, j.application_deadline
		FROM listings l
		LEFT JOIN listing_vehicles v ON v.listing_id = l.listing_id
		LEFT JOIN listing_properties p ON p.listing_id = l.listing_id
		LEFT JOIN listing_jobs j ON j.listing_id = l.listing_id
		WHERE l.created_at > $1
		ORDER BY l.created_at, l.listing_id
	`

	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("%w: listings since %s: %v", domain.ErrSourceFetch, since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan listing: %v", domain.ErrSourceFetch, err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceFetch, err)
	}

	return listings, nil
}

func scanListing(rows *sql.Rows) (domain.Listing, error) {
	var (
		l        domain.Listing
		category string

		price, cityID sql.NullInt64
		firstImage    sql.NullString

		year, mileage, brandID sql.NullInt64
		fuelType, transmission sql.NullString

		sizeSqm, numRooms, numBathrooms sql.NullInt64
		propertyType, energyClass       sql.NullString

		salary              sql.NullInt64
		employmentType      sql.NullString
		applicationDeadline sql.NullTime
	)

	err := rows.Scan(
		&l.ID, &l.Title, &category, &price, &l.CountryCode,
		&cityID, &firstImage, &l.CreatedAt,
		&year, &mileage, &fuelType, &transmission, &brandID,
		&propertyType, &sizeSqm, &numRooms, &numBathrooms, &energyClass,
		&employmentType, &salary, &applicationDeadline,
	)
	if err != nil {
		return domain.Listing{}, err
	}

	l.Category, err = domain.ParseCategory(category)
	if err != nil {
		return domain.Listing{}, err
	}

	l.Price = nullInt(price)
	l.CityID = nullInt(cityID)
	l.FirstImage = firstImage.String

	switch l.Category {
	case domain.CategoryVehicle, domain.CategoryBoat, domain.CategoryMC:
		l.Vehicle = &domain.VehicleAttrs{
			Year:         nullInt(year),
			Mileage:      nullInt(mileage),
			FuelType:     fuelType.String,
			Transmission: transmission.String,
			BrandID:      nullInt(brandID),
		}
	case domain.CategoryProperty:
		l.Property = &domain.PropertyAttrs{
			PropertyType: propertyType.String,
			SizeSqm:      nullInt(sizeSqm),
			NumRooms:     nullInt(numRooms),
			NumBathrooms: nullInt(numBathrooms),
			EnergyClass:  energyClass.String,
		}
	case domain.CategoryJob:
		l.Job = &domain.JobAttrs{
			EmploymentType: employmentType.String,
			Salary:         nullInt(salary),
		}
		if applicationDeadline.Valid {
			t := applicationDeadline.Time
			l.Job.ApplicationDeadline = &t
		}
	}

	return l, nil
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

// FetchSavedSearches returns all saved searches for one category. The cycle
// calls this once per distinct category in the listing batch, never once
// per listing.
func (s *Storage) FetchSavedSearches(ctx context.Context, category domain.Category) ([]domain.SavedSearch, error) {
	query := `
		SELECT search_id, user_id, search_name, category, filter_predicate, created_at
		FROM saved_searches
		WHERE category = $1
	`

	rows, err := s.db.QueryContext(ctx, query, category.String())
	if err != nil {
		return nil, fmt.Errorf("%w: saved searches for %s: %v", domain.ErrSourceFetch, category, err)
	}
	defer rows.Close()

	var searches []domain.SavedSearch
	for rows.Next() {
		var (
			search   domain.SavedSearch
			category string
			raw      []byte
		)
		if err := rows.Scan(
			&search.ID, &search.OwnerUserID, &search.SearchName,
			&category, &raw, &search.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan saved search: %v", domain.ErrSourceFetch, err)
		}
		search.Category, err = domain.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("%w: saved search %d: %v", domain.ErrSourceFetch, search.ID, err)
		}
		search.FilterPredicate = raw
		searches = append(searches, search)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceFetch, err)
	}

	return searches, nil
}

// GetUserEmailPreference reads a user's notification-email setting. Users
// without an email on file come back with Enabled=false.
func (s *Storage) GetUserEmailPreference(ctx context.Context, userID int64) (domain.EmailPreference, error) {
	var pref domain.EmailPreference
	query := `
		SELECT notify_by_email, COALESCE(email, '') AS email
		FROM users
		WHERE user_id = $1
	`

	err := s.db.GetContext(ctx, &pref, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.EmailPreference{}, nil
		}
		return domain.EmailPreference{}, fmt.Errorf("failed to get email preference for user %d: %w", userID, err)
	}

	if pref.Email == "" {
		pref.Enabled = false
	}
	return pref, nil
}
