package domain

import "time"

// Listing is a marketplace item as seen by the matcher: the generic columns
// plus the attribute bag for its category. Attribute structs for other
// categories stay nil. Listings are immutable for matching purposes; edits
// are not re-scanned.
type Listing struct {
	ID          int64
	Title       string
	Category    Category
	Price       *int64
	CountryCode string
	CityID      *int64
	FirstImage  string
	CreatedAt   time.Time

	Vehicle  *VehicleAttrs
	Property *PropertyAttrs
	Job      *JobAttrs
}

// VehicleAttrs holds car/boat/MC-style attributes joined from the vehicle
// detail table. Pointer fields may be nil when the seller left them blank.
type VehicleAttrs struct {
	Year         *int64
	Mileage      *int64
	FuelType     string
	Transmission string
	BrandID      *int64
}

// PropertyAttrs holds real-estate attributes.
type PropertyAttrs struct {
	PropertyType string
	SizeSqm      *int64
	NumRooms     *int64
	NumBathrooms *int64
	EnergyClass  string
}

// JobAttrs holds job-ad attributes. Salary doubles as the "price" axis for
// job searches.
type JobAttrs struct {
	EmploymentType      string
	Salary              *int64
	ApplicationDeadline *time.Time
}
