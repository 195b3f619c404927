package matcher

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/beast717/ishtri.site-sub000/internal/domain"
)

// Predicate is a decoded, category-specific filter. Match is pure and safe
// for concurrent use.
type Predicate interface {
	Match(l *domain.Listing) bool
}

// GeneralPredicate carries the clause set every category shares: price,
// country and city. Boat and MC searches use it as-is.
type GeneralPredicate struct {
	Price     RangeClause `json:"price"`
	Countries StringSet   `json:"countries"`
	Cities    IDSet       `json:"cities"`
}

func (p *GeneralPredicate) Match(l *domain.Listing) bool {
	return p.Price.Pass(l.Price) &&
		p.Countries.Pass(l.CountryCode) &&
		p.Cities.Pass(l.CityID)
}

// VehiclePredicate extends the general clause set with car attributes.
type VehiclePredicate struct {
	GeneralPredicate
	Year          RangeClause `json:"yearRange"`
	Mileage       RangeClause `json:"mileageRange"`
	FuelTypes     StringSet   `json:"fuelTypes"`
	Transmissions StringSet   `json:"transmissionTypes"`
	BrandIDs      IDSet       `json:"brandIds"`
}

func (p *VehiclePredicate) Match(l *domain.Listing) bool {
	if !p.GeneralPredicate.Match(l) {
		return false
	}
	var (
		year, mileage, brandID *int64
		fuelType, transmission string
	)
	if v := l.Vehicle; v != nil {
		year, mileage, brandID = v.Year, v.Mileage, v.BrandID
		fuelType, transmission = v.FuelType, v.Transmission
	}
	return p.Year.Pass(year) &&
		p.Mileage.Pass(mileage) &&
		p.FuelTypes.Pass(fuelType) &&
		p.Transmissions.Pass(transmission) &&
		p.BrandIDs.Pass(brandID)
}

// PropertyPredicate extends the general clause set with real-estate
// attributes.
type PropertyPredicate struct {
	GeneralPredicate
	PropertyTypes StringSet   `json:"propertyTypes"`
	SizeSqm       RangeClause `json:"sizeSqmRange"`
	NumRooms      RangeClause `json:"numRoomsRange"`
	NumBathrooms  RangeClause `json:"numBathroomsRange"`
	EnergyClasses StringSet   `json:"energyClasses"`
}

func (p *PropertyPredicate) Match(l *domain.Listing) bool {
	if !p.GeneralPredicate.Match(l) {
		return false
	}
	var (
		sizeSqm, numRooms, numBathrooms *int64
		propertyType, energyClass       string
	)
	if pr := l.Property; pr != nil {
		sizeSqm, numRooms, numBathrooms = pr.SizeSqm, pr.NumRooms, pr.NumBathrooms
		propertyType, energyClass = pr.PropertyType, pr.EnergyClass
	}
	return p.PropertyTypes.Pass(propertyType) &&
		p.SizeSqm.Pass(sizeSqm) &&
		p.NumRooms.Pass(numRooms) &&
		p.NumBathrooms.Pass(numBathrooms) &&
		p.EnergyClasses.Pass(energyClass)
}

// JobPredicate extends the general clause set with job-ad attributes. The
// salary range replaces price as the money axis: job listings carry no price
// column, so the shared price clause stays unconstrained in practice.
type JobPredicate struct {
	GeneralPredicate
	Salary          RangeClause `json:"salaryRange"`
	EmploymentTypes StringSet   `json:"employmentTypes"`
	Deadline        TimeClause  `json:"deadline"`
}

func (p *JobPredicate) Match(l *domain.Listing) bool {
	if !p.GeneralPredicate.Match(l) {
		return false
	}
	var (
		salary         *int64
		employmentType string
		deadline       *time.Time
	)
	if j := l.Job; j != nil {
		salary, employmentType, deadline = j.Salary, j.EmploymentType, j.ApplicationDeadline
	}
	return p.Salary.Pass(salary) &&
		p.EmploymentTypes.Pass(employmentType) &&
		p.Deadline.Pass(deadline)
}

// DecodePredicate decodes a saved search's filter JSON into the predicate
// type fixed by its category. Unknown categories and JSON that does not
// decode both surface as ErrMalformedPredicate so the caller can skip the
// search and keep the cycle going.
func DecodePredicate(category domain.Category, raw json.RawMessage) (Predicate, error) {
	var p Predicate
	switch category {
	case domain.CategoryVehicle:
		p = &VehiclePredicate{}
	case domain.CategoryProperty:
		p = &PropertyPredicate{}
	case domain.CategoryJob:
		p = &JobPredicate{}
	case domain.CategoryGeneral, domain.CategoryBoat, domain.CategoryMC:
		p = &GeneralPredicate{}
	default:
		return nil, fmt.Errorf("%w: no schema for category %q", domain.ErrMalformedPredicate, category)
	}

	if len(raw) == 0 {
		// No predicate stored at all: every clause unconstrained.
		return p, nil
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPredicate, err)
	}
	return p, nil
}
