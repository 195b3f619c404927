package domain

import "fmt"

// Category identifies which attribute set a listing carries and which
// predicate schema applies to a saved search. A saved search only ever
// matches listings of its own category.
type Category string

const (
	CategoryGeneral  Category = "General"
	CategoryVehicle  Category = "Vehicle"
	CategoryProperty Category = "Property"
	CategoryJob      Category = "Job"
	CategoryBoat     Category = "Boat"
	CategoryMC       Category = "MC"
)

// Categories lists all supported categories.
var Categories = []Category{
	CategoryGeneral,
	CategoryVehicle,
	CategoryProperty,
	CategoryJob,
	CategoryBoat,
	CategoryMC,
}

// ParseCategory validates a raw category string coming from the database.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func (c Category) String() string {
	return string(c)
}
