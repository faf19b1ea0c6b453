package models

// Coordinate is an immutable latitude/longitude pair. Every distance
// computation in the engine works on this type.
type Coordinate struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// IsZero reports whether the coordinate carries no usable position.
func (c Coordinate) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

// Category is the fixed activity taxonomy. Arbitrary provider type strings
// are folded into one of these values.
type Category string

const (
	CategoryDining        Category = "dining"
	CategoryEntertainment Category = "entertainment"
	CategoryFitness       Category = "fitness"
	CategorySocial        Category = "social"
	CategoryWork          Category = "work"
	CategoryPersonal      Category = "personal"
	CategoryTravel        Category = "travel"
	CategoryOther         Category = "other"
)

// PartOfDay expresses a caller's preferred visit window.
type PartOfDay string

const (
	PartOfDayMorning   PartOfDay = "morning"
	PartOfDayAfternoon PartOfDay = "afternoon"
	PartOfDayEvening   PartOfDay = "evening"
)
